package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
)

// encodeJSON marshals a structured column value. A nil value encodes as
// null; callers pass it through the orEmpty* helpers first so columns hold
// an empty JSON container instead.
func encodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(raw), nil
}

// decodeJSON unmarshals a structured column into target. Empty strings are
// treated as the zero value.
func decodeJSON(raw string, target any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

// emptyAsNull stores empty strings as NULL, used for owner_id.
func emptyAsNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (q queries) logf(query string, args ...any) {
	if q.logQueries {
		log.Printf("sql: %s %v", query, args)
	}
}
