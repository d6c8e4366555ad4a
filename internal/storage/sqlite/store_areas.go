package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

const areaColumns = "id, world_id, name, description, temperature, exits, triggers"

// CreateArea inserts an area and returns its id.
func (q queries) CreateArea(ctx context.Context, a world.Area) (int64, error) {
	exits, err := encodeJSON(orEmptyExits(a.Exits))
	if err != nil {
		return 0, err
	}
	triggers, err := encodeJSON(orEmptyTriggers(a.Triggers))
	if err != nil {
		return 0, err
	}

	const query = `INSERT INTO areas (world_id, name, description, temperature, exits, triggers)
VALUES (?, ?, ?, ?, ?, ?)`
	q.logf(query, a.WorldID, a.Name)
	result, err := q.db.ExecContext(ctx, query, a.WorldID, a.Name, a.Description, a.Temperature, exits, triggers)
	if err != nil {
		return 0, fmt.Errorf("insert area: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("area insert id: %w", err)
	}
	return id, nil
}

// GetArea fetches an area by id, decoding exits and triggers.
func (q queries) GetArea(ctx context.Context, id int64) (world.Area, error) {
	query := "SELECT " + areaColumns + " FROM areas WHERE id = ?"
	q.logf(query, id)
	row := q.db.QueryRowContext(ctx, query, id)
	a, err := scanArea(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.Area{}, storage.ErrNotFound
		}
		return world.Area{}, err
	}
	return a, nil
}

// ListAreas returns every area in a world ordered by id.
func (q queries) ListAreas(ctx context.Context, worldID int64) ([]world.Area, error) {
	query := "SELECT " + areaColumns + " FROM areas WHERE world_id = ? ORDER BY id"
	q.logf(query, worldID)
	rows, err := q.db.QueryContext(ctx, query, worldID)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	var areas []world.Area
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

// UpdateArea writes back the mutable area fields.
func (q queries) UpdateArea(ctx context.Context, a world.Area) error {
	exits, err := encodeJSON(orEmptyExits(a.Exits))
	if err != nil {
		return err
	}
	triggers, err := encodeJSON(orEmptyTriggers(a.Triggers))
	if err != nil {
		return err
	}

	const query = `UPDATE areas SET name = ?, description = ?, temperature = ?, exits = ?, triggers = ?
WHERE id = ?`
	q.logf(query, a.ID)
	result, err := q.db.ExecContext(ctx, query, a.Name, a.Description, a.Temperature, exits, triggers, a.ID)
	if err != nil {
		return fmt.Errorf("update area: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update area affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArea(row rowScanner) (world.Area, error) {
	var a world.Area
	var exitsRaw, triggersRaw string
	if err := row.Scan(&a.ID, &a.WorldID, &a.Name, &a.Description, &a.Temperature, &exitsRaw, &triggersRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.Area{}, err
		}
		return world.Area{}, fmt.Errorf("scan area: %w", err)
	}
	a.Exits = map[string]int64{}
	if err := decodeJSON(exitsRaw, &a.Exits); err != nil {
		return world.Area{}, fmt.Errorf("area %d exits: %w", a.ID, err)
	}
	if err := decodeJSON(triggersRaw, &a.Triggers); err != nil {
		return world.Area{}, fmt.Errorf("area %d triggers: %w", a.ID, err)
	}
	return a, nil
}

func orEmptyExits(exits map[string]int64) map[string]int64 {
	if exits == nil {
		return map[string]int64{}
	}
	return exits
}

func orEmptyTriggers(triggers []world.Trigger) []world.Trigger {
	if triggers == nil {
		return []world.Trigger{}
	}
	return triggers
}
