package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

// CreateWorld inserts a world and returns its id.
func (q queries) CreateWorld(ctx context.Context, w world.World) (int64, error) {
	const query = "INSERT INTO worlds (name, description) VALUES (?, ?)"
	q.logf(query, w.Name)
	result, err := q.db.ExecContext(ctx, query, w.Name, w.Description)
	if err != nil {
		return 0, fmt.Errorf("insert world: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("world insert id: %w", err)
	}
	return id, nil
}

// GetWorld fetches a world by id.
func (q queries) GetWorld(ctx context.Context, id int64) (world.World, error) {
	const query = "SELECT id, name, description FROM worlds WHERE id = ?"
	q.logf(query, id)
	var w world.World
	row := q.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&w.ID, &w.Name, &w.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.World{}, storage.ErrNotFound
		}
		return world.World{}, fmt.Errorf("scan world: %w", err)
	}
	return w, nil
}

// ListWorlds returns all worlds ordered by id.
func (q queries) ListWorlds(ctx context.Context) ([]world.World, error) {
	const query = "SELECT id, name, description FROM worlds ORDER BY id"
	q.logf(query)
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	defer rows.Close()

	var worlds []world.World
	for rows.Next() {
		var w world.World
		if err := rows.Scan(&w.ID, &w.Name, &w.Description); err != nil {
			return nil, fmt.Errorf("scan world: %w", err)
		}
		worlds = append(worlds, w)
	}
	return worlds, rows.Err()
}

// DeleteWorld removes a world; foreign keys cascade to styles, areas,
// characters, items, and series.
func (q queries) DeleteWorld(ctx context.Context, id int64) error {
	const query = "DELETE FROM worlds WHERE id = ?"
	q.logf(query, id)
	result, err := q.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete world: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete world affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateWritingStyle inserts a writing style for a world.
func (q queries) CreateWritingStyle(ctx context.Context, s world.WritingStyle) (int64, error) {
	const query = `INSERT INTO writing_styles (world_id, name, tone, point_of_view, pacing, guidance)
VALUES (?, ?, ?, ?, ?, ?)`
	q.logf(query, s.WorldID, s.Name)
	result, err := q.db.ExecContext(ctx, query, s.WorldID, s.Name, s.Tone, s.PointOfView, s.Pacing, s.Guidance)
	if err != nil {
		return 0, fmt.Errorf("insert writing style: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("writing style insert id: %w", err)
	}
	return id, nil
}

// GetWritingStyle fetches the style configured for a world.
func (q queries) GetWritingStyle(ctx context.Context, worldID int64) (world.WritingStyle, error) {
	const query = `SELECT id, world_id, name, tone, point_of_view, pacing, guidance
FROM writing_styles WHERE world_id = ? ORDER BY id LIMIT 1`
	q.logf(query, worldID)
	var s world.WritingStyle
	row := q.db.QueryRowContext(ctx, query, worldID)
	if err := row.Scan(&s.ID, &s.WorldID, &s.Name, &s.Tone, &s.PointOfView, &s.Pacing, &s.Guidance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.WritingStyle{}, storage.ErrNotFound
		}
		return world.WritingStyle{}, fmt.Errorf("scan writing style: %w", err)
	}
	return s, nil
}
