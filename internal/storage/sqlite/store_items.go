package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

const itemColumns = "id, world_id, name, description, properties, current_area_id, held_by_character_id, held_location"

// CreateItem inserts an item and returns its id.
func (q queries) CreateItem(ctx context.Context, i world.Item) (int64, error) {
	properties, err := encodeJSON(orEmptyProperties(i.Properties))
	if err != nil {
		return 0, err
	}

	const query = `INSERT INTO items (world_id, name, description, properties, current_area_id, held_by_character_id, held_location)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	q.logf(query, i.WorldID, i.Name)
	result, err := q.db.ExecContext(ctx, query,
		i.WorldID, i.Name, i.Description, properties,
		nullInt64(i.CurrentAreaID), nullInt64(i.HeldByCharacterID), nullString(i.HeldLocation),
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("item insert id: %w", err)
	}
	return id, nil
}

// GetItem fetches an item by id.
func (q queries) GetItem(ctx context.Context, id int64) (world.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE id = ?"
	q.logf(query, id)
	row := q.db.QueryRowContext(ctx, query, id)
	i, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.Item{}, storage.ErrNotFound
		}
		return world.Item{}, err
	}
	return i, nil
}

// ListItemsInArea returns items lying in an area ordered by id.
func (q queries) ListItemsInArea(ctx context.Context, areaID int64) ([]world.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE current_area_id = ? ORDER BY id"
	q.logf(query, areaID)
	return q.listItems(ctx, query, areaID)
}

// ListItemsHeldBy returns items a character is holding ordered by id.
func (q queries) ListItemsHeldBy(ctx context.Context, characterID int64) ([]world.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE held_by_character_id = ? ORDER BY id"
	q.logf(query, characterID)
	return q.listItems(ctx, query, characterID)
}

func (q queries) listItems(ctx context.Context, query string, args ...any) ([]world.Item, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []world.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// UpdateItem writes back the mutable item fields, including location.
func (q queries) UpdateItem(ctx context.Context, i world.Item) error {
	properties, err := encodeJSON(orEmptyProperties(i.Properties))
	if err != nil {
		return err
	}

	const query = `UPDATE items SET name = ?, description = ?, properties = ?,
current_area_id = ?, held_by_character_id = ?, held_location = ?
WHERE id = ?`
	q.logf(query, i.ID)
	result, err := q.db.ExecContext(ctx, query,
		i.Name, i.Description, properties,
		nullInt64(i.CurrentAreaID), nullInt64(i.HeldByCharacterID), nullString(i.HeldLocation),
		i.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteItem removes an item.
func (q queries) DeleteItem(ctx context.Context, id int64) error {
	const query = "DELETE FROM items WHERE id = ?"
	q.logf(query, id)
	result, err := q.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanItem(row rowScanner) (world.Item, error) {
	var i world.Item
	var propertiesRaw string
	var areaID, holderID sql.NullInt64
	var heldLocation sql.NullString

	err := row.Scan(&i.ID, &i.WorldID, &i.Name, &i.Description, &propertiesRaw, &areaID, &holderID, &heldLocation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.Item{}, err
		}
		return world.Item{}, fmt.Errorf("scan item: %w", err)
	}

	if err := decodeJSON(propertiesRaw, &i.Properties); err != nil {
		return world.Item{}, fmt.Errorf("item %d properties: %w", i.ID, err)
	}
	i.CurrentAreaID = int64Ptr(areaID)
	i.HeldByCharacterID = int64Ptr(holderID)
	i.HeldLocation = stringPtr(heldLocation)
	return i, nil
}

func orEmptyProperties(properties world.Properties) world.Properties {
	if properties == nil {
		return world.Properties{}
	}
	return properties
}
