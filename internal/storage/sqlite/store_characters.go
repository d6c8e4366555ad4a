package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

const characterColumns = `id, world_id, name, species, gender, age, description, backstory,
memory, likes, dislikes, interests, beliefs, internal_conflict,
nutrition, hydration, tiredness, alertness, damage,
current_area_id, owner_id, character_class`

// CreateCharacter inserts a character and returns its id.
func (q queries) CreateCharacter(ctx context.Context, c world.Character) (int64, error) {
	encoded, err := encodeCharacterJSON(c)
	if err != nil {
		return 0, err
	}

	const query = `INSERT INTO characters (world_id, name, species, gender, age, description, backstory,
memory, likes, dislikes, interests, beliefs, internal_conflict,
nutrition, hydration, tiredness, alertness, damage,
current_area_id, owner_id, character_class)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	q.logf(query, c.WorldID, c.Name)
	result, err := q.db.ExecContext(ctx, query,
		c.WorldID, c.Name, c.Species, c.Gender, c.Age, c.Description, c.Backstory,
		encoded.memory, encoded.likes, encoded.dislikes, encoded.interests, encoded.beliefs, c.InternalConflict,
		c.Nutrition, c.Hydration, c.Tiredness, c.Alertness, encoded.damage,
		nullInt64(c.CurrentAreaID), emptyAsNull(c.OwnerID), string(c.Class),
	)
	if err != nil {
		return 0, fmt.Errorf("insert character: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("character insert id: %w", err)
	}
	return id, nil
}

// GetCharacter fetches a character by id.
func (q queries) GetCharacter(ctx context.Context, id int64) (world.Character, error) {
	query := "SELECT " + characterColumns + " FROM characters WHERE id = ?"
	q.logf(query, id)
	row := q.db.QueryRowContext(ctx, query, id)
	c, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.Character{}, storage.ErrNotFound
		}
		return world.Character{}, err
	}
	return c, nil
}

// ListCharactersInArea returns characters located in an area ordered by id.
func (q queries) ListCharactersInArea(ctx context.Context, areaID int64) ([]world.Character, error) {
	query := "SELECT " + characterColumns + " FROM characters WHERE current_area_id = ? ORDER BY id"
	q.logf(query, areaID)
	return q.listCharacters(ctx, query, areaID)
}

// ListAwakeCharacters returns awake characters in a world ordered by id.
func (q queries) ListAwakeCharacters(ctx context.Context, worldID int64) ([]world.Character, error) {
	query := "SELECT " + characterColumns + " FROM characters WHERE world_id = ? AND alertness >= ? ORDER BY id"
	q.logf(query, worldID)
	return q.listCharacters(ctx, query, worldID, world.AwakeThreshold)
}

// ListUnownedCharacters returns unowned characters in the scheduler's
// deterministic order: story class first, then ascending id.
func (q queries) ListUnownedCharacters(ctx context.Context, worldID int64) ([]world.Character, error) {
	query := "SELECT " + characterColumns + ` FROM characters
WHERE world_id = ? AND owner_id IS NULL
ORDER BY character_class DESC, id ASC`
	q.logf(query, worldID)
	return q.listCharacters(ctx, query, worldID)
}

func (q queries) listCharacters(ctx context.Context, query string, args ...any) ([]world.Character, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var characters []world.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

// UpdateCharacter writes back every mutable character field.
func (q queries) UpdateCharacter(ctx context.Context, c world.Character) error {
	encoded, err := encodeCharacterJSON(c)
	if err != nil {
		return err
	}

	const query = `UPDATE characters SET
name = ?, species = ?, gender = ?, age = ?, description = ?, backstory = ?,
memory = ?, likes = ?, dislikes = ?, interests = ?, beliefs = ?, internal_conflict = ?,
nutrition = ?, hydration = ?, tiredness = ?, alertness = ?, damage = ?,
current_area_id = ?, owner_id = ?, character_class = ?
WHERE id = ?`
	q.logf(query, c.ID)
	result, err := q.db.ExecContext(ctx, query,
		c.Name, c.Species, c.Gender, c.Age, c.Description, c.Backstory,
		encoded.memory, encoded.likes, encoded.dislikes, encoded.interests, encoded.beliefs, c.InternalConflict,
		c.Nutrition, c.Hydration, c.Tiredness, c.Alertness, encoded.damage,
		nullInt64(c.CurrentAreaID), emptyAsNull(c.OwnerID), string(c.Class),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update character affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetCharacterOwner sets or clears (empty string) the owning player.
func (q queries) SetCharacterOwner(ctx context.Context, id int64, ownerID string) error {
	const query = "UPDATE characters SET owner_id = ? WHERE id = ?"
	q.logf(query, id, ownerID)
	result, err := q.db.ExecContext(ctx, query, emptyAsNull(ownerID), id)
	if err != nil {
		return fmt.Errorf("set character owner: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set character owner affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCharacter removes a character. Held items fall back to no holder via
// ON DELETE SET NULL.
func (q queries) DeleteCharacter(ctx context.Context, id int64) error {
	const query = "DELETE FROM characters WHERE id = ?"
	q.logf(query, id)
	result, err := q.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete character affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type characterJSON struct {
	memory, likes, dislikes, interests, beliefs, damage string
}

func encodeCharacterJSON(c world.Character) (characterJSON, error) {
	var encoded characterJSON
	var err error
	if encoded.memory, err = encodeJSON(orEmptyMemory(c.Memory)); err != nil {
		return encoded, err
	}
	if encoded.likes, err = encodeJSON(orEmptyStrings(c.Likes)); err != nil {
		return encoded, err
	}
	if encoded.dislikes, err = encodeJSON(orEmptyStrings(c.Dislikes)); err != nil {
		return encoded, err
	}
	if encoded.interests, err = encodeJSON(orEmptyStrings(c.Interests)); err != nil {
		return encoded, err
	}
	if encoded.beliefs, err = encodeJSON(orEmptyStrings(c.Beliefs)); err != nil {
		return encoded, err
	}
	if encoded.damage, err = encodeJSON(orEmptyDamage(c.Damage)); err != nil {
		return encoded, err
	}
	return encoded, nil
}

func scanCharacter(row rowScanner) (world.Character, error) {
	var c world.Character
	var memoryRaw, likesRaw, dislikesRaw, interestsRaw, beliefsRaw, damageRaw string
	var areaID sql.NullInt64
	var ownerID sql.NullString
	var class string

	err := row.Scan(&c.ID, &c.WorldID, &c.Name, &c.Species, &c.Gender, &c.Age, &c.Description, &c.Backstory,
		&memoryRaw, &likesRaw, &dislikesRaw, &interestsRaw, &beliefsRaw, &c.InternalConflict,
		&c.Nutrition, &c.Hydration, &c.Tiredness, &c.Alertness, &damageRaw,
		&areaID, &ownerID, &class)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.Character{}, err
		}
		return world.Character{}, fmt.Errorf("scan character: %w", err)
	}

	if err := decodeJSON(memoryRaw, &c.Memory); err != nil {
		return world.Character{}, fmt.Errorf("character %d memory: %w", c.ID, err)
	}
	if err := decodeJSON(likesRaw, &c.Likes); err != nil {
		return world.Character{}, fmt.Errorf("character %d likes: %w", c.ID, err)
	}
	if err := decodeJSON(dislikesRaw, &c.Dislikes); err != nil {
		return world.Character{}, fmt.Errorf("character %d dislikes: %w", c.ID, err)
	}
	if err := decodeJSON(interestsRaw, &c.Interests); err != nil {
		return world.Character{}, fmt.Errorf("character %d interests: %w", c.ID, err)
	}
	if err := decodeJSON(beliefsRaw, &c.Beliefs); err != nil {
		return world.Character{}, fmt.Errorf("character %d beliefs: %w", c.ID, err)
	}
	if err := decodeJSON(damageRaw, &c.Damage); err != nil {
		return world.Character{}, fmt.Errorf("character %d damage: %w", c.ID, err)
	}

	c.CurrentAreaID = int64Ptr(areaID)
	if ownerID.Valid {
		c.OwnerID = ownerID.String
	}
	c.Class = world.Class(class)
	return c, nil
}

func orEmptyMemory(entries []world.MemoryEntry) []world.MemoryEntry {
	if entries == nil {
		return []world.MemoryEntry{}
	}
	return entries
}

func orEmptyStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func orEmptyDamage(damage []world.Damage) []world.Damage {
	if damage == nil {
		return []world.Damage{}
	}
	return damage
}
