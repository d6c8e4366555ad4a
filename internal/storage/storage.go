// Package storage defines the persistence interfaces the kernel, scheduler,
// and RPC surface depend on. Implementations live in subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/loreworld/internal/world"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Querier exposes typed reads and writes for every entity. JSON-valued
// columns are decoded on load; callers always receive domain types.
type Querier interface {
	// Worlds
	CreateWorld(ctx context.Context, w world.World) (int64, error)
	GetWorld(ctx context.Context, id int64) (world.World, error)
	ListWorlds(ctx context.Context) ([]world.World, error)
	DeleteWorld(ctx context.Context, id int64) error

	// Writing styles
	CreateWritingStyle(ctx context.Context, s world.WritingStyle) (int64, error)
	GetWritingStyle(ctx context.Context, worldID int64) (world.WritingStyle, error)

	// Areas
	CreateArea(ctx context.Context, a world.Area) (int64, error)
	GetArea(ctx context.Context, id int64) (world.Area, error)
	ListAreas(ctx context.Context, worldID int64) ([]world.Area, error)
	UpdateArea(ctx context.Context, a world.Area) error

	// Characters
	CreateCharacter(ctx context.Context, c world.Character) (int64, error)
	GetCharacter(ctx context.Context, id int64) (world.Character, error)
	ListCharactersInArea(ctx context.Context, areaID int64) ([]world.Character, error)
	ListAwakeCharacters(ctx context.Context, worldID int64) ([]world.Character, error)
	// ListUnownedCharacters returns unowned characters ordered story-first
	// then by ascending id, the scheduler's deterministic processing order.
	ListUnownedCharacters(ctx context.Context, worldID int64) ([]world.Character, error)
	UpdateCharacter(ctx context.Context, c world.Character) error
	SetCharacterOwner(ctx context.Context, id int64, ownerID string) error
	DeleteCharacter(ctx context.Context, id int64) error

	// Items
	CreateItem(ctx context.Context, i world.Item) (int64, error)
	GetItem(ctx context.Context, id int64) (world.Item, error)
	ListItemsInArea(ctx context.Context, areaID int64) ([]world.Item, error)
	ListItemsHeldBy(ctx context.Context, characterID int64) ([]world.Item, error)
	UpdateItem(ctx context.Context, i world.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// Store is a Querier that can also scope work to a transaction. InTx runs fn
// against a transactional Querier and commits on nil return; any error rolls
// the transaction back. Mutators that span multiple rows must run inside
// InTx so invariants hold atomically.
type Store interface {
	Querier
	InTx(ctx context.Context, fn func(q Querier) error) error
	Close() error
}
