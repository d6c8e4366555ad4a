// Package kernel is the sole writer of world state. Every mutator runs in a
// single transaction, refetches its subjects by id, leaves the model
// invariants true on success, and is a no-op on failure. Events are
// published only after the transaction commits.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/loreworld/internal/bus"
	worlderr "github.com/louisbranch/loreworld/internal/errors"
	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

// SpeakKind distinguishes what a character communicates.
type SpeakKind string

const (
	// SpeakSpeech is audible and fires character_speech triggers.
	SpeakSpeech SpeakKind = "speech"
	// SpeakAction is a described physical action.
	SpeakAction SpeakKind = "action"
	// SpeakThought is internal and never audible.
	SpeakThought SpeakKind = "thought"
)

func (k SpeakKind) valid() bool {
	return k == SpeakSpeech || k == SpeakAction || k == SpeakThought
}

// Kernel exposes the atomic world mutators.
type Kernel struct {
	store storage.Store
	bus   bus.Bus
	clock func() time.Time
}

// New creates a kernel over the given store and event bus.
func New(store storage.Store, eventBus bus.Bus) *Kernel {
	return &Kernel{store: store, bus: eventBus, clock: time.Now}
}

// SetClock overrides the kernel's clock, for tests.
func (k *Kernel) SetClock(clock func() time.Time) {
	k.clock = clock
}

// Store exposes the underlying store for read paths.
func (k *Kernel) Store() storage.Store {
	return k.store
}

// MoveCharacter relocates a character to the target area and fires
// character_enters. The kernel does not consult the source area's exits;
// exit gating belongs to the caller, which keeps narrator and trigger
// driven teleports possible.
func (k *Kernel) MoveCharacter(ctx context.Context, characterID, targetAreaID int64) error {
	var ev world.Event
	err := k.store.InTx(ctx, func(q storage.Querier) error {
		character, err := getCharacter(ctx, q, characterID)
		if err != nil {
			return err
		}
		area, err := getArea(ctx, q, targetAreaID)
		if err != nil {
			return err
		}
		if area.WorldID != character.WorldID {
			return worlderr.Newf(worlderr.CodeCrossWorld, "area %d is in world %d, character %d is in world %d",
				area.ID, area.WorldID, character.ID, character.WorldID)
		}

		character.CurrentAreaID = &area.ID
		if err := q.UpdateCharacter(ctx, character); err != nil {
			return fmt.Errorf("update character location: %w", err)
		}

		ev = world.Event{
			Type:        world.EventCharacterEnters,
			WorldID:     character.WorldID,
			AreaID:      area.ID,
			CharacterID: character.ID,
		}
		return nil
	})
	if err != nil {
		return err
	}
	k.publish(ctx, ev)
	return nil
}

// Pickup moves an item from the character's area into a holding slot and
// fires item_picked_up.
func (k *Kernel) Pickup(ctx context.Context, characterID, itemID int64, holdLocation string) error {
	if holdLocation == "" {
		return worlderr.New(worlderr.CodeValidation, "hold location is required")
	}

	var ev world.Event
	err := k.store.InTx(ctx, func(q storage.Querier) error {
		character, err := getCharacter(ctx, q, characterID)
		if err != nil {
			return err
		}
		item, err := getItem(ctx, q, itemID)
		if err != nil {
			return err
		}
		if character.CurrentAreaID == nil {
			return worlderr.Newf(worlderr.CodeNoArea, "character %d is not in any area", character.ID)
		}
		if item.CurrentAreaID == nil || *item.CurrentAreaID != *character.CurrentAreaID {
			return worlderr.Newf(worlderr.CodeNotHere, "item %d is not in character %d's area", item.ID, character.ID)
		}

		// The two hands are exclusive slots; other labels may stack.
		if holdLocation == world.HoldRightHand || holdLocation == world.HoldLeftHand {
			held, err := q.ListItemsHeldBy(ctx, character.ID)
			if err != nil {
				return fmt.Errorf("list held items: %w", err)
			}
			for _, other := range held {
				if other.HeldLocation != nil && *other.HeldLocation == holdLocation {
					return worlderr.Newf(worlderr.CodeSlotOccupied, "character %d already holds %q in %s",
						character.ID, other.Name, holdLocation)
				}
			}
		}

		item.GiveTo(character.ID, holdLocation)
		if err := q.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("update item holder: %w", err)
		}

		character.Remember(
			fmt.Sprintf("picked up %s", item.Name),
			fmt.Sprintf("now holding in %s", holdLocation),
			k.clock().UTC(),
		)
		if err := q.UpdateCharacter(ctx, character); err != nil {
			return fmt.Errorf("update character memory: %w", err)
		}

		ev = world.Event{
			Type:        world.EventItemPickedUp,
			WorldID:     character.WorldID,
			AreaID:      *character.CurrentAreaID,
			CharacterID: character.ID,
			ItemID:      item.ID,
		}
		return nil
	})
	if err != nil {
		return err
	}
	k.publish(ctx, ev)
	return nil
}

// Drop returns a held item to the character's area and fires item_dropped.
func (k *Kernel) Drop(ctx context.Context, characterID, itemID int64) error {
	var ev world.Event
	err := k.store.InTx(ctx, func(q storage.Querier) error {
		character, err := getCharacter(ctx, q, characterID)
		if err != nil {
			return err
		}
		item, err := getItem(ctx, q, itemID)
		if err != nil {
			return err
		}
		if item.HeldByCharacterID == nil || *item.HeldByCharacterID != character.ID {
			return worlderr.Newf(worlderr.CodeNotHolding, "character %d is not holding item %d", character.ID, item.ID)
		}
		if character.CurrentAreaID == nil {
			return worlderr.Newf(worlderr.CodeNoArea, "character %d is not in any area", character.ID)
		}

		item.PlaceInArea(*character.CurrentAreaID)
		if err := q.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("update item location: %w", err)
		}

		character.Remember(
			fmt.Sprintf("dropped %s", item.Name),
			"no longer holding it",
			k.clock().UTC(),
		)
		if err := q.UpdateCharacter(ctx, character); err != nil {
			return fmt.Errorf("update character memory: %w", err)
		}

		ev = world.Event{
			Type:        world.EventItemDropped,
			WorldID:     character.WorldID,
			AreaID:      *character.CurrentAreaID,
			CharacterID: character.ID,
			ItemID:      item.ID,
		}
		return nil
	})
	if err != nil {
		return err
	}
	k.publish(ctx, ev)
	return nil
}

// UpdateState applies a partial physiology update. Percentages clamp to
// [0, 100] and reaching tiredness 100 forces sleep. No trigger events fire.
func (k *Kernel) UpdateState(ctx context.Context, characterID int64, patch world.StatePatch) (world.Character, error) {
	var updated world.Character
	err := k.store.InTx(ctx, func(q storage.Querier) error {
		character, err := getCharacter(ctx, q, characterID)
		if err != nil {
			return err
		}
		character.ApplyState(patch)
		if err := q.UpdateCharacter(ctx, character); err != nil {
			return fmt.Errorf("update character state: %w", err)
		}
		updated = character
		return nil
	})
	if err != nil {
		return world.Character{}, err
	}
	return updated, nil
}

// Speak records a communication in the character's memory. Audible speech in
// an area fires character_speech.
func (k *Kernel) Speak(ctx context.Context, characterID int64, text string, kind SpeakKind) error {
	if !kind.valid() {
		return worlderr.Newf(worlderr.CodeValidation, "speak kind %q is not one of speech, action, thought", kind)
	}

	var ev *world.Event
	err := k.store.InTx(ctx, func(q storage.Querier) error {
		character, err := getCharacter(ctx, q, characterID)
		if err != nil {
			return err
		}

		character.Remember(fmt.Sprintf("%s: %s", kind, text), "communicated", k.clock().UTC())
		if err := q.UpdateCharacter(ctx, character); err != nil {
			return fmt.Errorf("update character memory: %w", err)
		}

		if kind == SpeakSpeech && character.CurrentAreaID != nil {
			ev = &world.Event{
				Type:        world.EventCharacterSpeech,
				WorldID:     character.WorldID,
				AreaID:      *character.CurrentAreaID,
				CharacterID: character.ID,
				Text:        text,
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if ev != nil {
		k.publish(ctx, *ev)
	}
	return nil
}

// AppendMemory appends one memory entry, stamping it and enforcing the
// class tail cap.
func (k *Kernel) AppendMemory(ctx context.Context, characterID int64, action, result string) error {
	return k.store.InTx(ctx, func(q storage.Querier) error {
		character, err := getCharacter(ctx, q, characterID)
		if err != nil {
			return err
		}
		character.Remember(action, result, k.clock().UTC())
		if err := q.UpdateCharacter(ctx, character); err != nil {
			return fmt.Errorf("update character memory: %w", err)
		}
		return nil
	})
}

func (k *Kernel) publish(ctx context.Context, ev world.Event) {
	if k.bus == nil || ev.Type == "" {
		return
	}
	k.bus.Publish(ctx, ev)
}

func getCharacter(ctx context.Context, q storage.Querier, id int64) (world.Character, error) {
	character, err := q.GetCharacter(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return world.Character{}, worlderr.Newf(worlderr.CodeNotFound, "character %d does not exist", id)
		}
		return world.Character{}, fmt.Errorf("get character %d: %w", id, err)
	}
	return character, nil
}

func getArea(ctx context.Context, q storage.Querier, id int64) (world.Area, error) {
	area, err := q.GetArea(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return world.Area{}, worlderr.Newf(worlderr.CodeNotFound, "area %d does not exist", id)
		}
		return world.Area{}, fmt.Errorf("get area %d: %w", id, err)
	}
	return area, nil
}

func getItem(ctx context.Context, q storage.Querier, id int64) (world.Item, error) {
	item, err := q.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return world.Item{}, worlderr.Newf(worlderr.CodeNotFound, "item %d does not exist", id)
		}
		return world.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}
