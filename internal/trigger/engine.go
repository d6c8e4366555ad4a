// Package trigger interprets the data-driven reactive layer attached to
// areas. The engine is the single subscriber of kernel events: it matches an
// event against the firing area's trigger list, executes reactions in
// declared order, and removes one-time triggers after their reactions
// complete. Reactions mutate storage directly within one transaction and
// never publish events, so a firing trigger forms a single quiescent layer
// with no re-entry.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

// Engine executes trigger reactions against world state.
type Engine struct {
	store storage.Store
}

// New creates a trigger engine over the store.
func New(store storage.Store) *Engine {
	return &Engine{store: store}
}

// HandleEvent is the bus handler. Failures are logged, not propagated: the
// originating mutation already committed.
func (e *Engine) HandleEvent(ctx context.Context, ev world.Event) {
	if err := e.handle(ctx, ev); err != nil {
		log.Printf("trigger engine: event %s on area %d: %v", ev.Type, ev.AreaID, err)
	}
}

func (e *Engine) handle(ctx context.Context, ev world.Event) error {
	if ev.AreaID == 0 {
		return nil
	}

	return e.store.InTx(ctx, func(q storage.Querier) error {
		area, err := q.GetArea(ctx, ev.AreaID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get area: %w", err)
		}

		// Collect matches first, then execute, so reactions rewriting the
		// trigger list cannot shift iteration.
		var fired []int
		for i, trigger := range area.Triggers {
			if trigger.Condition.Matches(ev) {
				fired = append(fired, i)
			}
		}
		if len(fired) == 0 {
			return nil
		}

		dirty := false
		for _, index := range fired {
			for _, reaction := range area.Triggers[index].Reactions {
				changed, err := e.execute(ctx, q, &area, reaction)
				if err != nil {
					return fmt.Errorf("reaction %s: %w", reaction.Type, err)
				}
				dirty = dirty || changed
			}
		}

		if removed := removeOneTime(&area, fired); removed {
			dirty = true
		}
		if !dirty {
			return nil
		}
		if err := q.UpdateArea(ctx, area); err != nil {
			return fmt.Errorf("update area: %w", err)
		}
		return nil
	})
}

// execute applies one reaction. The bool reports whether the area row
// changed and needs writing back.
func (e *Engine) execute(ctx context.Context, q storage.Querier, area *world.Area, reaction world.Reaction) (bool, error) {
	switch reaction.Type {
	case world.ReactionAddItem:
		if reaction.Item == nil {
			return false, fmt.Errorf("add_item reaction has no item template")
		}
		_, err := q.CreateItem(ctx, world.Item{
			WorldID:       area.WorldID,
			Name:          reaction.Item.Name,
			Description:   reaction.Item.Description,
			Properties:    reaction.Item.Properties,
			CurrentAreaID: &area.ID,
		})
		if err != nil {
			return false, fmt.Errorf("create item: %w", err)
		}
		return false, nil

	case world.ReactionRemoveItem:
		item, err := q.GetItem(ctx, reaction.ItemID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("get item: %w", err)
		}
		// Cross-world removals are silently skipped.
		if item.WorldID != area.WorldID {
			return false, nil
		}
		if err := q.DeleteItem(ctx, item.ID); err != nil {
			return false, fmt.Errorf("delete item: %w", err)
		}
		return false, nil

	case world.ReactionAddExit:
		if area.Exits == nil {
			area.Exits = map[string]int64{}
		}
		area.Exits[strings.ToLower(reaction.Direction)] = reaction.TargetAreaID
		return true, nil

	case world.ReactionRemoveExit:
		if _, ok := area.Exits[strings.ToLower(reaction.Direction)]; !ok {
			return false, nil
		}
		delete(area.Exits, strings.ToLower(reaction.Direction))
		return true, nil

	case world.ReactionModifyDescription:
		switch {
		case reaction.NewDescription != "":
			area.Description = reaction.NewDescription
		case reaction.AppendDescription != "":
			area.Description += reaction.AppendDescription
		default:
			return false, fmt.Errorf("modify_description reaction has neither new_description nor append_description")
		}
		return true, nil

	case world.ReactionAppendDescription:
		if reaction.AppendDescription == "" {
			return false, fmt.Errorf("append_description reaction has no text")
		}
		area.Description += reaction.AppendDescription
		return true, nil

	case world.ReactionModifyTemperature:
		switch {
		case reaction.Temperature != nil:
			area.Temperature = *reaction.Temperature
		case reaction.TemperatureDelta != nil:
			area.Temperature += *reaction.TemperatureDelta
		default:
			return false, fmt.Errorf("modify_temperature reaction has neither temperature nor temperature_delta")
		}
		return true, nil

	default:
		return false, fmt.Errorf("unknown reaction type %q", reaction.Type)
	}
}

// removeOneTime drops fired one-time triggers from the area's list.
func removeOneTime(area *world.Area, fired []int) bool {
	firedSet := make(map[int]bool, len(fired))
	for _, index := range fired {
		firedSet[index] = true
	}

	kept := area.Triggers[:0:0]
	removed := false
	for i, trigger := range area.Triggers {
		if firedSet[i] && trigger.OneTime {
			removed = true
			continue
		}
		kept = append(kept, trigger)
	}
	if removed {
		area.Triggers = kept
	}
	return removed
}
