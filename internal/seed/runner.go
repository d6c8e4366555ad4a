package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

// Apply inserts the fixture through the store and returns the new world id.
// Areas are created before exits and triggers are resolved, since both may
// reference areas by key in any order.
func Apply(ctx context.Context, store storage.Store, fixture Fixture) (int64, error) {
	doc := fixture.World

	worldID, err := store.CreateWorld(ctx, world.World{Name: doc.Name, Description: doc.Description})
	if err != nil {
		return 0, fmt.Errorf("create world: %w", err)
	}

	if doc.Style != nil {
		_, err := store.CreateWritingStyle(ctx, world.WritingStyle{
			WorldID:     worldID,
			Name:        doc.Style.Name,
			Tone:        doc.Style.Tone,
			PointOfView: doc.Style.PointOfView,
			Pacing:      doc.Style.Pacing,
			Guidance:    doc.Style.Guidance,
		})
		if err != nil {
			return 0, fmt.Errorf("create writing style: %w", err)
		}
	}

	// First pass: create bare areas so keys resolve.
	areaIDs := make(map[string]int64, len(doc.Areas))
	for _, areaDoc := range doc.Areas {
		if areaDoc.Key == "" {
			return 0, fmt.Errorf("area %q has no key", areaDoc.Name)
		}
		if _, exists := areaIDs[areaDoc.Key]; exists {
			return 0, fmt.Errorf("duplicate area key %q", areaDoc.Key)
		}
		temperature := 20.0
		if areaDoc.Temperature != nil {
			temperature = *areaDoc.Temperature
		}
		id, err := store.CreateArea(ctx, world.Area{
			WorldID:     worldID,
			Name:        areaDoc.Name,
			Description: areaDoc.Description,
			Temperature: temperature,
		})
		if err != nil {
			return 0, fmt.Errorf("create area %q: %w", areaDoc.Key, err)
		}
		areaIDs[areaDoc.Key] = id
	}

	// Second pass: wire exits and triggers.
	for _, areaDoc := range doc.Areas {
		if len(areaDoc.Exits) == 0 && len(areaDoc.Triggers) == 0 {
			continue
		}
		area, err := store.GetArea(ctx, areaIDs[areaDoc.Key])
		if err != nil {
			return 0, fmt.Errorf("reload area %q: %w", areaDoc.Key, err)
		}

		if len(areaDoc.Exits) > 0 {
			area.Exits = make(map[string]int64, len(areaDoc.Exits))
			for direction, targetKey := range areaDoc.Exits {
				targetID, ok := areaIDs[targetKey]
				if !ok {
					return 0, fmt.Errorf("area %q exit %q references unknown area key %q", areaDoc.Key, direction, targetKey)
				}
				area.Exits[strings.ToLower(direction)] = targetID
			}
		}

		for _, triggerDoc := range areaDoc.Triggers {
			built, err := buildTrigger(triggerDoc, areaIDs)
			if err != nil {
				return 0, fmt.Errorf("area %q: %w", areaDoc.Key, err)
			}
			area.Triggers = append(area.Triggers, built)
		}

		if err := store.UpdateArea(ctx, area); err != nil {
			return 0, fmt.Errorf("update area %q: %w", areaDoc.Key, err)
		}
	}

	characterIDs := make(map[string]int64, len(doc.Characters))
	for _, characterDoc := range doc.Characters {
		class := world.Class(characterDoc.Class)
		if characterDoc.Class == "" {
			class = world.ClassMinor
		}
		if !class.Valid() {
			return 0, fmt.Errorf("character %q class %q must be story or minor", characterDoc.Name, characterDoc.Class)
		}

		var areaID *int64
		if characterDoc.Area != "" {
			id, ok := areaIDs[characterDoc.Area]
			if !ok {
				return 0, fmt.Errorf("character %q references unknown area key %q", characterDoc.Name, characterDoc.Area)
			}
			areaID = &id
		}

		id, err := store.CreateCharacter(ctx, world.Character{
			WorldID:          worldID,
			Name:             characterDoc.Name,
			Species:          characterDoc.Species,
			Gender:           characterDoc.Gender,
			Age:              characterDoc.Age,
			Description:      characterDoc.Description,
			Backstory:        characterDoc.Backstory,
			Likes:            characterDoc.Likes,
			Dislikes:         characterDoc.Dislikes,
			Interests:        characterDoc.Interests,
			Beliefs:          characterDoc.Beliefs,
			InternalConflict: characterDoc.InternalConflict,
			Nutrition:        100,
			Hydration:        100,
			Tiredness:        0,
			Alertness:        100,
			CurrentAreaID:    areaID,
			Class:            class,
		})
		if err != nil {
			return 0, fmt.Errorf("create character %q: %w", characterDoc.Name, err)
		}
		characterIDs[characterDoc.Name] = id
	}

	for _, itemDoc := range doc.Items {
		item := world.Item{
			WorldID:     worldID,
			Name:        itemDoc.Name,
			Description: itemDoc.Description,
			Properties:  itemDoc.Properties,
		}
		switch {
		case itemDoc.HeldBy != "":
			holderID, ok := characterIDs[itemDoc.HeldBy]
			if !ok {
				return 0, fmt.Errorf("item %q references unknown character %q", itemDoc.Name, itemDoc.HeldBy)
			}
			location := itemDoc.Location
			if location == "" {
				location = world.HoldRightHand
			}
			item.HeldByCharacterID = &holderID
			item.HeldLocation = &location
		case itemDoc.Area != "":
			areaID, ok := areaIDs[itemDoc.Area]
			if !ok {
				return 0, fmt.Errorf("item %q references unknown area key %q", itemDoc.Name, itemDoc.Area)
			}
			item.CurrentAreaID = &areaID
		default:
			return 0, fmt.Errorf("item %q needs an area or a holder", itemDoc.Name)
		}

		if _, err := store.CreateItem(ctx, item); err != nil {
			return 0, fmt.Errorf("create item %q: %w", itemDoc.Name, err)
		}
	}

	return worldID, nil
}

func buildTrigger(doc TriggerDoc, areaIDs map[string]int64) (world.Trigger, error) {
	eventType := world.EventType(doc.Event)
	switch eventType {
	case world.EventCharacterEnters, world.EventCharacterSpeech, world.EventItemPickedUp, world.EventItemDropped:
	default:
		return world.Trigger{}, fmt.Errorf("trigger event %q is unknown", doc.Event)
	}

	built := world.Trigger{
		Condition: world.Condition{Type: eventType, Keywords: doc.Keywords},
		OneTime:   doc.OneTime,
	}

	for _, reactionDoc := range doc.Reactions {
		reaction := world.Reaction{
			Type:              world.ReactionType(reactionDoc.Type),
			Direction:         strings.ToLower(reactionDoc.Direction),
			NewDescription:    reactionDoc.NewDescription,
			AppendDescription: reactionDoc.AppendDescription,
			Temperature:       reactionDoc.Temperature,
			TemperatureDelta:  reactionDoc.TemperatureDelta,
		}
		if reactionDoc.Item != nil {
			reaction.Item = &world.ItemTemplate{
				Name:        reactionDoc.Item.Name,
				Description: reactionDoc.Item.Description,
				Properties:  reactionDoc.Item.Properties,
			}
		}
		if reactionDoc.TargetArea != "" {
			targetID, ok := areaIDs[reactionDoc.TargetArea]
			if !ok {
				return world.Trigger{}, fmt.Errorf("reaction references unknown area key %q", reactionDoc.TargetArea)
			}
			reaction.TargetAreaID = targetID
		}
		built.Reactions = append(built.Reactions, reaction)
	}

	return built, nil
}
