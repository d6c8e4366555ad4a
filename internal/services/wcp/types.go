package wcp

import (
	"github.com/louisbranch/loreworld/internal/world"
)

// WorldPayload is the wire form of a world row.
type WorldPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func worldPayload(w world.World) WorldPayload {
	return WorldPayload{ID: w.ID, Name: w.Name, Description: w.Description}
}

// StylePayload is the wire form of a writing style row.
type StylePayload struct {
	ID          int64  `json:"id"`
	WorldID     int64  `json:"world_id"`
	Name        string `json:"name,omitempty"`
	Tone        string `json:"tone,omitempty"`
	PointOfView string `json:"point_of_view,omitempty"`
	Pacing      string `json:"pacing,omitempty"`
	Guidance    string `json:"guidance,omitempty"`
}

func stylePayload(s world.WritingStyle) StylePayload {
	return StylePayload{
		ID: s.ID, WorldID: s.WorldID, Name: s.Name,
		Tone: s.Tone, PointOfView: s.PointOfView, Pacing: s.Pacing, Guidance: s.Guidance,
	}
}

// AreaPayload is the wire form of an area row.
type AreaPayload struct {
	ID          int64            `json:"id"`
	WorldID     int64            `json:"world_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Temperature float64          `json:"temperature"`
	Exits       map[string]int64 `json:"exits,omitempty"`
	Triggers    int              `json:"trigger_count"`
}

func areaPayload(a world.Area) AreaPayload {
	return AreaPayload{
		ID: a.ID, WorldID: a.WorldID, Name: a.Name, Description: a.Description,
		Temperature: a.Temperature, Exits: a.Exits, Triggers: len(a.Triggers),
	}
}

// MemoryPayload is one remembered event.
type MemoryPayload struct {
	Action    string `json:"action"`
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
}

// CharacterPayload is the wire form of a character row.
type CharacterPayload struct {
	ID               int64           `json:"id"`
	WorldID          int64           `json:"world_id"`
	Name             string          `json:"name"`
	Species          string          `json:"species,omitempty"`
	Gender           string          `json:"gender,omitempty"`
	Age              int             `json:"age,omitempty"`
	Description      string          `json:"description,omitempty"`
	Backstory        string          `json:"backstory,omitempty"`
	Class            string          `json:"character_class"`
	CurrentAreaID    *int64          `json:"current_area_id,omitempty"`
	Owned            bool            `json:"owned"`
	Nutrition        float64         `json:"nutrition"`
	Hydration        float64         `json:"hydration"`
	Tiredness        float64         `json:"tiredness"`
	Alertness        float64         `json:"alertness"`
	Damage           []world.Damage  `json:"damage,omitempty"`
	Memory           []MemoryPayload `json:"memory,omitempty"`
	Likes            []string        `json:"likes,omitempty"`
	Dislikes         []string        `json:"dislikes,omitempty"`
	Interests        []string        `json:"interests,omitempty"`
	Beliefs          []string        `json:"beliefs,omitempty"`
	InternalConflict string          `json:"internal_conflict,omitempty"`
}

func characterPayload(c world.Character) CharacterPayload {
	payload := CharacterPayload{
		ID: c.ID, WorldID: c.WorldID, Name: c.Name,
		Species: c.Species, Gender: c.Gender, Age: c.Age,
		Description: c.Description, Backstory: c.Backstory,
		Class: string(c.Class), CurrentAreaID: c.CurrentAreaID,
		Owned:     c.OwnerID != "",
		Nutrition: c.Nutrition, Hydration: c.Hydration,
		Tiredness: c.Tiredness, Alertness: c.Alertness,
		Damage:    c.Damage,
		Likes:     c.Likes, Dislikes: c.Dislikes,
		Interests: c.Interests, Beliefs: c.Beliefs,
		InternalConflict: c.InternalConflict,
	}
	for _, entry := range c.Memory {
		payload.Memory = append(payload.Memory, MemoryPayload{
			Action:    entry.Action,
			Result:    entry.Result,
			Timestamp: entry.Timestamp.UTC().Format(timestampFormat),
		})
	}
	return payload
}

// ItemPayload is the wire form of an item row.
type ItemPayload struct {
	ID                int64            `json:"id"`
	WorldID           int64            `json:"world_id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Properties        world.Properties `json:"properties,omitempty"`
	CurrentAreaID     *int64           `json:"current_area_id,omitempty"`
	HeldByCharacterID *int64           `json:"held_by_character_id,omitempty"`
	HeldLocation      *string          `json:"held_location,omitempty"`
}

func itemPayload(i world.Item) ItemPayload {
	return ItemPayload{
		ID: i.ID, WorldID: i.WorldID, Name: i.Name, Description: i.Description,
		Properties: i.Properties, CurrentAreaID: i.CurrentAreaID,
		HeldByCharacterID: i.HeldByCharacterID, HeldLocation: i.HeldLocation,
	}
}

func itemPayloads(items []world.Item) []ItemPayload {
	payloads := make([]ItemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, itemPayload(item))
	}
	return payloads
}

func characterPayloads(characters []world.Character) []CharacterPayload {
	payloads := make([]CharacterPayload, 0, len(characters))
	for _, character := range characters {
		payloads = append(payloads, characterPayload(character))
	}
	return payloads
}
