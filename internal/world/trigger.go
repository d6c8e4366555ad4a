package world

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Trigger is a condition/reaction pair stored on an area. Triggers are
// serialised records interpreted by the trigger engine; they carry no code.
type Trigger struct {
	Condition Condition  `json:"condition"`
	Reactions []Reaction `json:"reactions"`
	OneTime   bool       `json:"one_time,omitempty"`
}

// Condition matches events against a type and optional narrowing fields.
// Keywords apply only to character_speech events and match case-insensitively
// as substrings of the spoken text.
type Condition struct {
	Type        EventType `json:"type"`
	Keywords    []string  `json:"keywords,omitempty"`
	CharacterID *int64    `json:"character_id,omitempty"`
	ItemID      *int64    `json:"item_id,omitempty"`
}

// UnmarshalJSON accepts both the bare string form ("character_enters") and
// the object form of a condition.
func (c *Condition) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var eventType string
		if err := json.Unmarshal(data, &eventType); err != nil {
			return fmt.Errorf("decode condition string: %w", err)
		}
		*c = Condition{Type: EventType(eventType)}
		return nil
	}

	type conditionObject Condition
	var obj conditionObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode condition object: %w", err)
	}
	*c = Condition(obj)
	return nil
}

// MarshalJSON emits the compact string form when only the type is set.
func (c Condition) MarshalJSON() ([]byte, error) {
	if len(c.Keywords) == 0 && c.CharacterID == nil && c.ItemID == nil {
		return json.Marshal(string(c.Type))
	}
	type conditionObject Condition
	return json.Marshal(conditionObject(c))
}

// Matches reports whether the condition accepts the event.
func (c Condition) Matches(ev Event) bool {
	if c.Type != ev.Type {
		return false
	}
	if len(c.Keywords) > 0 && ev.Type == EventCharacterSpeech {
		spoken := strings.ToLower(ev.Text)
		found := false
		for _, keyword := range c.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(spoken, strings.ToLower(keyword)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.CharacterID != nil && *c.CharacterID != ev.CharacterID {
		return false
	}
	if c.ItemID != nil && *c.ItemID != ev.ItemID {
		return false
	}
	return true
}

// ReactionType identifies a reaction variant.
type ReactionType string

const (
	ReactionAddItem           ReactionType = "add_item"
	ReactionRemoveItem        ReactionType = "remove_item"
	ReactionAddExit           ReactionType = "add_exit"
	ReactionRemoveExit        ReactionType = "remove_exit"
	ReactionModifyDescription ReactionType = "modify_description"
	ReactionModifyTemperature ReactionType = "modify_temperature"

	// ReactionAppendDescription is an accepted alias for modify_description
	// with append semantics; it appears standalone in older configurations.
	ReactionAppendDescription ReactionType = "append_description"
)

// ItemTemplate describes an item a reaction creates in the firing area.
type ItemTemplate struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Properties  Properties `json:"properties,omitempty"`
}

// Reaction is a tagged-variant effect executed when a trigger fires. Fields
// beyond Type are populated per variant.
type Reaction struct {
	Type ReactionType `json:"type"`

	// add_item
	Item *ItemTemplate `json:"item,omitempty"`

	// remove_item
	ItemID int64 `json:"item_id,omitempty"`

	// add_exit, remove_exit
	Direction    string `json:"direction,omitempty"`
	TargetAreaID int64  `json:"target_area_id,omitempty"`

	// modify_description (one of the two must be present), and the
	// append_description alias
	NewDescription    string `json:"new_description,omitempty"`
	AppendDescription string `json:"append_description,omitempty"`

	// modify_temperature: absolute value or delta
	Temperature      *float64 `json:"temperature,omitempty"`
	TemperatureDelta *float64 `json:"temperature_delta,omitempty"`
}
