// Package seed loads YAML world fixtures into storage. Fixtures reference
// areas and characters by key; Apply resolves keys to row ids in dependency
// order.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the root of a world document.
type Fixture struct {
	World WorldDoc `yaml:"world"`
}

// WorldDoc describes one world and everything in it.
type WorldDoc struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Style       *StyleDoc      `yaml:"style"`
	Areas       []AreaDoc      `yaml:"areas"`
	Characters  []CharacterDoc `yaml:"characters"`
	Items       []ItemDoc      `yaml:"items"`
}

// StyleDoc is the world's prose configuration.
type StyleDoc struct {
	Name        string `yaml:"name"`
	Tone        string `yaml:"tone"`
	PointOfView string `yaml:"point_of_view"`
	Pacing      string `yaml:"pacing"`
	Guidance    string `yaml:"guidance"`
}

// AreaDoc describes an area. Exits map direction labels to area keys.
type AreaDoc struct {
	Key         string            `yaml:"key"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Temperature *float64          `yaml:"temperature"`
	Exits       map[string]string `yaml:"exits"`
	Triggers    []TriggerDoc      `yaml:"triggers"`
}

// TriggerDoc describes a trigger in fixture form.
type TriggerDoc struct {
	Event     string        `yaml:"event"`
	Keywords  []string      `yaml:"keywords"`
	OneTime   bool          `yaml:"one_time"`
	Reactions []ReactionDoc `yaml:"reactions"`
}

// ReactionDoc describes one reaction; target_area is an area key.
type ReactionDoc struct {
	Type              string           `yaml:"type"`
	Item              *ItemTemplateDoc `yaml:"item"`
	Direction         string           `yaml:"direction"`
	TargetArea        string           `yaml:"target_area"`
	NewDescription    string           `yaml:"new_description"`
	AppendDescription string           `yaml:"append_description"`
	Temperature       *float64         `yaml:"temperature"`
	TemperatureDelta  *float64         `yaml:"temperature_delta"`
}

// ItemTemplateDoc describes an item a reaction creates.
type ItemTemplateDoc struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Properties  map[string]any `yaml:"properties"`
}

// CharacterDoc describes a character; area is an area key.
type CharacterDoc struct {
	Name             string   `yaml:"name"`
	Species          string   `yaml:"species"`
	Gender           string   `yaml:"gender"`
	Age              int      `yaml:"age"`
	Description      string   `yaml:"description"`
	Backstory        string   `yaml:"backstory"`
	Class            string   `yaml:"class"`
	Area             string   `yaml:"area"`
	Likes            []string `yaml:"likes"`
	Dislikes         []string `yaml:"dislikes"`
	Interests        []string `yaml:"interests"`
	Beliefs          []string `yaml:"beliefs"`
	InternalConflict string   `yaml:"internal_conflict"`
}

// ItemDoc describes an item placed in an area or held by a character.
type ItemDoc struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Properties  map[string]any `yaml:"properties"`
	Area        string         `yaml:"area"`
	HeldBy      string         `yaml:"held_by"`
	Location    string         `yaml:"location"`
}

// Load reads and decodes a fixture file.
func Load(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if fixture.World.Name == "" {
		return Fixture{}, fmt.Errorf("fixture world name is required")
	}
	return fixture, nil
}
