package scheduler

import (
	"strings"
	"testing"

	"github.com/louisbranch/loreworld/internal/world"
)

func holdPtr(s string) *string { return &s }

func TestBuildPromptSections(t *testing.T) {
	areaID := int64(10)
	area := world.Area{
		ID: areaID, Name: "Great Hall", Description: "Vaulted ceilings.",
		Temperature: 17.5,
		Exits:       map[string]int64{"north": 2, "down": 5},
	}
	snapshot := Snapshot{
		Character: world.Character{
			ID: 1, Name: "Maren", Age: 31, Gender: "female", Species: "human",
			Description:      "A wiry cartographer.",
			Backstory:        "Raised on the river barges.",
			Interests:        []string{"maps", "rivers"},
			Beliefs:          []string{"the river remembers"},
			InternalConflict: "duty against wanderlust",
			Nutrition:        55, Hydration: 25, Tiredness: 85, Alertness: 45,
			Damage:        []world.Damage{{Part: "left arm", Type: "burn", Severity: 12}},
			CurrentAreaID: &areaID,
			Class:         world.ClassStory,
			Memory: []world.MemoryEntry{
				{Action: "picked up Torch", Result: "now holding in right hand"},
			},
		},
		Area: &area,
		AreaCharacters: []world.Character{
			{ID: 1, Name: "Maren"},
			{ID: 2, Name: "Bran"},
		},
		AreaItems: []world.Item{{Name: "Rope"}},
		Held: []world.Item{
			{Name: "Torch", HeldLocation: holdPtr(world.HoldRightHand)},
			{Name: "Coin", HeldLocation: holdPtr("coat pocket")},
		},
	}

	prompt := BuildPrompt(snapshot)

	wantInOrder := []string{
		"You are Maren, a 31-year-old female human.",
		"Backstory: Raised on the river barges.",
		"Interests: maps, rivers",
		"Internal conflict: duty against wanderlust",
		"Physical state:",
		"Nutrition: 55% (somewhat hungry)",
		"Hydration: 25% (very thirsty)",
		"Tiredness: 85% (extremely tired)",
		"Alertness: 45% (drowsy)",
		"Injuries: left arm (burn, 12%)",
		"Inventory:",
		"Right hand: Torch",
		"Left hand: empty",
		"Also carrying: Coin (coat pocket)",
		"Location: Great Hall",
		"Temperature: 17.5°C",
		"Exits: down (to area 5), north (to area 2)",
		"Others here: Bran",
		"Items here: Rope",
		"Recent memory:",
		"picked up Torch → now holding in right hand",
		"Respond with a single JSON object",
	}
	position := 0
	for _, want := range wantInOrder {
		index := strings.Index(prompt[position:], want)
		if index < 0 {
			t.Fatalf("prompt missing %q after position %d:\n%s", want, position, prompt)
		}
		position += index
	}

	if strings.Contains(prompt, "Others here: Bran, Maren") {
		t.Fatal("prompt must exclude the character from the others list")
	}
}

func TestBuildPromptNoArea(t *testing.T) {
	prompt := BuildPrompt(Snapshot{
		Character: world.Character{Name: "Ghost", Age: 40, Gender: "male", Species: "human", Class: world.ClassMinor,
			Nutrition: 100, Hydration: 100, Alertness: 100},
	})
	if !strings.Contains(prompt, "not currently in any specific location") {
		t.Fatalf("expected placeless wording, got:\n%s", prompt)
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	prompt := BuildPrompt(Snapshot{
		Character: world.Character{Name: "Bran", Age: 20, Gender: "male", Species: "human", Class: world.ClassMinor,
			Nutrition: 100, Hydration: 100, Alertness: 100},
	})
	for _, banned := range []string{"Internal conflict:", "Injuries:", "Recent memory:", "Also carrying:"} {
		if strings.Contains(prompt, banned) {
			t.Fatalf("expected %q omitted for an empty field:\n%s", banned, prompt)
		}
	}
}

func TestSystemPromptVariants(t *testing.T) {
	story := SystemPrompt(world.ClassStory)
	minor := SystemPrompt(world.ClassMinor)

	for _, prompt := range []string{story, minor} {
		for _, shape := range []string{`"move"`, `"speak"`, `"pickup"`, `"drop"`, `"wait"`, `"sleep"`} {
			if !strings.Contains(prompt, shape) {
				t.Fatalf("system prompt missing action shape %s", shape)
			}
		}
	}
	if story == minor {
		t.Fatal("expected class variants to differ")
	}
	if !strings.Contains(story, "narrative weight") {
		t.Fatal("expected story variant to carry the narrative suffix")
	}
}
