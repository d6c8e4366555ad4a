package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/loreworld/internal/world"
)

// Snapshot is everything the prompt builder needs about one character,
// captured in reads before any model call.
type Snapshot struct {
	Character      world.Character
	Area           *world.Area
	AreaCharacters []world.Character
	AreaItems      []world.Item
	Held           []world.Item
}

// BuildPrompt renders the per-cycle prompt: identity, physical state,
// inventory, location, and recent memory, ending in the JSON instruction.
func BuildPrompt(s Snapshot) string {
	var b strings.Builder
	c := s.Character

	// Identity
	fmt.Fprintf(&b, "You are %s, a %d-year-old %s %s.\n", c.Name, c.Age, c.Gender, c.Species)
	if c.Description != "" {
		fmt.Fprintf(&b, "%s\n", c.Description)
	}
	if c.Backstory != "" {
		fmt.Fprintf(&b, "Backstory: %s\n", c.Backstory)
	}
	writeList(&b, "Interests", c.Interests)
	writeList(&b, "Likes", c.Likes)
	writeList(&b, "Dislikes", c.Dislikes)
	writeList(&b, "Beliefs", c.Beliefs)
	if c.InternalConflict != "" {
		fmt.Fprintf(&b, "Internal conflict: %s\n", c.InternalConflict)
	}

	// Physical state
	b.WriteString("\nPhysical state:\n")
	fmt.Fprintf(&b, "- Nutrition: %.0f%%%s\n", c.Nutrition, hungerNote(c.Nutrition))
	fmt.Fprintf(&b, "- Hydration: %.0f%%%s\n", c.Hydration, thirstNote(c.Hydration))
	fmt.Fprintf(&b, "- Tiredness: %.0f%%%s\n", c.Tiredness, tirednessNote(c.Tiredness))
	fmt.Fprintf(&b, "- Alertness: %.0f%%%s\n", c.Alertness, alertnessNote(c.Alertness))
	if len(c.Damage) > 0 {
		var injuries []string
		for _, injury := range c.Damage {
			injuries = append(injuries, fmt.Sprintf("%s (%s, %.0f%%)", injury.Part, injury.Type, injury.Severity))
		}
		fmt.Fprintf(&b, "- Injuries: %s\n", strings.Join(injuries, ", "))
	}

	// Inventory
	b.WriteString("\nInventory:\n")
	fmt.Fprintf(&b, "- Right hand: %s\n", handContents(s.Held, world.HoldRightHand))
	fmt.Fprintf(&b, "- Left hand: %s\n", handContents(s.Held, world.HoldLeftHand))
	var carried []string
	for _, item := range s.Held {
		if item.HeldLocation == nil || *item.HeldLocation == world.HoldRightHand || *item.HeldLocation == world.HoldLeftHand {
			continue
		}
		carried = append(carried, fmt.Sprintf("%s (%s)", item.Name, *item.HeldLocation))
	}
	if len(carried) > 0 {
		fmt.Fprintf(&b, "- Also carrying: %s\n", strings.Join(carried, ", "))
	}

	// Location
	b.WriteString("\n")
	if s.Area == nil {
		b.WriteString("You are not currently in any specific location.\n")
	} else {
		fmt.Fprintf(&b, "Location: %s\n", s.Area.Name)
		if s.Area.Description != "" {
			fmt.Fprintf(&b, "%s\n", s.Area.Description)
		}
		fmt.Fprintf(&b, "Temperature: %.1f°C\n", s.Area.Temperature)
		if len(s.Area.Exits) > 0 {
			var exits []string
			for _, direction := range sortedDirections(s.Area.Exits) {
				exits = append(exits, fmt.Sprintf("%s (to area %d)", direction, s.Area.Exits[direction]))
			}
			fmt.Fprintf(&b, "Exits: %s\n", strings.Join(exits, ", "))
		}
		var others []string
		for _, other := range s.AreaCharacters {
			if other.ID == c.ID {
				continue
			}
			others = append(others, other.Name)
		}
		if len(others) > 0 {
			fmt.Fprintf(&b, "Others here: %s\n", strings.Join(others, ", "))
		}
		var items []string
		for _, item := range s.AreaItems {
			items = append(items, item.Name)
		}
		if len(items) > 0 {
			fmt.Fprintf(&b, "Items here: %s\n", strings.Join(items, ", "))
		}
	}

	// Memory
	if len(c.Memory) > 0 {
		b.WriteString("\nRecent memory:\n")
		for _, entry := range c.Memory {
			fmt.Fprintf(&b, "- %s → %s\n", entry.Action, entry.Result)
		}
	}

	b.WriteString("\nRespond with a single JSON object describing your next action.")
	return b.String()
}

// SystemPrompt is the fixed action-shape instruction, with a narrative
// suffix per class.
func SystemPrompt(class world.Class) string {
	base := `You control a character in a simulated world. Respond with exactly one JSON object and nothing else. The accepted shapes are:
{"action":"move","direction":"<exit direction>"}
{"action":"speak","text":"<what you say aloud>"}
{"action":"pickup","item":"<item name>"}
{"action":"drop","item":"<item name>"}
{"action":"wait"}
{"action":"sleep"}
Never write prose, markdown, or explanations outside the JSON object.`
	if class == world.ClassStory {
		return base + "\nAct with narrative weight: your choices shape the story."
	}
	return base + "\nAct plainly and stay in the background of the story."
}

func writeList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(values, ", "))
}

func handContents(held []world.Item, hand string) string {
	for _, item := range held {
		if item.HeldLocation != nil && *item.HeldLocation == hand {
			return item.Name
		}
	}
	return "empty"
}

func hungerNote(nutrition float64) string {
	switch {
	case nutrition < 30:
		return " (very hungry)"
	case nutrition < 60:
		return " (somewhat hungry)"
	}
	return ""
}

func thirstNote(hydration float64) string {
	switch {
	case hydration < 30:
		return " (very thirsty)"
	case hydration < 60:
		return " (somewhat thirsty)"
	}
	return ""
}

func tirednessNote(tiredness float64) string {
	switch {
	case tiredness > 80:
		return " (extremely tired)"
	case tiredness > 60:
		return " (tired)"
	}
	return ""
}

func alertnessNote(alertness float64) string {
	switch {
	case alertness < world.AwakeThreshold:
		return " (asleep)"
	case alertness < 50:
		return " (drowsy)"
	}
	return ""
}

func sortedDirections(exits map[string]int64) []string {
	directions := make([]string, 0, len(exits))
	for direction := range exits {
		directions = append(directions, direction)
	}
	// Deterministic prompt text for reproducible cycles.
	sort.Strings(directions)
	return directions
}
