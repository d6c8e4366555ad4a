package world

import (
	"errors"
	"time"
)

// Class selects the language-model tier and memory budget for a character.
type Class string

const (
	// ClassStory characters use the larger model and a deeper memory.
	ClassStory Class = "story"
	// ClassMinor characters use the smaller model.
	ClassMinor Class = "minor"
)

// ErrInvalidClass indicates an unsupported character class value.
var ErrInvalidClass = errors.New("character class must be story or minor")

// Valid reports whether the class is a known value.
func (c Class) Valid() bool {
	return c == ClassStory || c == ClassMinor
}

// MemoryCap returns the retained memory tail length for the class.
func (c Class) MemoryCap() int {
	if c == ClassStory {
		return 5
	}
	return 3
}

// AwakeThreshold is the alertness percentage at and above which a character
// is awake and eligible for scheduling.
const AwakeThreshold = 20.0

// MemoryEntry records one event a character experienced.
type MemoryEntry struct {
	Action    string    `json:"action"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Damage records one injury on a body part. Severity is a percentage.
type Damage struct {
	Part     string  `json:"part"`
	Type     string  `json:"type"`
	Severity float64 `json:"severity"`
}

// Character is an autonomous agent in a world.
type Character struct {
	ID      int64
	WorldID int64

	Name        string
	Species     string
	Gender      string
	Age         int
	Description string
	Backstory   string

	Memory           []MemoryEntry
	Likes            []string
	Dislikes         []string
	Interests        []string
	Beliefs          []string
	InternalConflict string

	Nutrition float64
	Hydration float64
	Tiredness float64
	Alertness float64
	Damage    []Damage

	// CurrentAreaID is nil when the character is nowhere.
	CurrentAreaID *int64

	// OwnerID is the claiming player's opaque identifier, empty when the
	// character is unowned and schedulable.
	OwnerID string

	Class Class
}

// Awake reports whether the character is awake.
func (c *Character) Awake() bool {
	return c.Alertness >= AwakeThreshold
}

// ClampPercent clamps a percentage value to [0, 100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// StatePatch is a partial physiology update. Nil fields are untouched.
type StatePatch struct {
	Nutrition *float64
	Hydration *float64
	Tiredness *float64
	Alertness *float64
	Damage    *[]Damage
}

// ApplyState applies a patch to the character, clamping percentages and
// enforcing the forced-sleep rule: reaching tiredness 100 zeroes alertness
// in the same update.
func (c *Character) ApplyState(patch StatePatch) {
	if patch.Nutrition != nil {
		c.Nutrition = ClampPercent(*patch.Nutrition)
	}
	if patch.Hydration != nil {
		c.Hydration = ClampPercent(*patch.Hydration)
	}
	if patch.Tiredness != nil {
		c.Tiredness = ClampPercent(*patch.Tiredness)
	}
	if patch.Alertness != nil {
		c.Alertness = ClampPercent(*patch.Alertness)
	}
	if patch.Damage != nil {
		c.Damage = *patch.Damage
	}
	if c.Tiredness >= 100 {
		c.Tiredness = 100
		c.Alertness = 0
	}
}

// Remember appends a memory entry, stamping it and trimming the tail to the
// class cap.
func (c *Character) Remember(action, result string, at time.Time) {
	c.Memory = TrimMemory(append(c.Memory, MemoryEntry{
		Action:    action,
		Result:    result,
		Timestamp: at,
	}), c.Class.MemoryCap())
}

// TrimMemory drops the oldest entries beyond the cap.
func TrimMemory(entries []MemoryEntry, cap int) []MemoryEntry {
	if cap <= 0 || len(entries) <= cap {
		return entries
	}
	return entries[len(entries)-cap:]
}
