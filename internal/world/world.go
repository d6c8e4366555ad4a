package world

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyName indicates a name is required.
	ErrEmptyName = errors.New("name is required")
)

// World is a named container owning areas, characters, items, and styles.
type World struct {
	ID          int64
	Name        string
	Description string
}

// NormalizeWorld trims and validates world metadata.
func NormalizeWorld(w World) (World, error) {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return World{}, ErrEmptyName
	}
	w.Description = strings.TrimSpace(w.Description)
	return w, nil
}

// WritingStyle is the per-world prose configuration. The core reads it for
// clients; only the narrator pipeline writes it.
type WritingStyle struct {
	ID          int64
	WorldID     int64
	Name        string
	Tone        string
	PointOfView string
	Pacing      string
	Guidance    string
}
