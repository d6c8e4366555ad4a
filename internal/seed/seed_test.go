package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/louisbranch/loreworld/internal/storage/sqlite"
	"github.com/louisbranch/loreworld/internal/world"
)

func TestLoadAndApplyFixture(t *testing.T) {
	fixture, err := Load(filepath.Join("testdata", "emberfall.yaml"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "world.db"), sqlite.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	worldID, err := Apply(ctx, store, fixture)
	if err != nil {
		t.Fatalf("apply fixture: %v", err)
	}

	areas, err := store.ListAreas(ctx, worldID)
	if err != nil {
		t.Fatalf("list areas: %v", err)
	}
	if len(areas) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(areas))
	}

	byName := map[string]world.Area{}
	for _, area := range areas {
		byName[area.Name] = area
	}
	square := byName["Market Square"]
	chapel := byName["Riverside Chapel"]

	if square.Exits["north"] != chapel.ID {
		t.Fatalf("expected square north exit to chapel, got %v", square.Exits)
	}
	if chapel.Exits["south"] != square.ID {
		t.Fatalf("expected chapel south exit to square, got %v", chapel.Exits)
	}

	if len(chapel.Triggers) != 1 {
		t.Fatalf("expected 1 chapel trigger, got %d", len(chapel.Triggers))
	}
	chapelTrigger := chapel.Triggers[0]
	if chapelTrigger.Condition.Type != world.EventCharacterSpeech || !chapelTrigger.OneTime {
		t.Fatalf("unexpected trigger condition: %+v", chapelTrigger)
	}
	if chapelTrigger.Reactions[0].TargetAreaID != square.ID {
		t.Fatalf("expected reaction target resolved to square, got %d", chapelTrigger.Reactions[0].TargetAreaID)
	}

	characters, err := store.ListUnownedCharacters(ctx, worldID)
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(characters) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(characters))
	}
	// Story class first in the scheduler order.
	if characters[0].Name != "Maren" || characters[0].Class != world.ClassStory {
		t.Fatalf("expected Maren first, got %+v", characters[0])
	}
	if characters[0].CurrentAreaID == nil || *characters[0].CurrentAreaID != square.ID {
		t.Fatalf("expected Maren in the square, got %v", characters[0].CurrentAreaID)
	}

	held, err := store.ListItemsHeldBy(ctx, characters[0].ID)
	if err != nil {
		t.Fatalf("list held: %v", err)
	}
	if len(held) != 1 || held[0].Name != "Ledger" || *held[0].HeldLocation != "satchel" {
		t.Fatalf("expected Maren holding the ledger in her satchel, got %+v", held)
	}

	style, err := store.GetWritingStyle(ctx, worldID)
	if err != nil {
		t.Fatalf("get style: %v", err)
	}
	if style.Tone != "wistful" {
		t.Fatalf("expected wistful tone, got %q", style.Tone)
	}
}

func TestApplyRejectsUnknownAreaKey(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "world.db"), sqlite.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	fixture := Fixture{World: WorldDoc{
		Name: "Broken",
		Areas: []AreaDoc{{
			Key: "a", Name: "A",
			Exits: map[string]string{"north": "missing"},
		}},
	}}
	if _, err := Apply(context.Background(), store, fixture); err == nil {
		t.Fatal("expected error for unknown area key")
	}
}
