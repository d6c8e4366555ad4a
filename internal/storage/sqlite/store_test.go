package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.db")
	store, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedWorld(t *testing.T, store *Store) int64 {
	t.Helper()
	worldID, err := store.CreateWorld(context.Background(), world.World{Name: "Emberfall", Description: "a cooling world"})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	return worldID
}

func seedArea(t *testing.T, store *Store, worldID int64, name string) int64 {
	t.Helper()
	areaID, err := store.CreateArea(context.Background(), world.Area{
		WorldID:     worldID,
		Name:        name,
		Description: "stone walls",
		Temperature: 14.5,
	})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	return areaID
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("", Options{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestWorldRoundTrip(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)

	got, err := store.GetWorld(context.Background(), worldID)
	if err != nil {
		t.Fatalf("get world: %v", err)
	}
	if got.Name != "Emberfall" {
		t.Fatalf("expected name Emberfall, got %q", got.Name)
	}

	worlds, err := store.ListWorlds(context.Background())
	if err != nil {
		t.Fatalf("list worlds: %v", err)
	}
	if len(worlds) != 1 {
		t.Fatalf("expected 1 world, got %d", len(worlds))
	}
}

func TestGetWorldNotFound(t *testing.T) {
	store := openTempStore(t)
	if _, err := store.GetWorld(context.Background(), 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAreaJSONColumns(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)
	targetID := seedArea(t, store, worldID, "Cellar")

	characterID := int64(3)
	areaID, err := store.CreateArea(context.Background(), world.Area{
		WorldID:     worldID,
		Name:        "Hall",
		Temperature: 18,
		Exits:       map[string]int64{"down": targetID},
		Triggers: []world.Trigger{{
			Condition: world.Condition{
				Type:        world.EventCharacterSpeech,
				Keywords:    []string{"open sesame"},
				CharacterID: &characterID,
			},
			Reactions: []world.Reaction{{Type: world.ReactionAddExit, Direction: "secret", TargetAreaID: targetID}},
			OneTime:   true,
		}},
	})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}

	got, err := store.GetArea(context.Background(), areaID)
	if err != nil {
		t.Fatalf("get area: %v", err)
	}
	if got.Exits["down"] != targetID {
		t.Fatalf("expected exit down -> %d, got %v", targetID, got.Exits)
	}
	if len(got.Triggers) != 1 {
		t.Fatalf("expected 1 trigger, got %d", len(got.Triggers))
	}
	trigger := got.Triggers[0]
	if trigger.Condition.Type != world.EventCharacterSpeech {
		t.Fatalf("trigger condition lost type: %s", trigger.Condition.Type)
	}
	if trigger.Condition.CharacterID == nil || *trigger.Condition.CharacterID != characterID {
		t.Fatalf("trigger condition lost character id: %v", trigger.Condition.CharacterID)
	}
	if !trigger.OneTime {
		t.Fatal("trigger lost one_time flag")
	}
}

func TestCharacterRoundTrip(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)
	areaID := seedArea(t, store, worldID, "Hall")

	c := world.Character{
		WorldID:       worldID,
		Name:          "Maren",
		Species:       "human",
		Gender:        "female",
		Age:           31,
		Backstory:     "a wandering cartographer",
		Likes:         []string{"maps"},
		Beliefs:       []string{"the river remembers"},
		Nutrition:     80,
		Hydration:     75,
		Tiredness:     10,
		Alertness:     90,
		Damage:        []world.Damage{{Part: "left arm", Type: "burn", Severity: 12.5}},
		CurrentAreaID: &areaID,
		Class:         world.ClassStory,
		Memory: []world.MemoryEntry{
			{Action: "arrived", Result: "saw the hall", Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
	characterID, err := store.CreateCharacter(context.Background(), c)
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	got, err := store.GetCharacter(context.Background(), characterID)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if got.Class != world.ClassStory {
		t.Fatalf("expected story class, got %s", got.Class)
	}
	if got.CurrentAreaID == nil || *got.CurrentAreaID != areaID {
		t.Fatalf("expected area %d, got %v", areaID, got.CurrentAreaID)
	}
	if len(got.Damage) != 1 || got.Damage[0].Severity != 12.5 {
		t.Fatalf("damage lost in round trip: %+v", got.Damage)
	}
	if len(got.Memory) != 1 || got.Memory[0].Action != "arrived" {
		t.Fatalf("memory lost in round trip: %+v", got.Memory)
	}
	if got.OwnerID != "" {
		t.Fatalf("expected unowned character, got %q", got.OwnerID)
	}
}

func TestListUnownedCharactersOrdering(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)

	create := func(name string, class world.Class, owner string, alertness float64) int64 {
		t.Helper()
		id, err := store.CreateCharacter(context.Background(), world.Character{
			WorldID: worldID, Name: name, Class: class, OwnerID: owner,
			Nutrition: 100, Hydration: 100, Alertness: alertness,
		})
		if err != nil {
			t.Fatalf("create character %s: %v", name, err)
		}
		return id
	}

	minorA := create("minor-a", world.ClassMinor, "", 90)
	storyB := create("story-b", world.ClassStory, "", 90)
	create("owned-c", world.ClassStory, "player-1", 90)
	minorD := create("minor-d", world.ClassMinor, "", 5)

	got, err := store.ListUnownedCharacters(context.Background(), worldID)
	if err != nil {
		t.Fatalf("list unowned: %v", err)
	}
	want := []int64{storyB, minorA, minorD}
	if len(got) != len(want) {
		t.Fatalf("expected %d characters, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}
}

func TestListAwakeCharacters(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)

	if _, err := store.CreateCharacter(context.Background(), world.Character{WorldID: worldID, Name: "awake", Alertness: 20, Class: world.ClassMinor}); err != nil {
		t.Fatalf("create character: %v", err)
	}
	if _, err := store.CreateCharacter(context.Background(), world.Character{WorldID: worldID, Name: "asleep", Alertness: 19, Class: world.ClassMinor}); err != nil {
		t.Fatalf("create character: %v", err)
	}

	got, err := store.ListAwakeCharacters(context.Background(), worldID)
	if err != nil {
		t.Fatalf("list awake: %v", err)
	}
	if len(got) != 1 || got[0].Name != "awake" {
		t.Fatalf("expected only the awake character, got %+v", got)
	}
}

func TestItemLocationRoundTrip(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)
	areaID := seedArea(t, store, worldID, "Hall")

	itemID, err := store.CreateItem(context.Background(), world.Item{
		WorldID:       worldID,
		Name:          "Torch",
		Properties:    world.Properties{"lit": false},
		CurrentAreaID: &areaID,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	characterID, err := store.CreateCharacter(context.Background(), world.Character{WorldID: worldID, Name: "Maren", Class: world.ClassMinor})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	item, err := store.GetItem(context.Background(), itemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	item.GiveTo(characterID, world.HoldRightHand)
	if err := store.UpdateItem(context.Background(), item); err != nil {
		t.Fatalf("update item: %v", err)
	}

	held, err := store.ListItemsHeldBy(context.Background(), characterID)
	if err != nil {
		t.Fatalf("list held: %v", err)
	}
	if len(held) != 1 || held[0].CurrentAreaID != nil {
		t.Fatalf("expected 1 held item with no area, got %+v", held)
	}
	if held[0].HeldLocation == nil || *held[0].HeldLocation != world.HoldRightHand {
		t.Fatalf("expected right hand location, got %v", held[0].HeldLocation)
	}
}

func TestDeleteCharacterReleasesHeldItems(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)

	characterID, err := store.CreateCharacter(context.Background(), world.Character{WorldID: worldID, Name: "Maren", Class: world.ClassMinor})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	holdLocation := world.HoldLeftHand
	itemID, err := store.CreateItem(context.Background(), world.Item{
		WorldID:           worldID,
		Name:              "Lantern",
		HeldByCharacterID: &characterID,
		HeldLocation:      &holdLocation,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := store.DeleteCharacter(context.Background(), characterID); err != nil {
		t.Fatalf("delete character: %v", err)
	}

	item, err := store.GetItem(context.Background(), itemID)
	if err != nil {
		t.Fatalf("get item after delete: %v", err)
	}
	if item.HeldByCharacterID != nil {
		t.Fatalf("expected holder cleared, got %v", item.HeldByCharacterID)
	}
}

func TestWorldCascadeDelete(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)
	areaID := seedArea(t, store, worldID, "Hall")
	characterID, err := store.CreateCharacter(context.Background(), world.Character{WorldID: worldID, Name: "Maren", Class: world.ClassMinor})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	itemID, err := store.CreateItem(context.Background(), world.Item{WorldID: worldID, Name: "Torch", CurrentAreaID: &areaID})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := store.CreateWritingStyle(context.Background(), world.WritingStyle{WorldID: worldID, Tone: "wistful"}); err != nil {
		t.Fatalf("create style: %v", err)
	}

	if err := store.DeleteWorld(context.Background(), worldID); err != nil {
		t.Fatalf("delete world: %v", err)
	}

	if _, err := store.GetArea(context.Background(), areaID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected cascaded area delete, got %v", err)
	}
	if _, err := store.GetCharacter(context.Background(), characterID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected cascaded character delete, got %v", err)
	}
	if _, err := store.GetItem(context.Background(), itemID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected cascaded item delete, got %v", err)
	}
	if _, err := store.GetWritingStyle(context.Background(), worldID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected cascaded style delete, got %v", err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := openTempStore(t)
	worldID := seedWorld(t, store)

	sentinel := errors.New("abort")
	err := store.InTx(context.Background(), func(q storage.Querier) error {
		if _, err := q.CreateCharacter(context.Background(), world.Character{WorldID: worldID, Name: "ghost", Class: world.ClassMinor}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	characters, err := store.ListUnownedCharacters(context.Background(), worldID)
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(characters) != 0 {
		t.Fatalf("expected rollback to discard insert, got %d characters", len(characters))
	}
}
