package wcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/loreworld/internal/bus"
	"github.com/louisbranch/loreworld/internal/kernel"
	"github.com/louisbranch/loreworld/internal/session"
	"github.com/louisbranch/loreworld/internal/storage/sqlite"
	"github.com/louisbranch/loreworld/internal/trigger"
	"github.com/louisbranch/loreworld/internal/world"
)

type suite struct {
	store    *sqlite.Store
	sessions *session.Manager
	client   *mcp.ClientSession

	worldID int64
}

func newSuite(t *testing.T, requireAuth bool) *suite {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "world.db"), sqlite.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	memoryBus := bus.NewMemoryBus()
	memoryBus.Subscribe(trigger.New(store).HandleEvent)
	k := kernel.New(store, memoryBus)
	sessions := session.NewManager(store)

	server := NewServer(Deps{
		Store:       store,
		Kernel:      k,
		Sessions:    sessions,
		RequireAuth: requireAuth,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("connect server: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { _ = clientSession.Close() })

	worldID, err := store.CreateWorld(context.Background(), world.World{Name: "Emberfall"})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}

	return &suite{store: store, sessions: sessions, client: clientSession, worldID: worldID}
}

func (s *suite) call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.client.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if result == nil {
		t.Fatalf("call %s returned nil", name)
	}
	return result
}

func (s *suite) callOK(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result := s.call(t, name, args)
	if result.IsError {
		t.Fatalf("%s returned error content: %+v", name, result.Content)
	}
	return result
}

func decodeStructuredContent[T any](t *testing.T, content any) T {
	t.Helper()
	raw, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var decoded T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
	return decoded
}

func errorText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestToolCatalogue(t *testing.T) {
	s := newSuite(t, false)
	ctx := context.Background()

	listed, err := s.client.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}

	names := map[string]bool{}
	for _, tool := range listed.Tools {
		names[tool.Name] = true
	}
	for _, required := range []string{
		"world_list", "world_get", "world_create", "world_get_writing_style",
		"area_list", "area_get", "area_get_characters", "area_get_items", "area_create",
		"character_get", "character_list_awake", "character_move", "character_speak",
		"character_update_state", "character_get_inventory", "character_add_memory",
		"character_claim", "character_release",
		"item_get", "item_create", "item_pickup", "item_drop",
	} {
		if !names[required] {
			t.Fatalf("tool %s missing from catalogue", required)
		}
	}
}

func TestPickupThenDropScenario(t *testing.T) {
	s := newSuite(t, false)
	ctx := context.Background()

	areaID, err := s.store.CreateArea(ctx, world.Area{WorldID: s.worldID, Name: "Hall"})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	characterID, err := s.store.CreateCharacter(ctx, world.Character{
		WorldID: s.worldID, Name: "Maren", Class: world.ClassMinor, CurrentAreaID: &areaID,
		Nutrition: 100, Hydration: 100, Alertness: 100,
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	itemID, err := s.store.CreateItem(ctx, world.Item{WorldID: s.worldID, Name: "Torch", CurrentAreaID: &areaID})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	s.callOK(t, "item_pickup", map[string]any{
		"character_id": characterID, "item_id": itemID, "location": "right hand",
	})

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.HeldByCharacterID == nil || *item.HeldByCharacterID != characterID {
		t.Fatalf("expected item held by %d, got %v", characterID, item.HeldByCharacterID)
	}
	if item.CurrentAreaID != nil {
		t.Fatalf("expected no area while held, got %v", item.CurrentAreaID)
	}

	character, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	last := character.Memory[len(character.Memory)-1]
	if last.Action != "picked up Torch" {
		t.Fatalf("expected pickup memory, got %q", last.Action)
	}

	s.callOK(t, "item_drop", map[string]any{"character_id": characterID, "item_id": itemID})

	item, err = s.store.GetItem(ctx, itemID)
	if err != nil {
		t.Fatalf("get item after drop: %v", err)
	}
	if item.CurrentAreaID == nil || *item.CurrentAreaID != areaID {
		t.Fatalf("expected item back in area, got %v", item.CurrentAreaID)
	}
	if item.HeldByCharacterID != nil || item.HeldLocation != nil {
		t.Fatalf("expected hold fields cleared, got %+v", item)
	}
}

func TestSecretDoorScenario(t *testing.T) {
	s := newSuite(t, false)
	ctx := context.Background()

	areaID, err := s.store.CreateArea(ctx, world.Area{
		WorldID: s.worldID, Name: "Vault", Description: "Bare stone.",
		Triggers: []world.Trigger{{
			Condition: world.Condition{Type: world.EventCharacterSpeech, Keywords: []string{"open sesame"}},
			Reactions: []world.Reaction{
				{Type: world.ReactionAddExit, Direction: "secret", TargetAreaID: 42},
				{Type: world.ReactionModifyDescription, AppendDescription: "\nA secret passage opens."},
			},
			OneTime: true,
		}},
	})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	characterID, err := s.store.CreateCharacter(ctx, world.Character{
		WorldID: s.worldID, Name: "Maren", Class: world.ClassMinor, CurrentAreaID: &areaID,
		Nutrition: 100, Hydration: 100, Alertness: 100,
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	s.callOK(t, "character_speak", map[string]any{
		"character_id": characterID, "text": "Open Sesame!", "action_type": "speech",
	})

	area, err := s.store.GetArea(ctx, areaID)
	if err != nil {
		t.Fatalf("get area: %v", err)
	}
	if area.Exits["secret"] != 42 {
		t.Fatalf("expected secret exit, got %v", area.Exits)
	}
	if !strings.HasSuffix(area.Description, "A secret passage opens.") {
		t.Fatalf("expected appended description, got %q", area.Description)
	}
	if len(area.Triggers) != 0 {
		t.Fatalf("expected one-time trigger removed, got %d", len(area.Triggers))
	}
}

func TestCrossAreaMoveScenario(t *testing.T) {
	s := newSuite(t, false)
	ctx := context.Background()

	firstID, err := s.store.CreateArea(ctx, world.Area{WorldID: s.worldID, Name: "First"})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	secondID, err := s.store.CreateArea(ctx, world.Area{
		WorldID: s.worldID, Name: "Second",
		Triggers: []world.Trigger{{
			Condition: world.Condition{Type: world.EventCharacterEnters},
			Reactions: []world.Reaction{{Type: world.ReactionModifyDescription, AppendDescription: " Someone arrived."}},
			OneTime:   true,
		}},
	})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	characterID, err := s.store.CreateCharacter(ctx, world.Character{
		WorldID: s.worldID, Name: "Maren", Class: world.ClassMinor, CurrentAreaID: &firstID,
		Nutrition: 100, Hydration: 100, Alertness: 100,
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	result := s.callOK(t, "character_move", map[string]any{
		"character_id": characterID, "area_id": secondID,
	})
	moved := decodeStructuredContent[CharacterMoveResult](t, result.StructuredContent)
	if moved.AreaID != secondID {
		t.Fatalf("expected move confirmation to area %d, got %+v", secondID, moved)
	}

	character, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if character.CurrentAreaID == nil || *character.CurrentAreaID != secondID {
		t.Fatalf("expected character in area %d, got %v", secondID, character.CurrentAreaID)
	}

	// character_enters fired on the destination.
	area, err := s.store.GetArea(ctx, secondID)
	if err != nil {
		t.Fatalf("get area: %v", err)
	}
	if !strings.HasSuffix(area.Description, "Someone arrived.") {
		t.Fatalf("expected enter trigger to fire, got %q", area.Description)
	}
}

func TestOwnershipScenario(t *testing.T) {
	s := newSuite(t, false)
	ctx := context.Background()

	characterID, err := s.store.CreateCharacter(ctx, world.Character{
		WorldID: s.worldID, Name: "Maren", Class: world.ClassMinor,
		Nutrition: 100, Hydration: 100, Alertness: 100,
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	first := s.callOK(t, "character_claim", map[string]any{"player_id": "p1", "character_id": characterID})
	firstClaim := decodeStructuredContent[CharacterClaimResult](t, first.StructuredContent)
	if firstClaim.Token == "" {
		t.Fatal("expected a token for p1")
	}

	conflict := s.call(t, "character_claim", map[string]any{"player_id": "p2", "character_id": characterID})
	if !conflict.IsError {
		t.Fatal("expected ALREADY_OWNED error for p2")
	}
	if !strings.Contains(errorText(conflict), "ALREADY_OWNED") {
		t.Fatalf("expected ALREADY_OWNED in error, got %q", errorText(conflict))
	}

	s.callOK(t, "character_release", map[string]any{"character_id": characterID})

	second := s.callOK(t, "character_claim", map[string]any{"player_id": "p2", "character_id": characterID})
	secondClaim := decodeStructuredContent[CharacterClaimResult](t, second.StructuredContent)
	if secondClaim.Token == "" || secondClaim.Token == firstClaim.Token {
		t.Fatalf("expected a fresh token for p2, got %q", secondClaim.Token)
	}
}

func TestRemoteAuthorizationPolicy(t *testing.T) {
	s := newSuite(t, true)
	ctx := context.Background()

	areaID, err := s.store.CreateArea(ctx, world.Area{WorldID: s.worldID, Name: "Hall"})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	characterID, err := s.store.CreateCharacter(ctx, world.Character{
		WorldID: s.worldID, Name: "Maren", Class: world.ClassMinor, CurrentAreaID: &areaID,
		Nutrition: 100, Hydration: 100, Alertness: 100,
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	// Without a token the mutating call is refused.
	refused := s.call(t, "character_speak", map[string]any{
		"character_id": characterID, "text": "hi", "action_type": "speech",
	})
	if !refused.IsError {
		t.Fatal("expected unauthorized call to fail")
	}

	// World and area metadata stay readable without a session.
	s.callOK(t, "area_get", map[string]any{"area_id": areaID})

	claimed := s.callOK(t, "character_claim", map[string]any{"player_id": "p1", "character_id": characterID})
	token := decodeStructuredContent[CharacterClaimResult](t, claimed.StructuredContent).Token

	s.callOK(t, "character_speak", map[string]any{
		"character_id": characterID, "text": "hi", "action_type": "speech", "session_token": token,
	})

	// A token for one character does not control another.
	otherID, err := s.store.CreateCharacter(ctx, world.Character{
		WorldID: s.worldID, Name: "Bran", Class: world.ClassMinor,
		Nutrition: 100, Hydration: 100, Alertness: 100,
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	denied := s.call(t, "character_speak", map[string]any{
		"character_id": otherID, "text": "hi", "action_type": "speech", "session_token": token,
	})
	if !denied.IsError {
		t.Fatal("expected cross-character call to fail")
	}
}

func TestUpdateStateTool(t *testing.T) {
	s := newSuite(t, false)
	ctx := context.Background()

	characterID, err := s.store.CreateCharacter(ctx, world.Character{
		WorldID: s.worldID, Name: "Maren", Class: world.ClassMinor,
		Nutrition: 100, Hydration: 100, Alertness: 80,
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	result := s.callOK(t, "character_update_state", map[string]any{
		"character_id": characterID, "tiredness": 150,
	})
	updated := decodeStructuredContent[CharacterUpdateStateResult](t, result.StructuredContent)
	if updated.Character.Tiredness != 100 || updated.Character.Alertness != 0 {
		t.Fatalf("expected clamp and forced sleep, got %+v", updated.Character)
	}
}

func TestWritingStyleNotFound(t *testing.T) {
	s := newSuite(t, false)

	missing := s.call(t, "world_get_writing_style", map[string]any{"world_id": s.worldID})
	if !missing.IsError {
		t.Fatal("expected NOT_FOUND for missing style")
	}
	if !strings.Contains(errorText(missing), "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND in error, got %q", errorText(missing))
	}
}
