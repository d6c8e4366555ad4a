package wcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	worlderr "github.com/louisbranch/loreworld/internal/errors"
	"github.com/louisbranch/loreworld/internal/kernel"
	"github.com/louisbranch/loreworld/internal/session"
	"github.com/louisbranch/loreworld/internal/world"
)

// CharacterGetInput identifies a character.
type CharacterGetInput struct {
	CharacterID int64 `json:"character_id" jsonschema:"character identifier"`
}

// CharacterGetResult carries the character with its inventory.
type CharacterGetResult struct {
	Character CharacterPayload `json:"character"`
	Inventory []ItemPayload    `json:"inventory,omitempty"`
}

// CharacterGetTool defines the character_get tool.
func CharacterGetTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_get", Description: "Fetches a character with the items it holds."}
}

// CharacterGetHandler executes character_get.
func CharacterGetHandler(deps Deps) mcp.ToolHandlerFor[CharacterGetInput, CharacterGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterGetInput) (*mcp.CallToolResult, CharacterGetResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		character, err := deps.Store.GetCharacter(ctx, input.CharacterID)
		if err != nil {
			return nil, CharacterGetResult{}, surface(ctx, orNotFound(err, "character", input.CharacterID))
		}
		held, err := deps.Store.ListItemsHeldBy(ctx, character.ID)
		if err != nil {
			return nil, CharacterGetResult{}, surface(ctx, err)
		}
		return nil, CharacterGetResult{
			Character: characterPayload(character),
			Inventory: itemPayloads(held),
		}, nil
	}
}

// CharacterListAwakeInput identifies a world.
type CharacterListAwakeInput struct {
	WorldID int64 `json:"world_id" jsonschema:"world identifier"`
}

// CharacterListAwakeResult lists awake characters.
type CharacterListAwakeResult struct {
	Characters []CharacterPayload `json:"characters"`
}

// CharacterListAwakeTool defines the character_list_awake tool.
func CharacterListAwakeTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_list_awake", Description: "Lists a world's awake characters (alertness at least 20)."}
}

// CharacterListAwakeHandler executes character_list_awake.
func CharacterListAwakeHandler(deps Deps) mcp.ToolHandlerFor[CharacterListAwakeInput, CharacterListAwakeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterListAwakeInput) (*mcp.CallToolResult, CharacterListAwakeResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		characters, err := deps.Store.ListAwakeCharacters(ctx, input.WorldID)
		if err != nil {
			return nil, CharacterListAwakeResult{}, surface(ctx, err)
		}
		return nil, CharacterListAwakeResult{Characters: characterPayloads(characters)}, nil
	}
}

// CharacterCreateInput describes a new character.
type CharacterCreateInput struct {
	WorldID          int64    `json:"world_id" jsonschema:"world identifier"`
	Name             string   `json:"name" jsonschema:"character name"`
	Species          string   `json:"species,omitempty"`
	Gender           string   `json:"gender,omitempty"`
	Age              int      `json:"age,omitempty"`
	Description      string   `json:"description,omitempty"`
	Backstory        string   `json:"backstory,omitempty"`
	Class            string   `json:"character_class,omitempty" jsonschema:"story or minor (default minor)"`
	AreaID           *int64   `json:"area_id,omitempty" jsonschema:"starting area"`
	Likes            []string `json:"likes,omitempty"`
	Dislikes         []string `json:"dislikes,omitempty"`
	Interests        []string `json:"interests,omitempty"`
	Beliefs          []string `json:"beliefs,omitempty"`
	InternalConflict string   `json:"internal_conflict,omitempty"`
}

// CharacterCreateResult carries the new id.
type CharacterCreateResult struct {
	ID int64 `json:"id"`
}

// CharacterCreateTool defines the character_create tool.
func CharacterCreateTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_create", Description: "Creates a character; it starts rested and fed."}
}

// CharacterCreateHandler executes character_create.
func CharacterCreateHandler(deps Deps) mcp.ToolHandlerFor[CharacterCreateInput, CharacterCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterCreateInput) (*mcp.CallToolResult, CharacterCreateResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if input.Name == "" {
			return nil, CharacterCreateResult{}, worlderr.New(worlderr.CodeValidation, "character name is required")
		}
		class := world.Class(input.Class)
		if input.Class == "" {
			class = world.ClassMinor
		}
		if !class.Valid() {
			return nil, CharacterCreateResult{}, worlderr.Newf(worlderr.CodeValidation, "character class %q must be story or minor", input.Class)
		}
		if _, err := deps.Store.GetWorld(ctx, input.WorldID); err != nil {
			return nil, CharacterCreateResult{}, surface(ctx, orNotFound(err, "world", input.WorldID))
		}
		if input.AreaID != nil {
			area, err := deps.Store.GetArea(ctx, *input.AreaID)
			if err != nil {
				return nil, CharacterCreateResult{}, surface(ctx, orNotFound(err, "area", *input.AreaID))
			}
			if area.WorldID != input.WorldID {
				return nil, CharacterCreateResult{}, worlderr.Newf(worlderr.CodeCrossWorld, "area %d is not in world %d", area.ID, input.WorldID)
			}
		}

		id, err := deps.Store.CreateCharacter(ctx, world.Character{
			WorldID:          input.WorldID,
			Name:             input.Name,
			Species:          input.Species,
			Gender:           input.Gender,
			Age:              input.Age,
			Description:      input.Description,
			Backstory:        input.Backstory,
			Likes:            input.Likes,
			Dislikes:         input.Dislikes,
			Interests:        input.Interests,
			Beliefs:          input.Beliefs,
			InternalConflict: input.InternalConflict,
			Nutrition:        100,
			Hydration:        100,
			Tiredness:        0,
			Alertness:        100,
			CurrentAreaID:    input.AreaID,
			Class:            class,
		})
		if err != nil {
			return nil, CharacterCreateResult{}, surface(ctx, fmt.Errorf("create character: %w", err))
		}
		return nil, CharacterCreateResult{ID: id}, nil
	}
}

// CharacterDeleteInput identifies the character to delete.
type CharacterDeleteInput struct {
	CharacterID int64 `json:"character_id" jsonschema:"character identifier"`
}

// CharacterDeleteResult confirms the delete.
type CharacterDeleteResult struct {
	Deleted bool `json:"deleted"`
}

// CharacterDeleteTool defines the character_delete tool.
func CharacterDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_delete", Description: "Deletes a character, releasing its sessions; held items drop their holder."}
}

// CharacterDeleteHandler executes character_delete.
func CharacterDeleteHandler(deps Deps) mcp.ToolHandlerFor[CharacterDeleteInput, CharacterDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterDeleteInput) (*mcp.CallToolResult, CharacterDeleteResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.Store.DeleteCharacter(ctx, input.CharacterID); err != nil {
			return nil, CharacterDeleteResult{}, surface(ctx, orNotFound(err, "character", input.CharacterID))
		}
		if deps.Sessions != nil {
			if err := deps.Sessions.Release(ctx, input.CharacterID); err != nil {
				return nil, CharacterDeleteResult{}, surface(ctx, err)
			}
		}
		return nil, CharacterDeleteResult{Deleted: true}, nil
	}
}

// CharacterMoveInput relocates a character.
type CharacterMoveInput struct {
	CharacterID  int64  `json:"character_id" jsonschema:"character identifier"`
	AreaID       int64  `json:"area_id" jsonschema:"target area identifier"`
	SessionToken string `json:"session_token,omitempty" jsonschema:"session token (required on the remote transport)"`
}

// CharacterMoveResult confirms the move.
type CharacterMoveResult struct {
	CharacterID int64 `json:"character_id"`
	AreaID      int64 `json:"area_id"`
}

// CharacterMoveTool defines the character_move tool.
func CharacterMoveTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_move", Description: "Moves a character to an area; exits are not consulted, so narrator teleports are legal. Fires character_enters."}
}

// CharacterMoveHandler executes character_move.
func CharacterMoveHandler(deps Deps) mcp.ToolHandlerFor[CharacterMoveInput, CharacterMoveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterMoveInput) (*mcp.CallToolResult, CharacterMoveResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.authorize(ctx, input.SessionToken, input.CharacterID); err != nil {
			return nil, CharacterMoveResult{}, err
		}
		if err := deps.Kernel.MoveCharacter(ctx, input.CharacterID, input.AreaID); err != nil {
			return nil, CharacterMoveResult{}, surface(ctx, err)
		}
		return nil, CharacterMoveResult{CharacterID: input.CharacterID, AreaID: input.AreaID}, nil
	}
}

// CharacterSpeakInput records a communication.
type CharacterSpeakInput struct {
	CharacterID  int64  `json:"character_id" jsonschema:"character identifier"`
	Text         string `json:"text" jsonschema:"what is communicated"`
	ActionType   string `json:"action_type" jsonschema:"speech, action, or thought"`
	SessionToken string `json:"session_token,omitempty" jsonschema:"session token (required on the remote transport)"`
}

// CharacterSpeakResult confirms the communication.
type CharacterSpeakResult struct {
	CharacterID int64 `json:"character_id"`
}

// CharacterSpeakTool defines the character_speak tool.
func CharacterSpeakTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_speak", Description: "Records speech, action, or thought; audible speech fires character_speech."}
}

// CharacterSpeakHandler executes character_speak.
func CharacterSpeakHandler(deps Deps) mcp.ToolHandlerFor[CharacterSpeakInput, CharacterSpeakResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterSpeakInput) (*mcp.CallToolResult, CharacterSpeakResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.authorize(ctx, input.SessionToken, input.CharacterID); err != nil {
			return nil, CharacterSpeakResult{}, err
		}
		if err := deps.Kernel.Speak(ctx, input.CharacterID, input.Text, kernel.SpeakKind(input.ActionType)); err != nil {
			return nil, CharacterSpeakResult{}, surface(ctx, err)
		}
		return nil, CharacterSpeakResult{CharacterID: input.CharacterID}, nil
	}
}

// CharacterUpdateStateInput is a partial physiology update.
type CharacterUpdateStateInput struct {
	CharacterID  int64          `json:"character_id" jsonschema:"character identifier"`
	Nutrition    *float64       `json:"nutrition,omitempty"`
	Hydration    *float64       `json:"hydration,omitempty"`
	Tiredness    *float64       `json:"tiredness,omitempty"`
	Alertness    *float64       `json:"alertness,omitempty"`
	Damage       []world.Damage `json:"damage,omitempty"`
	SessionToken string         `json:"session_token,omitempty" jsonschema:"session token (required on the remote transport)"`
}

// CharacterUpdateStateResult carries the updated character.
type CharacterUpdateStateResult struct {
	Character CharacterPayload `json:"character"`
}

// CharacterUpdateStateTool defines the character_update_state tool.
func CharacterUpdateStateTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_update_state", Description: "Applies a partial physiology update; percentages clamp and tiredness 100 forces sleep."}
}

// CharacterUpdateStateHandler executes character_update_state.
func CharacterUpdateStateHandler(deps Deps) mcp.ToolHandlerFor[CharacterUpdateStateInput, CharacterUpdateStateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterUpdateStateInput) (*mcp.CallToolResult, CharacterUpdateStateResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.authorize(ctx, input.SessionToken, input.CharacterID); err != nil {
			return nil, CharacterUpdateStateResult{}, err
		}
		patch := world.StatePatch{
			Nutrition: input.Nutrition,
			Hydration: input.Hydration,
			Tiredness: input.Tiredness,
			Alertness: input.Alertness,
		}
		if input.Damage != nil {
			patch.Damage = &input.Damage
		}
		updated, err := deps.Kernel.UpdateState(ctx, input.CharacterID, patch)
		if err != nil {
			return nil, CharacterUpdateStateResult{}, surface(ctx, err)
		}
		return nil, CharacterUpdateStateResult{Character: characterPayload(updated)}, nil
	}
}

// CharacterGetInventoryTool defines the character_get_inventory tool.
func CharacterGetInventoryTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_get_inventory", Description: "Lists the items a character holds."}
}

// CharacterGetInventoryResult lists held items.
type CharacterGetInventoryResult struct {
	Items []ItemPayload `json:"items"`
}

// CharacterGetInventoryHandler executes character_get_inventory.
func CharacterGetInventoryHandler(deps Deps) mcp.ToolHandlerFor[CharacterGetInput, CharacterGetInventoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterGetInput) (*mcp.CallToolResult, CharacterGetInventoryResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if _, err := deps.Store.GetCharacter(ctx, input.CharacterID); err != nil {
			return nil, CharacterGetInventoryResult{}, surface(ctx, orNotFound(err, "character", input.CharacterID))
		}
		held, err := deps.Store.ListItemsHeldBy(ctx, input.CharacterID)
		if err != nil {
			return nil, CharacterGetInventoryResult{}, surface(ctx, err)
		}
		return nil, CharacterGetInventoryResult{Items: itemPayloads(held)}, nil
	}
}

// CharacterAddMemoryInput appends one memory entry.
type CharacterAddMemoryInput struct {
	CharacterID  int64  `json:"character_id" jsonschema:"character identifier"`
	Action       string `json:"action" jsonschema:"what happened"`
	Result       string `json:"result" jsonschema:"how it turned out"`
	SessionToken string `json:"session_token,omitempty" jsonschema:"session token (required on the remote transport)"`
}

// CharacterAddMemoryResult confirms the append.
type CharacterAddMemoryResult struct {
	CharacterID int64 `json:"character_id"`
}

// CharacterAddMemoryTool defines the character_add_memory tool.
func CharacterAddMemoryTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_add_memory", Description: "Appends a memory entry, trimming to the class cap."}
}

// CharacterAddMemoryHandler executes character_add_memory.
func CharacterAddMemoryHandler(deps Deps) mcp.ToolHandlerFor[CharacterAddMemoryInput, CharacterAddMemoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterAddMemoryInput) (*mcp.CallToolResult, CharacterAddMemoryResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.authorize(ctx, input.SessionToken, input.CharacterID); err != nil {
			return nil, CharacterAddMemoryResult{}, err
		}
		if err := deps.Kernel.AppendMemory(ctx, input.CharacterID, input.Action, input.Result); err != nil {
			return nil, CharacterAddMemoryResult{}, surface(ctx, err)
		}
		return nil, CharacterAddMemoryResult{CharacterID: input.CharacterID}, nil
	}
}

// CharacterClaimInput claims a character for a player.
type CharacterClaimInput struct {
	PlayerID    string `json:"player_id" jsonschema:"opaque player identifier"`
	CharacterID int64  `json:"character_id" jsonschema:"character identifier"`
}

// CharacterClaimResult carries the session token.
type CharacterClaimResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// CharacterClaimTool defines the character_claim tool.
func CharacterClaimTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_claim", Description: "Claims a character for a player and returns a session token; idempotent for the same player."}
}

// CharacterClaimHandler executes character_claim.
func CharacterClaimHandler(deps Deps) mcp.ToolHandlerFor[CharacterClaimInput, CharacterClaimResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterClaimInput) (*mcp.CallToolResult, CharacterClaimResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if deps.Sessions == nil {
			return nil, CharacterClaimResult{}, worlderr.New(worlderr.CodeValidation, "session manager is not configured")
		}
		claimed, err := deps.Sessions.Claim(ctx, input.PlayerID, input.CharacterID)
		if err != nil {
			return nil, CharacterClaimResult{}, surface(ctx, err)
		}
		return nil, CharacterClaimResult{
			Token:     claimed.Token,
			ExpiresAt: claimed.CreatedAt.Add(session.Lifetime).UTC().Format(timestampFormat),
		}, nil
	}
}

// CharacterReleaseInput releases a character.
type CharacterReleaseInput struct {
	CharacterID  int64  `json:"character_id" jsonschema:"character identifier"`
	SessionToken string `json:"session_token,omitempty" jsonschema:"session token (required on the remote transport)"`
}

// CharacterReleaseResult confirms the release.
type CharacterReleaseResult struct {
	Released bool `json:"released"`
}

// CharacterReleaseTool defines the character_release tool.
func CharacterReleaseTool() *mcp.Tool {
	return &mcp.Tool{Name: "character_release", Description: "Clears the character's owner and removes its sessions."}
}

// CharacterReleaseHandler executes character_release.
func CharacterReleaseHandler(deps Deps) mcp.ToolHandlerFor[CharacterReleaseInput, CharacterReleaseResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterReleaseInput) (*mcp.CallToolResult, CharacterReleaseResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if deps.Sessions == nil {
			return nil, CharacterReleaseResult{}, worlderr.New(worlderr.CodeValidation, "session manager is not configured")
		}
		if err := deps.authorize(ctx, input.SessionToken, input.CharacterID); err != nil {
			return nil, CharacterReleaseResult{}, err
		}
		if err := deps.Sessions.Release(ctx, input.CharacterID); err != nil {
			return nil, CharacterReleaseResult{}, surface(ctx, err)
		}
		return nil, CharacterReleaseResult{Released: true}, nil
	}
}
