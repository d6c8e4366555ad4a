package wcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	worlderr "github.com/louisbranch/loreworld/internal/errors"
	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

// orNotFound converts the storage sentinel into the typed RPC error.
func orNotFound(err error, what string, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return worlderr.Newf(worlderr.CodeNotFound, "%s %d does not exist", what, id)
	}
	return err
}

// WorldListInput has no parameters.
type WorldListInput struct{}

// WorldListResult lists every world.
type WorldListResult struct {
	Worlds []WorldPayload `json:"worlds"`
}

// WorldListTool defines the world_list tool.
func WorldListTool() *mcp.Tool {
	return &mcp.Tool{Name: "world_list", Description: "Lists all worlds."}
}

// WorldListHandler executes world_list.
func WorldListHandler(deps Deps) mcp.ToolHandlerFor[WorldListInput, WorldListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ WorldListInput) (*mcp.CallToolResult, WorldListResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		worlds, err := deps.Store.ListWorlds(ctx)
		if err != nil {
			return nil, WorldListResult{}, surface(ctx, err)
		}
		result := WorldListResult{Worlds: make([]WorldPayload, 0, len(worlds))}
		for _, w := range worlds {
			result.Worlds = append(result.Worlds, worldPayload(w))
		}
		return nil, result, nil
	}
}

// WorldGetInput identifies a world.
type WorldGetInput struct {
	WorldID int64 `json:"world_id" jsonschema:"world identifier"`
}

// WorldGetResult carries one world row.
type WorldGetResult struct {
	World WorldPayload `json:"world"`
}

// WorldGetTool defines the world_get tool.
func WorldGetTool() *mcp.Tool {
	return &mcp.Tool{Name: "world_get", Description: "Fetches one world by id."}
}

// WorldGetHandler executes world_get.
func WorldGetHandler(deps Deps) mcp.ToolHandlerFor[WorldGetInput, WorldGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldGetInput) (*mcp.CallToolResult, WorldGetResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		w, err := deps.Store.GetWorld(ctx, input.WorldID)
		if err != nil {
			return nil, WorldGetResult{}, surface(ctx, orNotFound(err, "world", input.WorldID))
		}
		return nil, WorldGetResult{World: worldPayload(w)}, nil
	}
}

// WorldCreateInput names a new world.
type WorldCreateInput struct {
	Name        string `json:"name" jsonschema:"world name"`
	Description string `json:"description,omitempty" jsonschema:"world description"`
}

// WorldCreateResult carries the new id.
type WorldCreateResult struct {
	ID int64 `json:"id"`
}

// WorldCreateTool defines the world_create tool.
func WorldCreateTool() *mcp.Tool {
	return &mcp.Tool{Name: "world_create", Description: "Creates a world."}
}

// WorldCreateHandler executes world_create.
func WorldCreateHandler(deps Deps) mcp.ToolHandlerFor[WorldCreateInput, WorldCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldCreateInput) (*mcp.CallToolResult, WorldCreateResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		normalized, err := world.NormalizeWorld(world.World{Name: input.Name, Description: input.Description})
		if err != nil {
			return nil, WorldCreateResult{}, worlderr.Newf(worlderr.CodeValidation, "%v", err)
		}
		id, err := deps.Store.CreateWorld(ctx, normalized)
		if err != nil {
			return nil, WorldCreateResult{}, surface(ctx, fmt.Errorf("create world: %w", err))
		}
		return nil, WorldCreateResult{ID: id}, nil
	}
}

// WorldDeleteInput identifies the world to delete.
type WorldDeleteInput struct {
	WorldID int64 `json:"world_id" jsonschema:"world identifier"`
}

// WorldDeleteResult confirms the delete.
type WorldDeleteResult struct {
	Deleted bool `json:"deleted"`
}

// WorldDeleteTool defines the world_delete tool.
func WorldDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "world_delete", Description: "Deletes a world and everything it owns."}
}

// WorldDeleteHandler executes world_delete.
func WorldDeleteHandler(deps Deps) mcp.ToolHandlerFor[WorldDeleteInput, WorldDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldDeleteInput) (*mcp.CallToolResult, WorldDeleteResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.Store.DeleteWorld(ctx, input.WorldID); err != nil {
			return nil, WorldDeleteResult{}, surface(ctx, orNotFound(err, "world", input.WorldID))
		}
		return nil, WorldDeleteResult{Deleted: true}, nil
	}
}

// WorldGetWritingStyleInput identifies a world.
type WorldGetWritingStyleInput struct {
	WorldID int64 `json:"world_id" jsonschema:"world identifier"`
}

// WorldGetWritingStyleResult carries the style row.
type WorldGetWritingStyleResult struct {
	Style StylePayload `json:"style"`
}

// WorldGetWritingStyleTool defines the world_get_writing_style tool.
func WorldGetWritingStyleTool() *mcp.Tool {
	return &mcp.Tool{Name: "world_get_writing_style", Description: "Fetches the world's prose style configuration."}
}

// WorldGetWritingStyleHandler executes world_get_writing_style.
func WorldGetWritingStyleHandler(deps Deps) mcp.ToolHandlerFor[WorldGetWritingStyleInput, WorldGetWritingStyleResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldGetWritingStyleInput) (*mcp.CallToolResult, WorldGetWritingStyleResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		style, err := deps.Store.GetWritingStyle(ctx, input.WorldID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, WorldGetWritingStyleResult{}, worlderr.Newf(worlderr.CodeNotFound, "world %d has no writing style", input.WorldID)
			}
			return nil, WorldGetWritingStyleResult{}, surface(ctx, err)
		}
		return nil, WorldGetWritingStyleResult{Style: stylePayload(style)}, nil
	}
}
