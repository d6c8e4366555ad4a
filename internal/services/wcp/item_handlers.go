package wcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	worlderr "github.com/louisbranch/loreworld/internal/errors"
	"github.com/louisbranch/loreworld/internal/world"
)

// ItemGetInput identifies an item.
type ItemGetInput struct {
	ItemID int64 `json:"item_id" jsonschema:"item identifier"`
}

// ItemGetResult carries one item row.
type ItemGetResult struct {
	Item ItemPayload `json:"item"`
}

// ItemGetTool defines the item_get tool.
func ItemGetTool() *mcp.Tool {
	return &mcp.Tool{Name: "item_get", Description: "Fetches one item by id."}
}

// ItemGetHandler executes item_get.
func ItemGetHandler(deps Deps) mcp.ToolHandlerFor[ItemGetInput, ItemGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ItemGetInput) (*mcp.CallToolResult, ItemGetResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		item, err := deps.Store.GetItem(ctx, input.ItemID)
		if err != nil {
			return nil, ItemGetResult{}, surface(ctx, orNotFound(err, "item", input.ItemID))
		}
		return nil, ItemGetResult{Item: itemPayload(item)}, nil
	}
}

// ItemCreateInput describes a new item.
type ItemCreateInput struct {
	WorldID     int64            `json:"world_id" jsonschema:"world identifier"`
	Name        string           `json:"name" jsonschema:"item name"`
	Description string           `json:"description,omitempty"`
	Properties  world.Properties `json:"properties,omitempty" jsonschema:"free-form key to value map"`
	AreaID      *int64           `json:"area_id,omitempty" jsonschema:"area to place the item in"`
}

// ItemCreateResult carries the new id.
type ItemCreateResult struct {
	ID int64 `json:"id"`
}

// ItemCreateTool defines the item_create tool.
func ItemCreateTool() *mcp.Tool {
	return &mcp.Tool{Name: "item_create", Description: "Creates an item, optionally placed in an area."}
}

// ItemCreateHandler executes item_create.
func ItemCreateHandler(deps Deps) mcp.ToolHandlerFor[ItemCreateInput, ItemCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ItemCreateInput) (*mcp.CallToolResult, ItemCreateResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if input.Name == "" {
			return nil, ItemCreateResult{}, worlderr.New(worlderr.CodeValidation, "item name is required")
		}
		if _, err := deps.Store.GetWorld(ctx, input.WorldID); err != nil {
			return nil, ItemCreateResult{}, surface(ctx, orNotFound(err, "world", input.WorldID))
		}
		if input.AreaID != nil {
			area, err := deps.Store.GetArea(ctx, *input.AreaID)
			if err != nil {
				return nil, ItemCreateResult{}, surface(ctx, orNotFound(err, "area", *input.AreaID))
			}
			if area.WorldID != input.WorldID {
				return nil, ItemCreateResult{}, worlderr.Newf(worlderr.CodeCrossWorld, "area %d is not in world %d", area.ID, input.WorldID)
			}
		}

		id, err := deps.Store.CreateItem(ctx, world.Item{
			WorldID:       input.WorldID,
			Name:          input.Name,
			Description:   input.Description,
			Properties:    input.Properties,
			CurrentAreaID: input.AreaID,
		})
		if err != nil {
			return nil, ItemCreateResult{}, surface(ctx, fmt.Errorf("create item: %w", err))
		}
		return nil, ItemCreateResult{ID: id}, nil
	}
}

// ItemPickupInput moves an item into a holding slot.
type ItemPickupInput struct {
	CharacterID  int64  `json:"character_id" jsonschema:"character identifier"`
	ItemID       int64  `json:"item_id" jsonschema:"item identifier"`
	Location     string `json:"location" jsonschema:"hold location, e.g. right hand"`
	SessionToken string `json:"session_token,omitempty" jsonschema:"session token (required on the remote transport)"`
}

// ItemPickupResult confirms the pickup.
type ItemPickupResult struct {
	ItemID       int64  `json:"item_id"`
	HeldLocation string `json:"held_location"`
}

// ItemPickupTool defines the item_pickup tool.
func ItemPickupTool() *mcp.Tool {
	return &mcp.Tool{Name: "item_pickup", Description: "Picks up an item from the character's area; fires item_picked_up."}
}

// ItemPickupHandler executes item_pickup.
func ItemPickupHandler(deps Deps) mcp.ToolHandlerFor[ItemPickupInput, ItemPickupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ItemPickupInput) (*mcp.CallToolResult, ItemPickupResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.authorize(ctx, input.SessionToken, input.CharacterID); err != nil {
			return nil, ItemPickupResult{}, err
		}
		if err := deps.Kernel.Pickup(ctx, input.CharacterID, input.ItemID, input.Location); err != nil {
			return nil, ItemPickupResult{}, surface(ctx, err)
		}
		return nil, ItemPickupResult{ItemID: input.ItemID, HeldLocation: input.Location}, nil
	}
}

// ItemDropInput returns a held item to the character's area.
type ItemDropInput struct {
	CharacterID  int64  `json:"character_id" jsonschema:"character identifier"`
	ItemID       int64  `json:"item_id" jsonschema:"item identifier"`
	SessionToken string `json:"session_token,omitempty" jsonschema:"session token (required on the remote transport)"`
}

// ItemDropResult confirms the drop.
type ItemDropResult struct {
	ItemID int64 `json:"item_id"`
}

// ItemDropTool defines the item_drop tool.
func ItemDropTool() *mcp.Tool {
	return &mcp.Tool{Name: "item_drop", Description: "Drops a held item into the character's area; fires item_dropped."}
}

// ItemDropHandler executes item_drop.
func ItemDropHandler(deps Deps) mcp.ToolHandlerFor[ItemDropInput, ItemDropResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ItemDropInput) (*mcp.CallToolResult, ItemDropResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.authorize(ctx, input.SessionToken, input.CharacterID); err != nil {
			return nil, ItemDropResult{}, err
		}
		if err := deps.Kernel.Drop(ctx, input.CharacterID, input.ItemID); err != nil {
			return nil, ItemDropResult{}, surface(ctx, err)
		}
		return nil, ItemDropResult{ItemID: input.ItemID}, nil
	}
}

// ItemDeleteInput identifies the item to delete.
type ItemDeleteInput struct {
	ItemID int64 `json:"item_id" jsonschema:"item identifier"`
}

// ItemDeleteResult confirms the delete.
type ItemDeleteResult struct {
	Deleted bool `json:"deleted"`
}

// ItemDeleteTool defines the item_delete tool.
func ItemDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "item_delete", Description: "Deletes an item wherever it is."}
}

// ItemDeleteHandler executes item_delete.
func ItemDeleteHandler(deps Deps) mcp.ToolHandlerFor[ItemDeleteInput, ItemDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ItemDeleteInput) (*mcp.CallToolResult, ItemDeleteResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if err := deps.Store.DeleteItem(ctx, input.ItemID); err != nil {
			return nil, ItemDeleteResult{}, surface(ctx, orNotFound(err, "item", input.ItemID))
		}
		return nil, ItemDeleteResult{Deleted: true}, nil
	}
}
