package wcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	worlderr "github.com/louisbranch/loreworld/internal/errors"
	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

// AreaListInput identifies a world.
type AreaListInput struct {
	WorldID int64 `json:"world_id" jsonschema:"world identifier"`
}

// AreaListResult lists a world's areas.
type AreaListResult struct {
	Areas []AreaPayload `json:"areas"`
}

// AreaListTool defines the area_list tool.
func AreaListTool() *mcp.Tool {
	return &mcp.Tool{Name: "area_list", Description: "Lists every area in a world."}
}

// AreaListHandler executes area_list.
func AreaListHandler(deps Deps) mcp.ToolHandlerFor[AreaListInput, AreaListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AreaListInput) (*mcp.CallToolResult, AreaListResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		areas, err := deps.Store.ListAreas(ctx, input.WorldID)
		if err != nil {
			return nil, AreaListResult{}, surface(ctx, err)
		}
		result := AreaListResult{Areas: make([]AreaPayload, 0, len(areas))}
		for _, a := range areas {
			result.Areas = append(result.Areas, areaPayload(a))
		}
		return nil, result, nil
	}
}

// AreaGetInput identifies an area.
type AreaGetInput struct {
	AreaID int64 `json:"area_id" jsonschema:"area identifier"`
}

// AreaGetResult carries the area with its occupants and contents.
type AreaGetResult struct {
	Area       AreaPayload        `json:"area"`
	Characters []CharacterPayload `json:"characters,omitempty"`
	Items      []ItemPayload      `json:"items,omitempty"`
}

// AreaGetTool defines the area_get tool.
func AreaGetTool() *mcp.Tool {
	return &mcp.Tool{Name: "area_get", Description: "Fetches an area with the characters and items in it."}
}

// AreaGetHandler executes area_get.
func AreaGetHandler(deps Deps) mcp.ToolHandlerFor[AreaGetInput, AreaGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AreaGetInput) (*mcp.CallToolResult, AreaGetResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		area, err := deps.Store.GetArea(ctx, input.AreaID)
		if err != nil {
			return nil, AreaGetResult{}, surface(ctx, orNotFound(err, "area", input.AreaID))
		}
		characters, err := deps.Store.ListCharactersInArea(ctx, area.ID)
		if err != nil {
			return nil, AreaGetResult{}, surface(ctx, err)
		}
		items, err := deps.Store.ListItemsInArea(ctx, area.ID)
		if err != nil {
			return nil, AreaGetResult{}, surface(ctx, err)
		}
		return nil, AreaGetResult{
			Area:       areaPayload(area),
			Characters: characterPayloads(characters),
			Items:      itemPayloads(items),
		}, nil
	}
}

// AreaGetCharactersTool defines the area_get_characters tool.
func AreaGetCharactersTool() *mcp.Tool {
	return &mcp.Tool{Name: "area_get_characters", Description: "Lists the characters in an area."}
}

// AreaGetCharactersResult lists an area's characters.
type AreaGetCharactersResult struct {
	Characters []CharacterPayload `json:"characters"`
}

// AreaGetCharactersHandler executes area_get_characters.
func AreaGetCharactersHandler(deps Deps) mcp.ToolHandlerFor[AreaGetInput, AreaGetCharactersResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AreaGetInput) (*mcp.CallToolResult, AreaGetCharactersResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if _, err := deps.Store.GetArea(ctx, input.AreaID); err != nil {
			return nil, AreaGetCharactersResult{}, surface(ctx, orNotFound(err, "area", input.AreaID))
		}
		characters, err := deps.Store.ListCharactersInArea(ctx, input.AreaID)
		if err != nil {
			return nil, AreaGetCharactersResult{}, surface(ctx, err)
		}
		return nil, AreaGetCharactersResult{Characters: characterPayloads(characters)}, nil
	}
}

// AreaGetItemsTool defines the area_get_items tool.
func AreaGetItemsTool() *mcp.Tool {
	return &mcp.Tool{Name: "area_get_items", Description: "Lists the items lying in an area."}
}

// AreaGetItemsResult lists an area's items.
type AreaGetItemsResult struct {
	Items []ItemPayload `json:"items"`
}

// AreaGetItemsHandler executes area_get_items.
func AreaGetItemsHandler(deps Deps) mcp.ToolHandlerFor[AreaGetInput, AreaGetItemsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AreaGetInput) (*mcp.CallToolResult, AreaGetItemsResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if _, err := deps.Store.GetArea(ctx, input.AreaID); err != nil {
			return nil, AreaGetItemsResult{}, surface(ctx, orNotFound(err, "area", input.AreaID))
		}
		items, err := deps.Store.ListItemsInArea(ctx, input.AreaID)
		if err != nil {
			return nil, AreaGetItemsResult{}, surface(ctx, err)
		}
		return nil, AreaGetItemsResult{Items: itemPayloads(items)}, nil
	}
}

// AreaCreateInput describes a new area.
type AreaCreateInput struct {
	WorldID     int64            `json:"world_id" jsonschema:"world identifier"`
	Name        string           `json:"name" jsonschema:"area name"`
	Description string           `json:"description,omitempty" jsonschema:"area description"`
	Temperature *float64         `json:"temperature,omitempty" jsonschema:"temperature in celsius"`
	Exits       map[string]int64 `json:"exits,omitempty" jsonschema:"direction label to area id"`
}

// AreaCreateResult carries the new id.
type AreaCreateResult struct {
	ID int64 `json:"id"`
}

// AreaCreateTool defines the area_create tool.
func AreaCreateTool() *mcp.Tool {
	return &mcp.Tool{Name: "area_create", Description: "Creates an area in a world."}
}

// AreaCreateHandler executes area_create.
func AreaCreateHandler(deps Deps) mcp.ToolHandlerFor[AreaCreateInput, AreaCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AreaCreateInput) (*mcp.CallToolResult, AreaCreateResult, error) {
		ctx, cancel := deps.requestContext(ctx)
		defer cancel()

		if input.Name == "" {
			return nil, AreaCreateResult{}, worlderr.New(worlderr.CodeValidation, "area name is required")
		}
		if _, err := deps.Store.GetWorld(ctx, input.WorldID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, AreaCreateResult{}, worlderr.Newf(worlderr.CodeNotFound, "world %d does not exist", input.WorldID)
			}
			return nil, AreaCreateResult{}, surface(ctx, err)
		}

		temperature := 20.0
		if input.Temperature != nil {
			temperature = *input.Temperature
		}
		id, err := deps.Store.CreateArea(ctx, world.Area{
			WorldID:     input.WorldID,
			Name:        input.Name,
			Description: input.Description,
			Temperature: temperature,
			Exits:       lowercaseExits(input.Exits),
		})
		if err != nil {
			return nil, AreaCreateResult{}, surface(ctx, fmt.Errorf("create area: %w", err))
		}
		return nil, AreaCreateResult{ID: id}, nil
	}
}

// lowercaseExits normalizes direction labels on write; the kernel never
// enforces a direction vocabulary.
func lowercaseExits(exits map[string]int64) map[string]int64 {
	if exits == nil {
		return nil
	}
	normalized := make(map[string]int64, len(exits))
	for direction, target := range exits {
		normalized[strings.ToLower(direction)] = target
	}
	return normalized
}
