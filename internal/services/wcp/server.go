package wcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	worlderr "github.com/louisbranch/loreworld/internal/errors"
	"github.com/louisbranch/loreworld/internal/kernel"
	"github.com/louisbranch/loreworld/internal/session"
	"github.com/louisbranch/loreworld/internal/storage"
)

const (
	serverName    = "loreworld-wcp"
	serverVersion = "0.1.0"

	timestampFormat = time.RFC3339Nano

	// defaultTimeout bounds one tool call.
	defaultTimeout = 30 * time.Second
)

// Deps wires a WCP server to the core.
type Deps struct {
	Store    storage.Store
	Kernel   *kernel.Kernel
	Sessions *session.Manager

	// RequireAuth enables the session-token policy; it is on for the
	// remote transport and off for local stdio automation.
	RequireAuth bool

	// Timeout bounds one tool call; zero means the 30 second default.
	Timeout time.Duration
}

// NewServer builds an MCP server carrying the full tool catalogue.
func NewServer(deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, WorldListTool(), WorldListHandler(deps))
	mcp.AddTool(server, WorldGetTool(), WorldGetHandler(deps))
	mcp.AddTool(server, WorldCreateTool(), WorldCreateHandler(deps))
	mcp.AddTool(server, WorldDeleteTool(), WorldDeleteHandler(deps))
	mcp.AddTool(server, WorldGetWritingStyleTool(), WorldGetWritingStyleHandler(deps))

	mcp.AddTool(server, AreaListTool(), AreaListHandler(deps))
	mcp.AddTool(server, AreaGetTool(), AreaGetHandler(deps))
	mcp.AddTool(server, AreaGetCharactersTool(), AreaGetCharactersHandler(deps))
	mcp.AddTool(server, AreaGetItemsTool(), AreaGetItemsHandler(deps))
	mcp.AddTool(server, AreaCreateTool(), AreaCreateHandler(deps))

	mcp.AddTool(server, CharacterGetTool(), CharacterGetHandler(deps))
	mcp.AddTool(server, CharacterListAwakeTool(), CharacterListAwakeHandler(deps))
	mcp.AddTool(server, CharacterCreateTool(), CharacterCreateHandler(deps))
	mcp.AddTool(server, CharacterDeleteTool(), CharacterDeleteHandler(deps))
	mcp.AddTool(server, CharacterMoveTool(), CharacterMoveHandler(deps))
	mcp.AddTool(server, CharacterSpeakTool(), CharacterSpeakHandler(deps))
	mcp.AddTool(server, CharacterUpdateStateTool(), CharacterUpdateStateHandler(deps))
	mcp.AddTool(server, CharacterGetInventoryTool(), CharacterGetInventoryHandler(deps))
	mcp.AddTool(server, CharacterAddMemoryTool(), CharacterAddMemoryHandler(deps))
	mcp.AddTool(server, CharacterClaimTool(), CharacterClaimHandler(deps))
	mcp.AddTool(server, CharacterReleaseTool(), CharacterReleaseHandler(deps))

	mcp.AddTool(server, ItemGetTool(), ItemGetHandler(deps))
	mcp.AddTool(server, ItemCreateTool(), ItemCreateHandler(deps))
	mcp.AddTool(server, ItemPickupTool(), ItemPickupHandler(deps))
	mcp.AddTool(server, ItemDropTool(), ItemDropHandler(deps))
	mcp.AddTool(server, ItemDeleteTool(), ItemDeleteHandler(deps))

	return server
}

// requestContext bounds one tool call to the configured timeout.
func (d Deps) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// surface maps context expiry onto the Timeout code; other errors pass
// through for the SDK to report as tool errors.
func surface(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return worlderr.New(worlderr.CodeTimeout, "request exceeded its deadline")
	}
	return err
}

// authorize enforces the remote-transport policy for tools acting as a
// character: a valid session token whose player controls the subject.
func (d Deps) authorize(ctx context.Context, token string, characterID int64) error {
	if !d.RequireAuth {
		return nil
	}
	if d.Sessions == nil {
		return worlderr.New(worlderr.CodeValidation, "session manager is not configured")
	}
	claimed, ok := d.Sessions.Validate(token)
	if !ok {
		return worlderr.New(worlderr.CodeValidation, "session token is missing, invalid, or expired")
	}
	canControl, err := d.Sessions.CanControl(ctx, claimed.PlayerID, characterID)
	if err != nil {
		return err
	}
	if !canControl {
		return worlderr.Newf(worlderr.CodeValidation, "player does not control character %d", characterID)
	}
	return nil
}
