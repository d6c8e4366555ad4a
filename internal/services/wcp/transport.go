package wcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/net/websocket"
)

// RunStdio serves the tool catalogue over the local line-delimited duplex
// stream until the context ends.
func RunStdio(ctx context.Context, deps Deps) error {
	server := NewServer(deps)
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunWebSocket serves the tool catalogue to remote clients. Each websocket
// connection gets its own MCP session against the shared server; frames
// carry the same JSON envelopes as stdio.
func RunWebSocket(ctx context.Context, addr string, deps Deps) error {
	server := NewServer(deps)

	handler := websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()

		transport := &wsTransport{conn: &wsConnection{ws: ws}}
		serverSession, err := server.Connect(ctx, transport, nil)
		if err != nil {
			log.Printf("wcp: connect websocket session: %v", err)
			return
		}
		if err := serverSession.Wait(); err != nil && ctx.Err() == nil {
			log.Printf("wcp: websocket session ended: %v", err)
		}
	})

	httpServer := &http.Server{Addr: addr, Handler: handler}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("wcp listening on ws://%s", addr)
	err := httpServer.ListenAndServe()
	<-shutdownDone
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// wsTransport hands the SDK a pre-established websocket connection.
type wsTransport struct {
	conn *wsConnection
}

// Connect implements mcp.Transport.
func (t *wsTransport) Connect(context.Context) (mcp.Connection, error) {
	return t.conn, nil
}

// wsConnection adapts one websocket to the SDK's message connection. Each
// websocket frame carries exactly one JSON-RPC envelope.
type wsConnection struct {
	ws *websocket.Conn
}

// Read blocks on the next frame; Close unblocks it.
func (c *wsConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	if err := websocket.Message.Receive(c.ws, &data); err != nil {
		return nil, fmt.Errorf("receive frame: %w", err)
	}
	msg, err := jsonrpc.DecodeMessage(data)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return msg, nil
}

// Write sends one envelope as one frame.
func (c *wsConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := websocket.Message.Send(c.ws, string(data)); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	return nil
}

// Close tears the websocket down.
func (c *wsConnection) Close() error {
	return c.ws.Close()
}

// SessionID implements mcp.Connection.
func (c *wsConnection) SessionID() string { return "" }
