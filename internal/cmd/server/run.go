package server

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/louisbranch/loreworld/internal/bus"
	"github.com/louisbranch/loreworld/internal/kernel"
	"github.com/louisbranch/loreworld/internal/llm"
	platformotel "github.com/louisbranch/loreworld/internal/platform/otel"
	"github.com/louisbranch/loreworld/internal/scheduler"
	"github.com/louisbranch/loreworld/internal/services/wcp"
	"github.com/louisbranch/loreworld/internal/session"
	"github.com/louisbranch/loreworld/internal/storage/sqlite"
	"github.com/louisbranch/loreworld/internal/trigger"
)

// Run starts the world process and blocks until the context ends. The
// scheduler drains its in-flight cycle before shutdown.
func Run(ctx context.Context, cfg Config) error {
	// A transport failure tears the whole process down.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, err := platformotel.Setup(ctx, "loreworld-server")
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	// Persistence unreachable at startup is fatal by policy.
	store, err := sqlite.Open(cfg.DBPath, sqlite.Options{
		PoolMax:        cfg.DBPoolMax,
		IdleTimeout:    cfg.DBIdleTimeout(),
		ConnectTimeout: cfg.DBConnectTimeoutDuration(),
		LogQueries:     cfg.LogQueries,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close storage: %v", err)
		}
	}()

	memoryBus := bus.NewMemoryBus()
	memoryBus.Subscribe(trigger.New(store).HandleEvent)
	worldKernel := kernel.New(store, memoryBus)
	sessions := session.NewManager(store)

	var router llm.Router
	switch cfg.LLMBackend {
	case BackendStub:
		router = llm.NewStub(nil)
	default:
		router = llm.NewGenAI(cfg.LLMMinorModel, cfg.LLMStoryModel)
	}
	defer func() {
		if err := router.Close(); err != nil {
			log.Printf("close llm router: %v", err)
		}
	}()

	agentScheduler, err := scheduler.New(store, worldKernel, router, scheduler.Config{
		WorldID:       cfg.WorldID,
		CycleInterval: cfg.CycleInterval(),
	})
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sessions.RunSweeper(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := agentScheduler.Run(ctx); err != nil {
			log.Printf("scheduler: %v", err)
		}
	}()

	deps := wcp.Deps{
		Store:    store,
		Kernel:   worldKernel,
		Sessions: sessions,
	}

	var serveErr error
	switch cfg.MCPTransport {
	case TransportWebSocket:
		// Remote clients must authenticate character mutations.
		deps.RequireAuth = true
		serveErr = wcp.RunWebSocket(ctx, fmt.Sprintf(":%d", cfg.MCPPort), deps)
	default:
		serveErr = wcp.RunStdio(ctx, deps)
	}

	// Let the in-flight cycle and the sweeper drain.
	transportFailed := ctx.Err() == nil
	cancel()
	wg.Wait()

	if serveErr != nil && transportFailed {
		return fmt.Errorf("serve wcp: %w", serveErr)
	}
	return nil
}
