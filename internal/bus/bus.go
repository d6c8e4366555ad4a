// Package bus carries kernel mutation events to their subscribers.
package bus

import (
	"context"
	"sync"

	"github.com/louisbranch/loreworld/internal/world"
)

// Handler consumes one event. Handlers must not publish further events;
// trigger reactions form a single quiescent layer.
type Handler func(ctx context.Context, ev world.Event)

// Bus delivers events published after kernel commits.
type Bus interface {
	Publish(ctx context.Context, ev world.Event)
	Subscribe(h Handler)
}

// MemoryBus is the in-process Bus implementation. Delivery is synchronous
// and in subscription order, which keeps trigger effects observable to the
// statement following the mutator call.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// Publish delivers the event to every subscriber.
func (b *MemoryBus) Publish(ctx context.Context, ev world.Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}

// Subscribe registers a handler for all subsequent events.
func (b *MemoryBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

var _ Bus = (*MemoryBus)(nil)
