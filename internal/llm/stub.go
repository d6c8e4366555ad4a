package llm

import (
	"context"
	"strings"
	"sync"
)

// Stub is a deterministic Router for tests and offline runs. Responses are
// keyed by a substring of the prompt's first line (typically the character's
// name in the identity header) and consumed in order; when a key's script
// runs out, or no key matches, the fallback is returned.
type Stub struct {
	mu        sync.Mutex
	scripts   map[string][]string
	positions map[string]int
	fallback  string

	// Calls records every request for assertions.
	Calls []Request
}

// NewStub creates a stub router with the given scripted responses.
func NewStub(scripts map[string][]string) *Stub {
	return &Stub{
		scripts:   scripts,
		positions: make(map[string]int),
		fallback:  `{"action":"wait"}`,
	}
}

// SetFallback overrides the response used when no script matches.
func (s *Stub) SetFallback(response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = response
}

// Generate returns the next scripted response whose key appears in the
// prompt.
func (s *Stub) Generate(_ context.Context, _ Tier, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, req)

	firstLine, _, _ := strings.Cut(req.Prompt, "\n")
	for key, script := range s.scripts {
		if !strings.Contains(firstLine, key) {
			continue
		}
		position := s.positions[key]
		if position >= len(script) {
			break
		}
		s.positions[key] = position + 1
		return script[position], nil
	}
	return s.fallback, nil
}

// Close is a no-op.
func (s *Stub) Close() error { return nil }

var _ Router = (*Stub)(nil)
