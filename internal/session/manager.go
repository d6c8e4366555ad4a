// Package session implements the single-owner claim over characters:
// token-bearing sessions held in process memory that expire a fixed
// Lifetime after creation; activity does not extend them.
//
// The map is process-local by design; running more than one server instance
// per world requires externalising it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	worlderr "github.com/louisbranch/loreworld/internal/errors"
	"github.com/louisbranch/loreworld/internal/platform/id"
	"github.com/louisbranch/loreworld/internal/storage"
)

// Lifetime bounds a session to 24 hours from creation.
const Lifetime = 24 * time.Hour

// sweepInterval is the cadence of the expiry sweep.
const sweepInterval = time.Hour

// Session ties a token to a player's claim over one character.
type Session struct {
	Token        string
	PlayerID     string
	CharacterID  int64
	CreatedAt    time.Time
	LastActivity time.Time
}

// Manager owns the token map and the character ownership column.
type Manager struct {
	store    storage.Store
	clock    func() time.Time
	newToken func() (string, error)

	mu       sync.Mutex
	sessions map[string]Session
}

// NewManager creates a session manager over the store.
func NewManager(store storage.Store) *Manager {
	return &Manager{
		store:    store,
		clock:    time.Now,
		newToken: id.NewToken,
		sessions: make(map[string]Session),
	}
}

// SetClock overrides the manager's clock, for tests.
func (m *Manager) SetClock(clock func() time.Time) {
	m.clock = clock
}

// Claim gives playerID ownership of the character and returns a session.
// Claiming a character the same player already owns is idempotent and
// returns the live session. Claiming another player's character fails with
// AlreadyOwned.
func (m *Manager) Claim(ctx context.Context, playerID string, characterID int64) (Session, error) {
	if playerID == "" {
		return Session{}, worlderr.New(worlderr.CodeValidation, "player id is required")
	}

	character, err := m.store.GetCharacter(ctx, characterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, worlderr.Newf(worlderr.CodeNotFound, "character %d does not exist", characterID)
		}
		return Session{}, fmt.Errorf("get character %d: %w", characterID, err)
	}
	if character.OwnerID != "" && character.OwnerID != playerID {
		return Session{}, worlderr.Newf(worlderr.CodeAlreadyOwned, "character %d is owned by another player", characterID)
	}

	if character.OwnerID == "" {
		if err := m.store.SetCharacterOwner(ctx, characterID, playerID); err != nil {
			return Session{}, fmt.Errorf("set character owner: %w", err)
		}
	}

	now := m.clock().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	// One live session per character: reuse the player's own, displace
	// anything stale.
	for token, existing := range m.sessions {
		if existing.CharacterID != characterID {
			continue
		}
		if existing.PlayerID == playerID && now.Sub(existing.CreatedAt) <= Lifetime {
			existing.LastActivity = now
			m.sessions[token] = existing
			return existing, nil
		}
		delete(m.sessions, token)
	}

	token, err := m.newToken()
	if err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}
	created := Session{
		Token:        token,
		PlayerID:     playerID,
		CharacterID:  characterID,
		CreatedAt:    now,
		LastActivity: now,
	}
	m.sessions[token] = created
	return created, nil
}

// Validate resolves a token to its live session, touching last activity.
// Expired or unknown tokens are dropped and report no session.
func (m *Manager) Validate(token string) (Session, bool) {
	now := m.clock().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if now.Sub(existing.CreatedAt) > Lifetime {
		delete(m.sessions, token)
		return Session{}, false
	}
	existing.LastActivity = now
	m.sessions[token] = existing
	return existing, true
}

// Release clears the character's owner and removes every session for it.
// Releasing an already deleted character still removes its sessions.
func (m *Manager) Release(ctx context.Context, characterID int64) error {
	if err := m.store.SetCharacterOwner(ctx, characterID, ""); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("clear character owner: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for token, existing := range m.sessions {
		if existing.CharacterID == characterID {
			delete(m.sessions, token)
		}
	}
	return nil
}

// CanControl reports whether playerID owns the character.
func (m *Manager) CanControl(ctx context.Context, playerID string, characterID int64) (bool, error) {
	character, err := m.store.GetCharacter(ctx, characterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, worlderr.Newf(worlderr.CodeNotFound, "character %d does not exist", characterID)
		}
		return false, fmt.Errorf("get character %d: %w", characterID, err)
	}
	return playerID != "" && character.OwnerID == playerID, nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	now := m.clock().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, existing := range m.sessions {
		if now.Sub(existing.CreatedAt) > Lifetime {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps expired sessions hourly until the context ends.
func (m *Manager) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				log.Printf("session sweep removed %d expired sessions", removed)
			}
		}
	}
}
