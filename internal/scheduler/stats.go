package scheduler

import (
	"fmt"
	"sync"
	"time"
)

// Stats accumulates per-process scheduler counters. Nothing here is
// persisted; the totals are logged at shutdown.
type Stats struct {
	mu sync.Mutex

	cycles              int
	charactersProcessed int
	actionsAttempted    int
	actionsSucceeded    int
	actionsFailed       int
	averageCycle        time.Duration
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Cycles              int
	CharactersProcessed int
	ActionsAttempted    int
	ActionsSucceeded    int
	ActionsFailed       int
	AverageCycle        time.Duration
}

func (s *Stats) recordCycle(duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	s.averageCycle += (duration - s.averageCycle) / time.Duration(s.cycles)
}

func (s *Stats) recordCharacter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charactersProcessed++
}

func (s *Stats) recordAction(succeeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionsAttempted++
	if succeeded {
		s.actionsSucceeded++
	} else {
		s.actionsFailed++
	}
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Cycles:              s.cycles,
		CharactersProcessed: s.charactersProcessed,
		ActionsAttempted:    s.actionsAttempted,
		ActionsSucceeded:    s.actionsSucceeded,
		ActionsFailed:       s.actionsFailed,
		AverageCycle:        s.averageCycle,
	}
}

// String renders the counters for the shutdown log line.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("cycles=%d characters=%d actions=%d succeeded=%d failed=%d avg_cycle=%s",
		s.Cycles, s.CharactersProcessed, s.ActionsAttempted, s.ActionsSucceeded, s.ActionsFailed, s.AverageCycle)
}
