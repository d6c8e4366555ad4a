// Package scheduler drives the per-world agent cycle: it selects unowned
// characters, advances their physiology across elapsed wall time, asks a
// language-model tier for each awake character's next action, validates it,
// and applies it through the kernel.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	worlderr "github.com/louisbranch/loreworld/internal/errors"
	"github.com/louisbranch/loreworld/internal/kernel"
	"github.com/louisbranch/loreworld/internal/llm"
	"github.com/louisbranch/loreworld/internal/storage"
	"github.com/louisbranch/loreworld/internal/world"
)

// Generation defaults for the single-object action response. The closing
// brace is a stop string because the action must be one small JSON object.
const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 64
)

var defaultStop = []string{"}", "\n\n"}

// Config tunes the scheduler.
type Config struct {
	WorldID       int64
	CycleInterval time.Duration
}

// Scheduler is the cycle engine for one world.
type Scheduler struct {
	store  storage.Store
	kernel *kernel.Kernel
	router llm.Router
	cfg    Config
	clock  func() time.Time

	stats     Stats
	lastCycle time.Time

	cycleDuration metric.Float64Histogram
	actionCount   metric.Int64Counter
	processed     metric.Int64Counter
}

// New creates a scheduler. The kernel must share the scheduler's store.
func New(store storage.Store, k *kernel.Kernel, router llm.Router, cfg Config) (*Scheduler, error) {
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = 5 * time.Second
	}

	meter := otel.Meter("github.com/louisbranch/loreworld/internal/scheduler")
	cycleDuration, err := meter.Float64Histogram("scheduler.cycle.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create cycle duration instrument: %w", err)
	}
	actionCount, err := meter.Int64Counter("scheduler.actions")
	if err != nil {
		return nil, fmt.Errorf("create action instrument: %w", err)
	}
	processed, err := meter.Int64Counter("scheduler.characters.processed")
	if err != nil {
		return nil, fmt.Errorf("create processed instrument: %w", err)
	}

	return &Scheduler{
		store:         store,
		kernel:        k,
		router:        router,
		cfg:           cfg,
		clock:         time.Now,
		cycleDuration: cycleDuration,
		actionCount:   actionCount,
		processed:     processed,
	}, nil
}

// SetClock overrides the scheduler's clock, for tests.
func (s *Scheduler) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Stats returns a snapshot of the per-process counters.
func (s *Scheduler) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// Run drives cycles until the context ends, then lets the in-flight cycle
// finish and logs the totals. The interval is a minimum spacing between
// cycle starts; a cycle running long is followed immediately, so pacing is
// best-effort under load.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Printf("scheduler started for world %d, interval %s", s.cfg.WorldID, s.cfg.CycleInterval)
	s.lastCycle = s.clock()

	for {
		if ctx.Err() != nil {
			break
		}
		started := s.clock()
		s.RunCycle(ctx)
		elapsed := s.clock().Sub(started)

		wait := s.cfg.CycleInterval - elapsed
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
	}

	log.Printf("scheduler stopped: %s", s.stats.Snapshot())
	return nil
}

// RunCycle processes every unowned character once. Per-character failures
// are isolated: they are logged and counted, never propagated.
func (s *Scheduler) RunCycle(ctx context.Context) {
	started := s.clock()
	dt := 0.0
	if !s.lastCycle.IsZero() {
		dt = started.Sub(s.lastCycle).Seconds()
	}
	s.lastCycle = started

	characters, err := s.store.ListUnownedCharacters(ctx, s.cfg.WorldID)
	if err != nil {
		log.Printf("cycle: list characters: %v", err)
		return
	}

	for _, character := range characters {
		s.processCharacter(ctx, character, dt)
	}

	duration := s.clock().Sub(started)
	s.stats.recordCycle(duration)
	s.cycleDuration.Record(ctx, duration.Seconds())
}

func (s *Scheduler) processCharacter(ctx context.Context, character world.Character, dt float64) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("character %d: panic isolated: %v", character.ID, recovered)
		}
	}()

	s.stats.recordCharacter()
	s.processed.Add(ctx, 1)

	updated, err := s.kernel.UpdateState(ctx, character.ID, TickPhysiology(character, dt))
	if err != nil {
		log.Printf("character %d: physiology tick: %v", character.ID, err)
		return
	}

	// Sleeping characters only recover; no model call, no action.
	if !updated.Awake() {
		return
	}

	snapshot, err := s.buildSnapshot(ctx, updated)
	if err != nil {
		log.Printf("character %d: build context: %v", character.ID, err)
		return
	}

	tier := llm.TierMinor
	if updated.Class == world.ClassStory {
		tier = llm.TierStory
	}
	// No transaction is open here; the model call sits between the context
	// reads and the mutation.
	response, err := s.router.Generate(ctx, tier, llm.Request{
		System:      SystemPrompt(updated.Class),
		Prompt:      BuildPrompt(snapshot),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Stop:        defaultStop,
	})
	if err != nil {
		log.Printf("character %d: model call: %v", character.ID, err)
		s.recordAction(ctx, false)
		return
	}

	action, err := ParseAction(response)
	if err != nil {
		log.Printf("character %d: %v", character.ID, err)
		s.recordAction(ctx, false)
		return
	}

	if err := s.executeAction(ctx, snapshot, action); err != nil {
		log.Printf("character %d: action %q: %v", character.ID, action.Action, err)
		s.recordAction(ctx, false)
		return
	}
	s.recordAction(ctx, true)
}

func (s *Scheduler) buildSnapshot(ctx context.Context, character world.Character) (Snapshot, error) {
	snapshot := Snapshot{Character: character}

	held, err := s.store.ListItemsHeldBy(ctx, character.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list held items: %w", err)
	}
	snapshot.Held = held

	if character.CurrentAreaID == nil {
		return snapshot, nil
	}

	area, err := s.store.GetArea(ctx, *character.CurrentAreaID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get area: %w", err)
	}
	snapshot.Area = &area

	areaCharacters, err := s.store.ListCharactersInArea(ctx, area.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list area characters: %w", err)
	}
	snapshot.AreaCharacters = areaCharacters

	areaItems, err := s.store.ListItemsInArea(ctx, area.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list area items: %w", err)
	}
	snapshot.AreaItems = areaItems

	return snapshot, nil
}

// executeAction validates the model's action against the snapshot and
// applies it through the kernel. Exit gating happens here, not in the
// kernel.
func (s *Scheduler) executeAction(ctx context.Context, snapshot Snapshot, action Action) error {
	character := snapshot.Character

	switch action.Action {
	case "move":
		if snapshot.Area == nil {
			return worlderr.Newf(worlderr.CodeNoArea, "character %d is not in any area", character.ID)
		}
		direction := strings.ToLower(strings.TrimSpace(action.Direction))
		target, ok := snapshot.Area.ExitTo(direction)
		if !ok {
			return worlderr.Newf(worlderr.CodeValidation, "no exit %q from area %d", direction, snapshot.Area.ID)
		}
		return s.kernel.MoveCharacter(ctx, character.ID, target)

	case "speak":
		return s.kernel.Speak(ctx, character.ID, action.Text, kernel.SpeakSpeech)

	case "pickup":
		item, ok := findItemByName(snapshot.AreaItems, action.Item)
		if !ok {
			return worlderr.Newf(worlderr.CodeNotHere, "no item matching %q in the area", action.Item)
		}
		hand, err := freeHand(snapshot.Held)
		if err != nil {
			return err
		}
		return s.kernel.Pickup(ctx, character.ID, item.ID, hand)

	case "drop":
		item, ok := findItemByName(snapshot.Held, action.Item)
		if !ok {
			return worlderr.Newf(worlderr.CodeNotHolding, "not holding an item matching %q", action.Item)
		}
		return s.kernel.Drop(ctx, character.ID, item.ID)

	case "wait":
		return s.kernel.AppendMemory(ctx, character.ID, "waited", "time passed")

	case "sleep":
		alertness := 0.0
		_, err := s.kernel.UpdateState(ctx, character.ID, world.StatePatch{Alertness: &alertness})
		return err

	default:
		return worlderr.Newf(worlderr.CodeUnknownAction, "unknown action %q", action.Action)
	}
}

func (s *Scheduler) recordAction(ctx context.Context, succeeded bool) {
	s.stats.recordAction(succeeded)
	outcome := "failed"
	if succeeded {
		outcome = "succeeded"
	}
	s.actionCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// findItemByName matches case-insensitively on name containment.
func findItemByName(items []world.Item, name string) (world.Item, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return world.Item{}, false
	}
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return item, true
		}
	}
	return world.Item{}, false
}

// freeHand picks the right hand when free, then the left.
func freeHand(held []world.Item) (string, error) {
	rightFree, leftFree := true, true
	for _, item := range held {
		if item.HeldLocation == nil {
			continue
		}
		switch *item.HeldLocation {
		case world.HoldRightHand:
			rightFree = false
		case world.HoldLeftHand:
			leftFree = false
		}
	}
	if rightFree {
		return world.HoldRightHand, nil
	}
	if leftFree {
		return world.HoldLeftHand, nil
	}
	return "", worlderr.New(worlderr.CodeBothHandsFull, "both hands are full")
}
