package scheduler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/loreworld/internal/bus"
	"github.com/louisbranch/loreworld/internal/kernel"
	"github.com/louisbranch/loreworld/internal/llm"
	"github.com/louisbranch/loreworld/internal/storage/sqlite"
	"github.com/louisbranch/loreworld/internal/world"
)

type fixture struct {
	store     *sqlite.Store
	kernel    *kernel.Kernel
	stub      *llm.Stub
	scheduler *Scheduler
	now       *time.Time

	worldID int64
	areaID  int64
}

func newFixture(t *testing.T, scripts map[string][]string) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "world.db"), sqlite.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	worldID, err := store.CreateWorld(ctx, world.World{Name: "Emberfall"})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	areaID, err := store.CreateArea(ctx, world.Area{WorldID: worldID, Name: "Hall", Temperature: 18})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}

	k := kernel.New(store, bus.NewMemoryBus())
	stub := llm.NewStub(scripts)
	sched, err := New(store, k, stub, Config{WorldID: worldID, CycleInterval: time.Second})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	sched.SetClock(func() time.Time { return now })
	k.SetClock(func() time.Time { return now })

	return &fixture{store: store, kernel: k, stub: stub, scheduler: sched, now: &now, worldID: worldID, areaID: areaID}
}

func (f *fixture) newCharacter(t *testing.T, c world.Character) int64 {
	t.Helper()
	c.WorldID = f.worldID
	if c.Nutrition == 0 {
		c.Nutrition = 100
	}
	if c.Hydration == 0 {
		c.Hydration = 100
	}
	id, err := f.store.CreateCharacter(context.Background(), c)
	if err != nil {
		t.Fatalf("create character %s: %v", c.Name, err)
	}
	return id
}

func TestCycleExecutesActions(t *testing.T) {
	f := newFixture(t, map[string][]string{
		"Maren": {`{"action":"speak","text":"Hello"`},
		"Bran":  {`{"action":"move","direction":"North"}`},
	})
	ctx := context.Background()

	cellarID, err := f.store.CreateArea(ctx, world.Area{WorldID: f.worldID, Name: "Cellar"})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	area, err := f.store.GetArea(ctx, f.areaID)
	if err != nil {
		t.Fatalf("get area: %v", err)
	}
	area.Exits = map[string]int64{"north": cellarID}
	if err := f.store.UpdateArea(ctx, area); err != nil {
		t.Fatalf("update area: %v", err)
	}

	marenID := f.newCharacter(t, world.Character{Name: "Maren", Class: world.ClassStory, Alertness: 90, CurrentAreaID: &f.areaID})
	branID := f.newCharacter(t, world.Character{Name: "Bran", Class: world.ClassMinor, Alertness: 90, CurrentAreaID: &f.areaID})

	f.scheduler.RunCycle(ctx)

	// Story characters are prompted first.
	if len(f.stub.Calls) != 2 || !strings.Contains(f.stub.Calls[0].Prompt, "Maren") {
		t.Fatalf("expected Maren prompted first, got %d calls", len(f.stub.Calls))
	}

	maren, err := f.store.GetCharacter(ctx, marenID)
	if err != nil {
		t.Fatalf("get maren: %v", err)
	}
	last := maren.Memory[len(maren.Memory)-1]
	if last.Action != "speech: Hello" {
		t.Fatalf("expected truncated speak action applied, got %q", last.Action)
	}

	bran, err := f.store.GetCharacter(ctx, branID)
	if err != nil {
		t.Fatalf("get bran: %v", err)
	}
	if bran.CurrentAreaID == nil || *bran.CurrentAreaID != cellarID {
		t.Fatalf("expected Bran moved to cellar, got %v", bran.CurrentAreaID)
	}

	stats := f.scheduler.Stats()
	if stats.ActionsSucceeded != 2 || stats.ActionsFailed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.CharactersProcessed != 2 {
		t.Fatalf("expected 2 processed, got %d", stats.CharactersProcessed)
	}
}

func TestCycleSleepingCharacterOnlyRecovers(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sleeperID := f.newCharacter(t, world.Character{Name: "Edda", Class: world.ClassMinor, Alertness: 0, Tiredness: 100, CurrentAreaID: &f.areaID})

	f.scheduler.RunCycle(ctx)
	*f.now = f.now.Add(60 * time.Second)
	f.scheduler.RunCycle(ctx)

	if len(f.stub.Calls) != 0 {
		t.Fatalf("asleep characters must not reach the model, got %d calls", len(f.stub.Calls))
	}

	sleeper, err := f.store.GetCharacter(ctx, sleeperID)
	if err != nil {
		t.Fatalf("get sleeper: %v", err)
	}
	if sleeper.Alertness != 5 {
		t.Fatalf("expected alertness 5 after a minute asleep, got %v", sleeper.Alertness)
	}
	if sleeper.Tiredness != 95 {
		t.Fatalf("expected tiredness 95 after a minute asleep, got %v", sleeper.Tiredness)
	}
}

func TestCycleForcedSleepExcludesNextCycle(t *testing.T) {
	f := newFixture(t, map[string][]string{
		"Maren": {`{"action":"wait"}`, `{"action":"wait"}`},
	})
	ctx := context.Background()

	f.newCharacter(t, world.Character{Name: "Maren", Class: world.ClassMinor, Alertness: 80, Tiredness: 99.5, CurrentAreaID: &f.areaID})

	f.scheduler.RunCycle(ctx)
	if len(f.stub.Calls) != 1 {
		t.Fatalf("expected first cycle to act, got %d calls", len(f.stub.Calls))
	}

	// Ten minutes pass: tiredness crosses 100, forcing sleep before the
	// action stage.
	*f.now = f.now.Add(600 * time.Second)
	f.scheduler.RunCycle(ctx)
	if len(f.stub.Calls) != 1 {
		t.Fatalf("expected forced-asleep character skipped, got %d calls", len(f.stub.Calls))
	}
}

func TestCyclePickupPrefersRightHand(t *testing.T) {
	f := newFixture(t, map[string][]string{
		"Maren": {`{"action":"pickup","item":"torch"}`, `{"action":"pickup","item":"rope"}`, `{"action":"pickup","item":"coin"}`},
	})
	ctx := context.Background()

	marenID := f.newCharacter(t, world.Character{Name: "Maren", Class: world.ClassMinor, Alertness: 90, CurrentAreaID: &f.areaID})
	for _, name := range []string{"Torch", "Rope", "Coin"} {
		if _, err := f.store.CreateItem(ctx, world.Item{WorldID: f.worldID, Name: name, CurrentAreaID: &f.areaID}); err != nil {
			t.Fatalf("create item %s: %v", name, err)
		}
	}

	f.scheduler.RunCycle(ctx)
	f.scheduler.RunCycle(ctx)

	held, err := f.store.ListItemsHeldBy(ctx, marenID)
	if err != nil {
		t.Fatalf("list held: %v", err)
	}
	locations := map[string]string{}
	for _, item := range held {
		locations[item.Name] = *item.HeldLocation
	}
	if locations["Torch"] != world.HoldRightHand || locations["Rope"] != world.HoldLeftHand {
		t.Fatalf("expected right then left hand, got %v", locations)
	}

	// Both hands full: the third pickup fails but the cycle survives.
	f.scheduler.RunCycle(ctx)
	stats := f.scheduler.Stats()
	if stats.ActionsSucceeded != 2 || stats.ActionsFailed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCycleIsolatesFailures(t *testing.T) {
	f := newFixture(t, map[string][]string{
		"Maren": {`utter nonsense`},
		"Bran":  {`{"action":"wait"}`},
	})
	ctx := context.Background()

	f.newCharacter(t, world.Character{Name: "Maren", Class: world.ClassMinor, Alertness: 90, CurrentAreaID: &f.areaID})
	branID := f.newCharacter(t, world.Character{Name: "Bran", Class: world.ClassMinor, Alertness: 90, CurrentAreaID: &f.areaID})

	f.scheduler.RunCycle(ctx)

	bran, err := f.store.GetCharacter(ctx, branID)
	if err != nil {
		t.Fatalf("get bran: %v", err)
	}
	if len(bran.Memory) == 0 || bran.Memory[len(bran.Memory)-1].Action != "waited" {
		t.Fatalf("expected Bran's wait recorded despite Maren's parse failure, got %+v", bran.Memory)
	}

	stats := f.scheduler.Stats()
	if stats.ActionsFailed != 1 || stats.ActionsSucceeded != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCycleUnknownActionAndUnknownExit(t *testing.T) {
	f := newFixture(t, map[string][]string{
		"Maren": {`{"action":"fly"}`, `{"action":"move","direction":"up"}`},
	})
	ctx := context.Background()

	f.newCharacter(t, world.Character{Name: "Maren", Class: world.ClassMinor, Alertness: 90, CurrentAreaID: &f.areaID})

	f.scheduler.RunCycle(ctx)
	f.scheduler.RunCycle(ctx)

	stats := f.scheduler.Stats()
	if stats.ActionsFailed != 2 {
		t.Fatalf("expected both actions to fail, got %+v", stats)
	}
}

func TestCycleSleepAction(t *testing.T) {
	f := newFixture(t, map[string][]string{
		"Maren": {`{"action":"sleep"}`},
	})
	ctx := context.Background()

	marenID := f.newCharacter(t, world.Character{Name: "Maren", Class: world.ClassMinor, Alertness: 90, CurrentAreaID: &f.areaID})

	f.scheduler.RunCycle(ctx)

	maren, err := f.store.GetCharacter(ctx, marenID)
	if err != nil {
		t.Fatalf("get maren: %v", err)
	}
	if maren.Alertness != 0 {
		t.Fatalf("expected sleep action to zero alertness, got %v", maren.Alertness)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := newFixture(t, nil)
	f.scheduler.SetClock(time.Now)
	f.kernel.SetClock(time.Now)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
