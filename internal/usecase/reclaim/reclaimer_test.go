package reclaim

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type countingEvictor struct {
	mu sync.Mutex
	n  int
}

func (c *countingEvictor) Evict() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return 2
}

func (c *countingEvictor) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestReclaimer(idle time.Duration, evictors ...domain.Evictor) (*Reclaimer, *fakeClock, *int) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	frees := 0
	r := New(evictors, time.Second, idle, zap.NewNop())
	r.now = clock.Now
	r.freeOS = func() { frees++ }
	r.Touch()
	return r, clock, &frees
}

func TestTick_NotIdle(t *testing.T) {
	ev := &countingEvictor{}
	r, clock, frees := newTestReclaimer(time.Minute, ev)

	clock.Advance(30 * time.Second)
	if r.tick() {
		t.Error("should not reclaim before the idle period")
	}
	if ev.count() != 0 || *frees != 0 {
		t.Error("evictor called too early")
	}
}

func TestTick_IdleEvictsOnce(t *testing.T) {
	a, b := &countingEvictor{}, &countingEvictor{}
	r, clock, frees := newTestReclaimer(time.Minute, a, b)
	before := testutil.ToFloat64(metrics.ReclaimTotal)

	clock.Advance(61 * time.Second)
	if !r.tick() {
		t.Fatal("expected reclaim after idle period")
	}
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("evictors called %d/%d times", a.count(), b.count())
	}
	if *frees != 1 {
		t.Errorf("FreeOSMemory called %d times", *frees)
	}
	if got := testutil.ToFloat64(metrics.ReclaimTotal) - before; got != 1 {
		t.Errorf("reclaim counter delta = %v", got)
	}

	clock.Advance(time.Hour)
	if r.tick() {
		t.Error("second idle tick should be a no-op")
	}
	if a.count() != 1 {
		t.Error("evictor called again without activity")
	}
}

func TestTick_TouchResets(t *testing.T) {
	ev := &countingEvictor{}
	r, clock, _ := newTestReclaimer(time.Minute, ev)

	clock.Advance(2 * time.Minute)
	r.tick()
	r.Touch()

	clock.Advance(30 * time.Second)
	if r.tick() {
		t.Error("activity should postpone reclaim")
	}
	clock.Advance(time.Minute)
	if !r.tick() {
		t.Error("expected reclaim after renewed idle period")
	}
	if ev.count() != 2 {
		t.Errorf("expected 2 evictions, got %d", ev.count())
	}
}

func TestNew_Defaults(t *testing.T) {
	r := New(nil, 0, -1, nil)
	if r.interval != DefaultInterval || r.idle != DefaultIdle {
		t.Errorf("defaults not applied: interval=%v idle=%v", r.interval, r.idle)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := New(nil, 5*time.Millisecond, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
