// Package reclaim releases in-memory embedding state after a period without searches.
package reclaim

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/metrics"
)

const (
	// DefaultInterval is how often idleness is checked.
	DefaultInterval = 60 * time.Second
	// DefaultIdle is how long without searches before memory is released.
	DefaultIdle = 60 * time.Second
)

// Reclaimer tracks search activity and evicts caches once the service goes idle.
type Reclaimer struct {
	evictors []domain.Evictor
	interval time.Duration
	idle     time.Duration
	logger   *zap.Logger

	now       func() time.Time
	freeOS    func()
	last      atomic.Int64 // unix nanos of the most recent Touch
	reclaimed atomic.Bool  // set after an eviction, cleared by the next Touch
}

// New creates a Reclaimer. Non-positive durations fall back to the defaults.
func New(evictors []domain.Evictor, interval, idle time.Duration, logger *zap.Logger) *Reclaimer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if idle <= 0 {
		idle = DefaultIdle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reclaimer{
		evictors: evictors,
		interval: interval,
		idle:     idle,
		logger:   logger,
		now:      time.Now,
		freeOS:   debug.FreeOSMemory,
	}
	r.last.Store(r.now().UnixNano())
	return r
}

// Touch records search activity.
func (r *Reclaimer) Touch() {
	r.last.Store(r.now().UnixNano())
	r.reclaimed.Store(false)
}

// Run checks idleness on every tick until ctx is cancelled.
func (r *Reclaimer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

// tick evicts once per idle period; repeated ticks without activity are no-ops.
func (r *Reclaimer) tick() bool {
	idleFor := r.now().Sub(time.Unix(0, r.last.Load()))
	if idleFor <= r.idle || r.reclaimed.Load() {
		return false
	}

	freed := 0
	for _, e := range r.evictors {
		freed += e.Evict()
	}
	r.freeOS()
	r.reclaimed.Store(true)

	metrics.ReclaimTotal.Inc()
	r.logger.Info("Released idle memory",
		zap.Duration("idle_for", idleFor),
		zap.Int("evicted", freed),
	)
	return true
}
