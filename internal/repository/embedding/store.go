package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/vector"
	"github.com/kailas-cloud/anisearch/internal/metrics"
	"github.com/kailas-cloud/anisearch/internal/storage"
)

// DefaultPreloadConcurrency bounds parallel matrix loads during Preload.
const DefaultPreloadConcurrency = 4

// Key returns the object key of a column's embedding file:
// <domain>/<model>/embeddings_<column with spaces replaced by underscores>.npy
func Key(d catalogue.Domain, model, column string) string {
	return fmt.Sprintf("%s/%s/embeddings_%s.npy", d, model, strings.ReplaceAll(column, " ", "_"))
}

// Store lazily loads embedding matrices and keeps them in memory until evicted.
type Store struct {
	objects storage.ObjectStore
	logger  *zap.Logger

	mu       sync.RWMutex
	matrices map[string]*vector.Matrix
	resident int64

	loads singleflight.Group
}

// New creates an embedding store over objects.
func New(objects storage.ObjectStore, logger *zap.Logger) *Store {
	return &Store{
		objects:  objects,
		logger:   logger,
		matrices: make(map[string]*vector.Matrix),
	}
}

// Matrix returns the cached matrix for (d, model, column), loading it on first use.
// Concurrent first loads of the same key share one read.
func (s *Store) Matrix(ctx context.Context, d catalogue.Domain, model, column string) (*vector.Matrix, error) {
	key := Key(d, model, column)

	s.mu.RLock()
	m, ok := s.matrices[key]
	s.mu.RUnlock()
	if ok {
		metrics.StoreLoadsTotal.WithLabelValues("hit").Inc()
		return m, nil
	}

	// The shared load must outlive a single caller's cancellation.
	ch := s.loads.DoChan(key, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), key)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*vector.Matrix), nil //nolint:forcetypeassert // load returns *vector.Matrix
	}
}

func (s *Store) load(ctx context.Context, key string) (*vector.Matrix, error) {
	s.mu.RLock()
	m, ok := s.matrices[key]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}

	rc, err := s.objects.Open(ctx, key)
	if err != nil {
		metrics.StoreLoadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	defer func() { _ = rc.Close() }()

	m, err = Decode(rc)
	if err != nil {
		metrics.StoreLoadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, key, err)
	}

	s.mu.Lock()
	if _, exists := s.matrices[key]; !exists {
		s.matrices[key] = m
		s.resident += m.SizeBytes()
	}
	resident := s.resident
	s.mu.Unlock()

	metrics.StoreLoadsTotal.WithLabelValues("loaded").Inc()
	metrics.StoreResidentBytes.Set(float64(resident))
	s.logger.Info("Embedding matrix loaded",
		zap.String("key", key),
		zap.Int("rows", m.Rows()),
		zap.Int("dim", m.Dim()),
		zap.Int64("resident_bytes", resident),
	)
	return m, nil
}

// Evict drops every cached matrix and returns how many were released.
func (s *Store) Evict() int {
	s.mu.Lock()
	n := len(s.matrices)
	s.matrices = make(map[string]*vector.Matrix)
	s.resident = 0
	s.mu.Unlock()

	metrics.StoreResidentBytes.Set(0)
	return n
}

// Resident returns the number of cached matrices and their size in bytes.
func (s *Store) Resident() (int, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matrices), s.resident
}

// Target names one embedding matrix.
type Target struct {
	Domain catalogue.Domain
	Model  string
	Column string
}

// Targets expands every column of every domain for every model.
func Targets(columns map[catalogue.Domain][]string, models []string) []Target {
	var out []Target
	for d, cols := range columns {
		for _, model := range models {
			for _, c := range cols {
				out = append(out, Target{Domain: d, Model: model, Column: c})
			}
		}
	}
	return out
}

// Preload loads targets in parallel, at most concurrency at a time.
// It returns every load failure joined; successful loads stay cached.
func (s *Store) Preload(ctx context.Context, targets []Target, concurrency int) error {
	if concurrency <= 0 {
		concurrency = DefaultPreloadConcurrency
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, t := range targets {
		g.Go(func() error {
			if _, err := s.Matrix(gctx, t.Domain, t.Model, t.Column); err != nil {
				if gctx.Err() != nil {
					return gctx.Err() //nolint:wrapcheck // cancellation stops the whole preload
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	return errors.Join(errs...)
}
