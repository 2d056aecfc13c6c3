package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Names returns the check names in stable order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r.Checks))
	for k := range r.Checks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Service coordinates health checks.
type Service struct {
	storage  Pinger
	cache    Pinger
	encoders map[string]EmbeddingChecker
	timeout  time.Duration
}

// New creates a Service. cache can be nil when the embedding cache is disabled.
func New(storage, cache Pinger, encoders map[string]EmbeddingChecker) *Service {
	return &Service{
		storage:  storage,
		cache:    cache,
		encoders: encoders,
		timeout:  defaultCheckTimeout,
	}
}

// Check runs every health check concurrently under a per-check timeout.
// Encoder checks are reported as "encoder:<model>".
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(s.encoders)+2)
	)

	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := fn(cctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}

	if s.storage != nil {
		run("storage", s.storage.Ping)
	}
	if s.cache != nil {
		run("cache", s.cache.Ping)
	}
	for model, c := range s.encoders {
		run("encoder:"+model, c.HealthCheck)
	}
	wg.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
