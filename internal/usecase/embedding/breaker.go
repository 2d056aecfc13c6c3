package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/metrics"
)

// BreakerConfig configures the per-model circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32        // consecutive failures before opening
	MaxRequests      uint32        // trial requests allowed while half-open
	Interval         time.Duration // closed-state count reset period
	Timeout          time.Duration // time spent open before probing
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
	}
}

// BreakerEmbedder fails fast while a remote encoder keeps erroring.
type BreakerEmbedder struct {
	inner domain.Embedder
	model string
	cb    *gobreaker.CircuitBreaker[domain.EmbeddingResult]
}

// NewBreakerEmbedder wraps inner with a circuit breaker named after the model.
func NewBreakerEmbedder(
	inner domain.Embedder, model string, cfg BreakerConfig, logger *zap.Logger,
) *BreakerEmbedder {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics.BreakerState.WithLabelValues(model).Set(0)

	settings := gobreaker.Settings{
		Name:        model,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A caller giving up says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Embedding circuit breaker state changed",
				zap.String("model", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}

	return &BreakerEmbedder{
		inner: inner,
		model: model,
		cb:    gobreaker.NewCircuitBreaker[domain.EmbeddingResult](settings),
	}
}

// Embed runs the inner embedder through the breaker.
func (b *BreakerEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	result, err := b.cb.Execute(func() (domain.EmbeddingResult, error) {
		return b.inner.Embed(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.EmbeddingResult{}, fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingProviderError, b.model, err)
		}
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // transparent decorator
	}
	return result, nil
}

// State reports the current breaker state.
func (b *BreakerEmbedder) State() gobreaker.State {
	return b.cb.State()
}

// HealthCheck reports an open breaker as unhealthy, otherwise delegates.
func (b *BreakerEmbedder) HealthCheck(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: circuit open for %s", domain.ErrEmbeddingProviderError, b.model)
	}
	if hc, ok := b.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
