package chi

import (
	"context"

	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/search/request"
	"github.com/kailas-cloud/anisearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/anisearch/internal/usecase/health"
)

// Searcher runs a validated description against a catalogue domain.
type Searcher interface {
	Search(ctx context.Context, d catalogue.Domain, req request.Request) ([]result.Result, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
