package chi

import (
	"context"
	"sync"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/search/request"
	"github.com/kailas-cloud/anisearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/anisearch/internal/usecase/health"
)

type mockSearcher struct {
	mu      sync.Mutex
	results []result.Result
	err     error
	tokens  int
	calls   int
	domain  catalogue.Domain
	req     request.Request
}

func (m *mockSearcher) Search(
	ctx context.Context, d catalogue.Domain, req request.Request,
) ([]result.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.domain = d
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).Record(req.Model(), m.tokens)
	}
	return m.results, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func healthyReport() healthuc.Report {
	return healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"storage": healthuc.CheckOK},
	}
}
