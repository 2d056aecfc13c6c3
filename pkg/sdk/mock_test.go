package anisearch

import (
	"context"

	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/search/request"
	"github.com/kailas-cloud/anisearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/anisearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/anisearch/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, d catalogue.Domain, req request.Request) ([]result.Result, error)
	verifyFn func(ctx context.Context, d catalogue.Domain, model string) ([]searchuc.ColumnReport, error)
}

func (m *mockSearchUC) Search(
	ctx context.Context, d catalogue.Domain, req request.Request,
) ([]result.Result, error) {
	return m.searchFn(ctx, d, req)
}

func (m *mockSearchUC) Verify(
	ctx context.Context, d catalogue.Domain, model string,
) ([]searchuc.ColumnReport, error) {
	return m.verifyFn(ctx, d, model)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- public Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

func fixedEmbedder(vec ...float32) *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
		return EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
	}}
}
