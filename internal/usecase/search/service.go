package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/search/request"
	"github.com/kailas-cloud/anisearch/internal/domain/search/result"
	"github.com/kailas-cloud/anisearch/internal/domain/vector"
	"github.com/kailas-cloud/anisearch/internal/metrics"
)

// maxColumnWorkers bounds concurrent matrix loads within one request.
const maxColumnWorkers = 4

// unknownLabel stands in for a domain or model that did not resolve.
const unknownLabel = "unknown"

// Service runs a description against every synopsis column of a domain.
type Service struct {
	catalogues CatalogueProvider
	encoders   Encoders
	store      MatrixStore
	activity   ActivityRecorder
	topK       int
}

// New creates a search service. activity may be nil; topK <= 0 selects domain.DefaultTopK.
func New(
	catalogues CatalogueProvider, encoders Encoders, store MatrixStore,
	activity ActivityRecorder, topK int,
) *Service {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &Service{
		catalogues: catalogues,
		encoders:   encoders,
		store:      store,
		activity:   activity,
		topK:       topK,
	}
}

// TopK returns the configured result count.
func (s *Service) TopK() int { return s.topK }

// Search encodes the description with the requested model and returns at most TopK
// results with distinct titles. Any column failure fails the whole request.
func (s *Service) Search(
	ctx context.Context, d catalogue.Domain, req request.Request,
) (results []result.Result, err error) {
	if s.activity != nil {
		s.activity.Touch()
	}

	// Labels come from configuration, never from caller input, so series stay bounded.
	domainLabel, modelLabel := unknownLabel, unknownLabel
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.SearchRequestsTotal.WithLabelValues(domainLabel, modelLabel, status).Inc()
		metrics.SearchDuration.WithLabelValues(domainLabel).Observe(time.Since(start).Seconds())
	}()

	enc, cfg, err := s.encoders.Encoder(req.Model())
	if err != nil {
		return nil, fmt.Errorf("resolve encoder: %w", err)
	}
	modelLabel = cfg.Name

	cat, err := s.catalogues.Catalogue(ctx, d)
	if err != nil {
		if !errors.Is(err, domain.ErrUnknownDomain) {
			domainLabel = string(d)
		}
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	domainLabel = string(cat.Domain())

	emb, err := enc.Embed(ctx, req.Description())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if cfg.Dimensions > 0 && len(emb.Embedding) != cfg.Dimensions {
		return nil, domain.NewDimensionMismatch("query", cfg.Dimensions, len(emb.Embedding))
	}
	if !vector.Finite(emb.Embedding) {
		return nil, fmt.Errorf("%w: %s returned a non-finite query embedding",
			domain.ErrEmbeddingProviderError, cfg.Name)
	}
	domain.UsageFromContext(ctx).Record(cfg.Name, emb.TotalTokens)

	columns, err := s.scoreColumns(ctx, cat, cfg.Name, emb.Embedding)
	if err != nil {
		return nil, err
	}

	return TopK(columns, cat, s.topK), nil
}

// scoreColumns scores every column of the catalogue, preserving column order.
func (s *Service) scoreColumns(
	ctx context.Context, cat *catalogue.Catalogue, model string, query []float32,
) ([]ColumnScores, error) {
	names := cat.Columns()
	out := make([]ColumnScores, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxColumnWorkers)
	for i, column := range names {
		g.Go(func() error {
			m, err := s.alignedMatrix(gctx, cat, model, column)
			if err != nil {
				return err
			}
			scores, err := Score(column, query, m)
			if err != nil {
				return err
			}
			out[i] = ColumnScores{Column: column, Scores: scores}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // column errors are already wrapped
	}
	return out, nil
}

func (s *Service) alignedMatrix(
	ctx context.Context, cat *catalogue.Catalogue, model, column string,
) (*vector.Matrix, error) {
	m, err := s.store.Matrix(ctx, cat.Domain(), model, column)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", column, err)
	}
	if m.Rows() != cat.Len() {
		return m, fmt.Errorf("%w: %q has %d rows, catalogue has %d",
			domain.ErrStoreUnavailable, column, m.Rows(), cat.Len())
	}
	return m, nil
}

// ColumnReport describes one verified embedding matrix.
type ColumnReport struct {
	Column string
	Rows   int
	Dim    int
	Err    error
}

// Verify loads every column of a domain for a model and checks width and row alignment.
// All columns are reported; the returned error joins every column failure.
func (s *Service) Verify(ctx context.Context, d catalogue.Domain, model string) ([]ColumnReport, error) {
	cat, err := s.catalogues.Catalogue(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	_, cfg, err := s.encoders.Encoder(model)
	if err != nil {
		return nil, fmt.Errorf("resolve encoder: %w", err)
	}

	var errs []error
	reports := make([]ColumnReport, 0, len(cat.Columns()))
	for _, column := range cat.Columns() {
		rep := ColumnReport{Column: column}
		m, err := s.alignedMatrix(ctx, cat, model, column)
		if m != nil {
			rep.Rows, rep.Dim = m.Rows(), m.Dim()
		}
		if err == nil && cfg.Dimensions > 0 && m.Dim() != cfg.Dimensions {
			err = domain.NewDimensionMismatch(column, cfg.Dimensions, m.Dim())
		}
		rep.Err = err
		if err != nil {
			errs = append(errs, err)
		}
		reports = append(reports, rep)
	}
	return reports, errors.Join(errs...)
}
