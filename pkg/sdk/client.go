package anisearch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/search/request"
	"github.com/kailas-cloud/anisearch/internal/domain/search/result"
	catalogrepo "github.com/kailas-cloud/anisearch/internal/repository/catalogue"
	embrepo "github.com/kailas-cloud/anisearch/internal/repository/embedding"
	"github.com/kailas-cloud/anisearch/internal/storage"
	openaiEmb "github.com/kailas-cloud/anisearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/anisearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/anisearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/anisearch/internal/usecase/search"
)

// Internal interfaces, replaced by mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, d catalogue.Domain, req request.Request) ([]result.Result, error)
	Verify(ctx context.Context, d catalogue.Domain, model string) ([]searchuc.ColumnReport, error)
}

// Client is the anisearch SDK entry point.
type Client struct {
	searchSvc searchUseCase
	healthSvc healthUseCase
	store     *embrepo.Store
	domains   []string
	models    []string
	obs       *observer
}

// New creates a Client. Catalogues and embeddings are loaded lazily on first use.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("anisearch: store required (use WithLocalStore or WithS3Store)")
	}
	if len(cfg.domains) == 0 {
		return nil, errors.New("anisearch: at least one domain required (use WithDomain or WithDefaultDomains)")
	}
	if len(cfg.models) == 0 {
		return nil, errors.New("anisearch: at least one model required (use WithModel or WithOpenAIModel)")
	}

	objects, err := storage.New(ctx, storage.Config{
		Driver: cfg.driver,
		Root:   cfg.root,
		S3: storage.S3Config{
			Endpoint:  cfg.s3.Endpoint,
			Region:    cfg.s3.Region,
			Bucket:    cfg.s3.Bucket,
			Prefix:    cfg.s3.Prefix,
			AccessKey: cfg.s3.AccessKey,
			SecretKey: cfg.s3.SecretKey,
			UseSSL:    cfg.s3.UseSSL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anisearch: create store: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(objects, cfg, obs)
}

func wireClient(objects storage.ObjectStore, cfg *clientConfig, obs *observer) (*Client, error) {
	log := zap.NewNop()

	tables := make(map[catalogue.Domain]catalogrepo.Table, len(cfg.domains))
	domains := make([]string, 0, len(cfg.domains))
	for name, o := range cfg.domains {
		d := catalogue.Domain(name)
		if !d.IsValid() {
			return nil, fmt.Errorf("anisearch: %w: %q", domain.ErrUnknownDomain, name)
		}
		tables[d] = catalogrepo.Table{Key: o.Table, TitleColumn: o.TitleColumn, Columns: o.Columns}
		domains = append(domains, name)
	}
	sort.Strings(domains)

	registry := embeddinguc.NewRegistry()
	models := make([]string, 0, len(cfg.models))
	for _, m := range cfg.models {
		if m.dimensions <= 0 {
			return nil, fmt.Errorf("anisearch: model %s: dimensions must be positive", m.name)
		}
		var emb domain.Embedder
		if m.embedder != nil {
			emb = &embedderAdapter{inner: m.embedder}
		} else {
			emb = openaiEmb.NewEmbedder(&openaiEmb.Config{
				Name:       m.name,
				APIKey:     m.apiKey,
				BaseURL:    m.baseURL,
				Dimensions: m.dimensions,
				Provider:   "openai",
				Logger:     log,
			})
		}
		mc := domain.ModelConfig{Name: m.name, Provider: "sdk", Dimensions: m.dimensions}
		if err := registry.Register(mc, emb, nil); err != nil {
			return nil, fmt.Errorf("anisearch: %w", err)
		}
		models = append(models, m.name)
	}
	sort.Strings(models)

	store := embrepo.New(objects, log)
	searchSvc := searchuc.New(catalogrepo.New(objects, tables, log), registry, store, nil, cfg.topK)

	checkers := make(map[string]healthuc.EmbeddingChecker)
	for name, hc := range registry.Checkers() {
		checkers[name] = hc
	}

	return &Client{
		searchSvc: searchSvc,
		healthSvc: healthuc.New(objects, nil, checkers),
		store:     store,
		domains:   domains,
		models:    models,
		obs:       obs,
	}, nil
}

// Close drops cached embedding matrices.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Evict()
	}
}

// Domains returns the served domains.
func (c *Client) Domains() []string { return append([]string(nil), c.domains...) }

// Models returns the registered model ids.
func (c *Client) Models() []string { return append([]string(nil), c.models...) }

// Search returns the catalogue entries of domain most similar to description,
// ranked by cosine similarity with one entry per title.
func (c *Client) Search(ctx context.Context, domainName, model, description string) (out []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", domainName, model, start, len(out), err) }()

	req, err := request.New(model, description)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results, err := c.searchSvc.Search(ctx, catalogue.Domain(domainName), req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out = make([]Result, len(results))
	for i := range results {
		r := &results[i]
		out[i] = Result{
			Rank:       r.Rank(),
			Name:       r.Name(),
			Synopsis:   r.Synopsis(),
			Similarity: r.Similarity(),
			Column:     r.Column(),
		}
	}
	return out, nil
}

// Verify loads every embedding file of domain for model and checks width and row alignment.
// Reports are returned even when some columns fail.
func (c *Client) Verify(ctx context.Context, domainName, model string) (out []ColumnReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("verify", domainName, model, start, -1, err) }()

	reports, err := c.searchSvc.Verify(ctx, catalogue.Domain(domainName), model)
	out = make([]ColumnReport, len(reports))
	for i, r := range reports {
		out[i] = ColumnReport{Column: r.Column, Rows: r.Rows, Dim: r.Dim, Err: r.Err}
	}
	if err != nil {
		return out, fmt.Errorf("verify: %w", err)
	}
	return out, nil
}
