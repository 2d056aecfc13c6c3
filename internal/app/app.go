// Package app wires configuration into the search service graph.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/anisearch/internal/config"
	dbRedis "github.com/kailas-cloud/anisearch/internal/db/redis"
	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/anisearch/internal/repository/catalogue"
	"github.com/kailas-cloud/anisearch/internal/repository/embcache"
	embrepo "github.com/kailas-cloud/anisearch/internal/repository/embedding"
	"github.com/kailas-cloud/anisearch/internal/storage"
	onnxEnc "github.com/kailas-cloud/anisearch/internal/transport/onnx"
	openaiEmb "github.com/kailas-cloud/anisearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/anisearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/anisearch/internal/usecase/health"
	"github.com/kailas-cloud/anisearch/internal/usecase/reclaim"
	searchuc "github.com/kailas-cloud/anisearch/internal/usecase/search"
)

// App is the assembled service graph.
type App struct {
	Objects    storage.ObjectStore
	Catalogues *catalogrepo.Repo
	Store      *embrepo.Store
	Encoders   *embeddinguc.Registry
	Search     *searchuc.Service
	Health     *healthuc.Service
	Reclaimer  *reclaim.Reclaimer // nil when reclaim is disabled

	cfg     config.Config
	logger  *zap.Logger
	closers []func()
}

// Build creates every component described by cfg. Nothing is loaded from storage yet.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Register()

	a := &App{cfg: cfg, logger: logger}

	objects, err := storage.New(ctx, storage.Config{
		Driver: cfg.Storage.Driver,
		Root:   cfg.Storage.Root,
		S3: storage.S3Config{
			Endpoint:  cfg.Storage.S3.Endpoint,
			Region:    cfg.Storage.S3.Region,
			Bucket:    cfg.Storage.S3.Bucket,
			Prefix:    cfg.Storage.S3.Prefix,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			UseSSL:    cfg.Storage.S3.UseSSL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create object store: %w", err)
	}
	a.Objects = objects

	tables := make(map[catalogue.Domain]catalogrepo.Table, len(cfg.Domains))
	for name, dc := range cfg.Domains {
		tables[catalogue.Domain(name)] = catalogrepo.Table{
			Key:         dc.Table,
			TitleColumn: dc.TitleColumn,
			Columns:     dc.Columns,
		}
	}
	a.Catalogues = catalogrepo.New(objects, tables, logger)
	a.Store = embrepo.New(objects, logger)

	var cache *dbRedis.Store
	if cfg.Cache.Enabled {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		a.closers = append(a.closers, cache.Close)

		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := cache.WaitForReady(ctx, timeout); err != nil {
			a.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
	}

	a.Encoders = embeddinguc.NewRegistry()
	for _, name := range cfg.ModelNames() {
		if err := a.registerModel(name, cache); err != nil {
			a.Close()
			return nil, err
		}
	}

	var activity searchuc.ActivityRecorder
	if !cfg.Reclaim.Disabled {
		evictors := append([]domain.Evictor{a.Store}, a.Encoders.Evictors()...)
		a.Reclaimer = reclaim.New(
			evictors,
			time.Duration(cfg.Reclaim.IntervalSec)*time.Second,
			time.Duration(cfg.Reclaim.IdleSec)*time.Second,
			logger,
		)
		activity = a.Reclaimer
	}

	a.Search = searchuc.New(a.Catalogues, a.Encoders, a.Store, activity, cfg.Search.TopK)

	checkers := make(map[string]healthuc.EmbeddingChecker)
	for name, hc := range a.Encoders.Checkers() {
		checkers[name] = hc
	}
	var cachePinger healthuc.Pinger
	if cache != nil {
		cachePinger = cache
	}
	a.Health = healthuc.New(objects, cachePinger, checkers)

	return a, nil
}

// registerModel assembles the decorator chain:
// provider -> breaker (remote only) -> cache -> instrumented -> instruction.
func (a *App) registerModel(name string, cache *dbRedis.Store) error {
	mc := a.cfg.Embedding.Models[name]
	pc := a.cfg.Embedding.Providers[mc.Provider]
	timeout := a.cfg.EmbeddingTimeout()

	var (
		embedder domain.Embedder
		evictor  domain.Evictor
	)
	switch pc.Type {
	case config.ProviderOpenAI:
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			Name:           name,
			APIKey:         pc.APIKey,
			BaseURL:        pc.BaseURL,
			RemoteModel:    mc.RemoteModel,
			Dimensions:     mc.Dimensions,
			SendDimensions: mc.SendDimensions,
			Timeout:        timeout,
			Provider:       mc.Provider,
			Logger:         a.logger,
		})
		embedder = embeddinguc.NewBreakerEmbedder(base, name, embeddinguc.BreakerConfig{
			FailureThreshold: a.cfg.Embedding.Breaker.FailureThreshold,
			Timeout:          time.Duration(a.cfg.Embedding.Breaker.OpenSec) * time.Second,
		}, a.logger)
	case config.ProviderONNX:
		enc, err := onnxEnc.NewEncoder(onnxEnc.Config{
			Name:           name,
			LibraryPath:    pc.LibraryPath,
			ModelPath:      mc.ModelPath,
			TokenizerPath:  mc.TokenizerPath,
			MaxSeqLen:      mc.MaxSeqLen,
			Dimensions:     mc.Dimensions,
			Normalize:      mc.Normalize,
			IntraOpThreads: mc.IntraOpThreads,
			Logger:         a.logger,
		})
		if err != nil {
			return fmt.Errorf("create onnx encoder %s: %w", name, err)
		}
		a.closers = append(a.closers, func() { _ = enc.Close() })
		embedder, evictor = enc, enc
	default:
		return fmt.Errorf("model %s: unsupported provider type %q", name, pc.Type)
	}

	if cache != nil {
		embedder = embcache.New(
			embedder, cache, name, mc.Dimensions, a.cfg.CacheTTL(), metrics.EmbeddingCacheTotal, a.logger,
		)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, mc.Provider, name, timeout, a.logger)

	if mc.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, mc.QueryInstruction)
	}

	cfg := domain.ModelConfig{
		Name:             name,
		Provider:         mc.Provider,
		Dimensions:       mc.Dimensions,
		QueryInstruction: mc.QueryInstruction,
	}
	if err := a.Encoders.Register(cfg, embedder, evictor); err != nil {
		return fmt.Errorf("register model: %w", err)
	}

	a.logger.Info("Encoder registered",
		zap.String("model", name),
		zap.String("provider", mc.Provider),
		zap.String("type", pc.Type),
		zap.Int("dimensions", mc.Dimensions),
		zap.Bool("cached", cache != nil),
	)
	return nil
}

// Preload loads every catalogue and every (domain, model, column) matrix.
func (a *App) Preload(ctx context.Context) error {
	if err := a.Catalogues.LoadAll(ctx); err != nil {
		return fmt.Errorf("preload catalogues: %w", err)
	}

	models := make([]string, 0)
	for _, m := range a.Encoders.Models() {
		models = append(models, m.Name)
	}
	targets := embrepo.Targets(a.Catalogues.Columns(), models)

	start := time.Now()
	if err := a.Store.Preload(ctx, targets, a.cfg.Search.PreloadConcurrency); err != nil {
		return fmt.Errorf("preload embeddings: %w", err)
	}
	matrices, bytes := a.Store.Resident()
	a.logger.Info("Embeddings preloaded",
		zap.Int("matrices", matrices),
		zap.Int64("bytes", bytes),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// VerifyAll checks every configured domain against every model.
func (a *App) VerifyAll(ctx context.Context) error {
	var errs []error
	for _, d := range a.Catalogues.Domains() {
		for _, m := range a.Encoders.Models() {
			if _, err := a.Search.Verify(ctx, d, m.Name); err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", d, m.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases encoder sessions and the cache connection.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
