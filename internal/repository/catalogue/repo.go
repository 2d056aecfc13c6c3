// Package catalogue loads the per-domain catalogue tables from object storage.
package catalogue

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/anisearch/internal/domain"
	domcat "github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/storage"
)

// Table describes where a domain's table lives and which columns it serves.
type Table struct {
	Key         string // object key; ".parquet" selects the parquet reader, anything else CSV
	TitleColumn string
	Columns     []string
}

// Repo loads catalogue tables once and keeps them for the process lifetime.
type Repo struct {
	objects storage.ObjectStore
	tables  map[domcat.Domain]Table
	logger  *zap.Logger

	mu     sync.RWMutex
	loaded map[domcat.Domain]*domcat.Catalogue
	loads  singleflight.Group
}

// New creates a catalogue repository serving the given domains.
func New(objects storage.ObjectStore, tables map[domcat.Domain]Table, logger *zap.Logger) *Repo {
	t := make(map[domcat.Domain]Table, len(tables))
	for d, tbl := range tables {
		if tbl.Key == "" {
			tbl.Key = domcat.DefaultTableKey(d)
		}
		if tbl.TitleColumn == "" {
			tbl.TitleColumn = domcat.DefaultTitleColumn
		}
		if len(tbl.Columns) == 0 {
			tbl.Columns = domcat.DefaultSynopsisColumns(d)
		}
		t[d] = tbl
	}
	return &Repo{
		objects: objects,
		tables:  t,
		logger:  logger,
		loaded:  make(map[domcat.Domain]*domcat.Catalogue),
	}
}

// Domains returns the served domains in name order.
func (r *Repo) Domains() []domcat.Domain {
	out := make([]domcat.Domain, 0, len(r.tables))
	for d := range r.tables {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Columns returns the configured synopsis columns of every served domain.
func (r *Repo) Columns() map[domcat.Domain][]string {
	out := make(map[domcat.Domain][]string, len(r.tables))
	for d, t := range r.tables {
		out[d] = append([]string(nil), t.Columns...)
	}
	return out
}

// Catalogue returns the loaded table of d.
func (r *Repo) Catalogue(ctx context.Context, d domcat.Domain) (*domcat.Catalogue, error) {
	tbl, ok := r.tables[d]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDomain, d)
	}

	r.mu.RLock()
	c, ok := r.loaded[d]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	// Waiters share the load; one caller giving up must not fail the others.
	ch := r.loads.DoChan(string(d), func() (any, error) {
		return r.load(context.WithoutCancel(ctx), d, tbl)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s catalogue: %w", d, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err //nolint:wrapcheck // load wraps with the domain
		}
		return res.Val.(*domcat.Catalogue), nil //nolint:forcetypeassert // load returns *Catalogue
	}
}

func (r *Repo) load(ctx context.Context, d domcat.Domain, tbl Table) (*domcat.Catalogue, error) {
	r.mu.RLock()
	c, ok := r.loaded[d]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	start := time.Now()
	data, err := storage.ReadAll(ctx, r.objects, tbl.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCatalogueUnavailable, d, err)
	}

	var b *tableBuilder
	if strings.EqualFold(path.Ext(tbl.Key), ".parquet") {
		b, err = readParquet(bytes.NewReader(data), int64(len(data)), tbl.TitleColumn, tbl.Columns)
	} else {
		b, err = readCSV(bytes.NewReader(data), tbl.TitleColumn, tbl.Columns)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %w", domain.ErrCatalogueUnavailable, d, tbl.Key, err)
	}

	c, err = domcat.New(d, b.titles, tbl.Columns, b.synopses())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogueUnavailable, err)
	}

	r.mu.Lock()
	r.loaded[d] = c
	r.mu.Unlock()

	r.logger.Info("Catalogue loaded",
		zap.String("domain", string(d)),
		zap.String("key", tbl.Key),
		zap.Int("rows", c.Len()),
		zap.Int("columns", len(tbl.Columns)),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}

// LoadAll loads every served domain, stopping at the first failure.
func (r *Repo) LoadAll(ctx context.Context) error {
	for _, d := range r.Domains() {
		if _, err := r.Catalogue(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
