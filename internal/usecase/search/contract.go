package search

import (
	"context"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/vector"
)

// CatalogueProvider returns the loaded table of a served domain.
type CatalogueProvider interface {
	Catalogue(ctx context.Context, d catalogue.Domain) (*catalogue.Catalogue, error)
}

// Encoders resolves a request model id to its query encoder.
type Encoders interface {
	Encoder(model string) (domain.Embedder, domain.ModelConfig, error)
}

// MatrixStore yields the embedding matrix of one (domain, model, column) triple.
type MatrixStore interface {
	Matrix(ctx context.Context, d catalogue.Domain, model, column string) (*vector.Matrix, error)
}

// ActivityRecorder is notified on every search.
type ActivityRecorder interface {
	Touch()
}
