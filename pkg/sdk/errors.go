package anisearch

import "github.com/kailas-cloud/anisearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation             = domain.ErrValidation
	ErrUnknownModel           = domain.ErrUnknownModel
	ErrUnknownDomain          = domain.ErrUnknownDomain
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrStoreUnavailable       = domain.ErrStoreUnavailable
	ErrCatalogueUnavailable   = domain.ErrCatalogueUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
