package health

import "context"

// Pinger checks reachability of a backing service (object store, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks query encoder availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
