package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects encoder usage for a single search request.
// The handler puts a mutable pointer into the context, the search service records
// the query encoding, and the handler turns it into response headers.
type EmbeddingUsage struct {
	Model       string
	TotalTokens int
	Used        bool // true once the query was encoded, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Record stores the model that encoded the query and the tokens it consumed.
func (u *EmbeddingUsage) Record(model string, tokens int) {
	if u != nil {
		u.Model = model
		u.TotalTokens += tokens
		u.Used = true
	}
}
