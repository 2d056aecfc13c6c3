package request

import (
	"strings"

	"github.com/kailas-cloud/anisearch/internal/domain"
)

// MaxDescriptionLength is the maximum accepted description length in bytes.
const MaxDescriptionLength = 8192

// Request is a validated similarity query.
type Request struct {
	model       string
	description string
}

// New validates the query fields and normalizes the description.
func New(model, description string) (Request, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return Request{}, domain.NewValidationError("model is required")
	}
	normalized := Normalize(description)
	if normalized == "" {
		return Request{}, domain.NewValidationError("description is required")
	}
	if len(normalized) > MaxDescriptionLength {
		return Request{}, domain.NewValidationError("description is too long")
	}
	return Request{model: model, description: normalized}, nil
}

// Normalize lowercases and trims a description. The same raw text always yields
// the same normalized text, so a model always encodes it to the same query embedding.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Model returns the requested model id.
func (r *Request) Model() string { return r.model }

// Description returns the normalized description.
func (r *Request) Description() string { return r.description }
