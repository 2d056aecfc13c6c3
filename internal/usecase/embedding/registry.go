package embedding

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/anisearch/internal/domain"
)

type entry struct {
	cfg      domain.ModelConfig
	embedder domain.Embedder
}

// Registry maps request model ids to fully decorated encoders.
type Registry struct {
	mu       sync.RWMutex
	models   map[string]entry
	evictors []domain.Evictor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]entry)}
}

// Register adds an encoder under cfg.Name. evictor may be nil for stateless remote encoders.
func (r *Registry) Register(cfg domain.ModelConfig, embedder domain.Embedder, evictor domain.Evictor) error {
	if cfg.Name == "" {
		return fmt.Errorf("register encoder: empty model name")
	}
	if embedder == nil {
		return fmt.Errorf("register encoder %s: nil embedder", cfg.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.models[cfg.Name]; ok {
		return fmt.Errorf("register encoder %s: already registered", cfg.Name)
	}
	r.models[cfg.Name] = entry{cfg: cfg, embedder: embedder}
	if evictor != nil {
		r.evictors = append(r.evictors, evictor)
	}
	return nil
}

// Encoder returns the encoder and its config for a model id.
func (r *Registry) Encoder(model string) (domain.Embedder, domain.ModelConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.models[model]
	if !ok {
		return nil, domain.ModelConfig{}, fmt.Errorf("%w: %q", domain.ErrUnknownModel, model)
	}
	return e.embedder, e.cfg, nil
}

// Models returns the registered model configs sorted by name.
func (r *Registry) Models() []domain.ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ModelConfig, 0, len(r.models))
	for _, e := range r.models {
		out = append(out, e.cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Checkers returns health checkers keyed by model name.
func (r *Registry) Checkers() map[string]domain.HealthChecker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.HealthChecker, len(r.models))
	for name, e := range r.models {
		if hc, ok := e.embedder.(domain.HealthChecker); ok {
			out[name] = hc
		}
	}
	return out
}

// Evictors returns the encoders holding reclaimable memory.
func (r *Registry) Evictors() []domain.Evictor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Evictor(nil), r.evictors...)
}
