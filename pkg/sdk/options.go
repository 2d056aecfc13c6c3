package anisearch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver string // "local" or "s3"
	root   string
	s3     S3Options

	domains map[string]DomainOptions
	models  []modelOptions
	topK    int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// S3Options locates an S3-compatible bucket holding catalogues and embeddings.
type S3Options struct {
	Endpoint  string // empty for AWS
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string // empty uses the default AWS credential chain
	SecretKey string
	UseSSL    bool
}

// DomainOptions overrides the table layout of one domain. Empty fields keep the defaults.
type DomainOptions struct {
	Table       string
	TitleColumn string
	Columns     []string
}

type modelOptions struct {
	name       string
	dimensions int
	embedder   Embedder

	// openai
	baseURL string
	apiKey  string
}

// WithLocalStore reads catalogues and embeddings from a directory.
func WithLocalStore(root string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "local"
		c.root = root
	})
}

// WithS3Store reads catalogues and embeddings from an S3-compatible bucket.
func WithS3Store(o S3Options) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "s3"
		c.s3 = o
	})
}

// WithDomain serves one domain ("anime" or "manga") with the given table layout.
func WithDomain(name string, o DomainOptions) Option {
	return optionFunc(func(c *clientConfig) {
		if c.domains == nil {
			c.domains = make(map[string]DomainOptions)
		}
		c.domains[name] = o
	})
}

// WithDefaultDomains serves anime and manga with the built-in table layouts.
func WithDefaultDomains() Option {
	return optionFunc(func(c *clientConfig) {
		if c.domains == nil {
			c.domains = make(map[string]DomainOptions)
		}
		for _, d := range []string{"anime", "manga"} {
			if _, ok := c.domains[d]; !ok {
				c.domains[d] = DomainOptions{}
			}
		}
	})
}

// WithModel registers a custom encoder under a request-selectable model id.
// dimensions must match the stored embedding width.
func WithModel(name string, dimensions int, e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.models = append(c.models, modelOptions{name: name, dimensions: dimensions, embedder: e})
	})
}

// WithOpenAIModel registers a model served by an OpenAI-compatible embeddings endpoint.
// The model id is sent as the remote model name.
func WithOpenAIModel(name, baseURL, apiKey string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.models = append(c.models, modelOptions{
			name:       name,
			dimensions: dimensions,
			baseURL:    baseURL,
			apiKey:     apiKey,
		})
	})
}

// WithTopK sets the number of results per search. Default: 10.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
