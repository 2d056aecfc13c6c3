package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
)

// Provider types.
const (
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
)

// Config holds the anisearch API configuration.
type Config struct {
	HTTP      HTTPConfig              `yaml:"http"`
	RateLimit RateLimitConfig         `yaml:"rate_limit"`
	Auth      AuthConfig              `yaml:"auth"`
	Logging   LoggingConfig           `yaml:"logging"`
	Storage   StorageConfig           `yaml:"storage"`
	Domains   map[string]DomainConfig `yaml:"domains"`
	Search    SearchConfig            `yaml:"search"`
	Embedding EmbeddingConfig         `yaml:"embedding"`
	Cache     CacheConfig             `yaml:"cache"`
	Reclaim   ReclaimConfig           `yaml:"reclaim"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RateLimitConfig limits search requests per client IP.
type RateLimitConfig struct {
	Disabled  bool `yaml:"disabled"`
	Requests  int  `yaml:"requests"`   // default 1
	WindowSec int  `yaml:"window_sec"` // default 1
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// StorageConfig selects where catalogue tables and embedding files live.
type StorageConfig struct {
	Driver string   `yaml:"driver"` // local (default), s3
	Root   string   `yaml:"root"`   // local directory, default "model"
	S3     S3Config `yaml:"s3"`
}

// S3Config holds S3-compatible bucket settings.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// DomainConfig overrides the catalogue table layout of one domain.
// Empty fields keep the built-in layout.
type DomainConfig struct {
	Table       string   `yaml:"table"`
	TitleColumn string   `yaml:"title_column"`
	Columns     []string `yaml:"columns"`
}

// SearchConfig holds ranking and store settings.
type SearchConfig struct {
	TopK               int  `yaml:"top_k"`
	Preload            bool `yaml:"preload"`
	PreloadConcurrency int  `yaml:"preload_concurrency"`
}

// EmbeddingConfig holds query encoder settings.
type EmbeddingConfig struct {
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Models     map[string]ModelConfig    `yaml:"models"`
	TimeoutSec int                       `yaml:"timeout_sec"`
	Breaker    BreakerConfig             `yaml:"breaker"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	Type        string `yaml:"type"` // openai, onnx
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	LibraryPath string `yaml:"library_path"` // onnxruntime shared library
}

// ModelConfig describes one request-selectable model.
type ModelConfig struct {
	Provider         string `yaml:"provider"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`

	// openai
	RemoteModel    string `yaml:"remote_model"`
	SendDimensions bool   `yaml:"send_dimensions"`

	// onnx
	ModelPath      string `yaml:"model_path"`
	TokenizerPath  string `yaml:"tokenizer_path"`
	MaxSeqLen      int    `yaml:"max_seq_len"`
	Normalize      bool   `yaml:"normalize"`
	IntraOpThreads int    `yaml:"intra_op_threads"`
}

// BreakerConfig holds circuit breaker settings for remote encoders.
type BreakerConfig struct {
	FailureThreshold uint32 `yaml:"failure_threshold"`
	OpenSec          int    `yaml:"open_sec"`
}

// CacheConfig holds the Redis query embedding cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ReclaimConfig holds idle memory reclaim settings.
type ReclaimConfig struct {
	Disabled    bool `yaml:"disabled"`
	IntervalSec int  `yaml:"interval_sec"`
	IdleSec     int  `yaml:"idle_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substitutes ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 1
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 1
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.Root == "" {
		c.Storage.Root = "model"
	}
	if c.Storage.S3.Region == "" {
		c.Storage.S3.Region = "us-east-1"
	}
	if len(c.Domains) == 0 {
		c.Domains = map[string]DomainConfig{
			string(catalogue.Anime): {},
			string(catalogue.Manga): {},
		}
	}
	if c.Search.PreloadConcurrency <= 0 {
		c.Search.PreloadConcurrency = 4
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.Breaker.FailureThreshold == 0 {
		c.Embedding.Breaker.FailureThreshold = 5
	}
	if c.Embedding.Breaker.OpenSec <= 0 {
		c.Embedding.Breaker.OpenSec = 30
	}
	for name, m := range c.Embedding.Models {
		if m.MaxSeqLen <= 0 {
			m.MaxSeqLen = 256
		}
		c.Embedding.Models[name] = m
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Reclaim.IntervalSec <= 0 {
		c.Reclaim.IntervalSec = 60
	}
	if c.Reclaim.IdleSec <= 0 {
		c.Reclaim.IdleSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("storage.driver must be \"local\" or \"s3\", got %q", c.Storage.Driver)
	}

	for name := range c.Domains {
		if !catalogue.Domain(name).IsValid() {
			return fmt.Errorf("domains.%s: unsupported domain", name)
		}
	}

	if c.Search.TopK < 0 {
		return fmt.Errorf("search.top_k must not be negative, got %d", c.Search.TopK)
	}

	if err := c.validateEmbedding(); err != nil {
		return err
	}

	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return errors.New("cache.addrs is required when the cache is enabled")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	for name, p := range c.Embedding.Providers {
		switch p.Type {
		case ProviderOpenAI, ProviderONNX:
		default:
			return fmt.Errorf(
				"embedding.providers.%s.type must be \"openai\" or \"onnx\", got %q", name, p.Type,
			)
		}
	}

	if len(c.Embedding.Models) == 0 {
		return errors.New("embedding.models: at least one model is required")
	}
	for _, name := range c.ModelNames() {
		m := c.Embedding.Models[name]
		p, ok := c.Embedding.Providers[m.Provider]
		if !ok {
			return fmt.Errorf("embedding.models.%s: unknown provider %q", name, m.Provider)
		}
		if m.Dimensions <= 0 {
			return fmt.Errorf("embedding.models.%s.dimensions must be positive", name)
		}
		if p.Type == ProviderONNX && (m.ModelPath == "" || m.TokenizerPath == "") {
			return fmt.Errorf("embedding.models.%s: model_path and tokenizer_path are required for onnx", name)
		}
	}
	return nil
}

// ModelNames returns the configured model ids sorted.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Embedding.Models))
	for name := range c.Embedding.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EmbeddingTimeout returns the per-call encoder timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSec) * time.Second
}

// CacheTTL returns the query embedding cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
