// Package onnx runs a sentence-transformers model exported to ONNX in-process.
package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/metrics"
)

const (
	provider         = "onnx"
	defaultMaxSeqLen = 256

	inputIDs      = "input_ids"
	attentionMask = "attention_mask"
	tokenTypeIDs  = "token_type_ids"

	// sentenceEmbedding is the pooled output of exports made with sentence-transformers' own exporter.
	sentenceEmbedding = "sentence_embedding"
)

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment initializes the process-wide ONNX Runtime environment.
// The first library path wins; later calls reuse the environment.
func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// Config describes one local model.
type Config struct {
	Name           string // request-facing model id
	LibraryPath    string // onnxruntime shared library
	ModelPath      string
	TokenizerPath  string // HuggingFace tokenizer.json
	MaxSeqLen      int
	Dimensions     int  // expected output width; 0 disables the check
	Normalize      bool // L2-normalize the pooled vector
	IntraOpThreads int
	Logger         *zap.Logger
}

// Encoder is a domain.Embedder backed by ONNX Runtime.
// The session is created on first use and released by Evict; the tokenizer stays resident.
type Encoder struct {
	cfg       Config
	tk        *tokenizer.Tokenizer
	inputs    []string
	output    string
	withTypes bool
	logger    *zap.Logger

	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// NewEncoder loads the tokenizer and inspects the model graph. No session is opened yet.
func NewEncoder(cfg Config) (*Encoder, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, errors.New("onnx model and tokenizer paths are required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = defaultMaxSeqLen
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", cfg.TokenizerPath, err)
	}

	ins, outs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", cfg.ModelPath, err)
	}
	inputs, withTypes, err := selectInputs(ins)
	if err != nil {
		return nil, err
	}
	output, err := selectOutput(outs)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		cfg:       cfg,
		tk:        tk,
		inputs:    inputs,
		output:    output,
		withTypes: withTypes,
		logger:    logger,
	}, nil
}

func selectInputs(infos []ort.InputOutputInfo) ([]string, bool, error) {
	have := make(map[string]bool, len(infos))
	for _, in := range infos {
		have[in.Name] = true
	}
	if !have[inputIDs] || !have[attentionMask] {
		return nil, false, fmt.Errorf("model must accept %s and %s", inputIDs, attentionMask)
	}
	if have[tokenTypeIDs] {
		return []string{inputIDs, attentionMask, tokenTypeIDs}, true, nil
	}
	return []string{inputIDs, attentionMask}, false, nil
}

func selectOutput(infos []ort.InputOutputInfo) (string, error) {
	if len(infos) == 0 {
		return "", errors.New("model has no outputs")
	}
	for _, out := range infos {
		if out.Name == sentenceEmbedding {
			return out.Name, nil
		}
	}
	return infos[0].Name, nil
}

// Embed tokenizes, runs the model and pools the token states into one vector.
func (e *Encoder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		e.fail("tokenize")
		return domain.EmbeddingResult{}, fmt.Errorf("tokenize: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	ids, mask, types := truncate(enc.Ids, enc.AttentionMask, enc.TypeIds, e.cfg.MaxSeqLen)

	start := time.Now()
	vec, err := e.run(ids, mask, types)
	if err != nil {
		e.fail("inference")
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if e.cfg.Normalize {
		normalize(vec)
	}
	if e.cfg.Dimensions > 0 && len(vec) != e.cfg.Dimensions {
		e.fail("dimension_mismatch")
		return domain.EmbeddingResult{}, fmt.Errorf("model %s produced %d dimensions, expected %d: %w",
			e.cfg.Name, len(vec), e.cfg.Dimensions, domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.cfg.Name, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.cfg.Name).Observe(time.Since(start).Seconds())
	metrics.EmbeddingTokensTotal.WithLabelValues(provider, e.cfg.Name, "prompt").Add(float64(len(ids)))

	return domain.EmbeddingResult{Embedding: vec, PromptTokens: len(ids), TotalTokens: len(ids)}, nil
}

func (e *Encoder) fail(errorType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.cfg.Name, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.cfg.Name, errorType).Inc()
}

// run executes one inference. Sessions are not shared between goroutines.
func (e *Encoder) run(ids, mask, types []int) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.sessionLocked()
	if err != nil {
		return nil, err
	}

	feeds := [][]int{ids, mask}
	if e.withTypes {
		feeds = append(feeds, types)
	}

	shape := ort.NewShape(1, int64(len(ids)))
	tensors := make([]ort.Value, 0, len(feeds))
	defer func() {
		for _, t := range tensors {
			_ = t.Destroy()
		}
	}()
	for _, data := range feeds {
		t, err := ort.NewTensor(shape, toInt64(data))
		if err != nil {
			return nil, fmt.Errorf("build input tensor: %w", err)
		}
		tensors = append(tensors, t)
	}

	outputs := []ort.Value{nil}
	if err := session.Run(tensors, outputs); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	defer func() { _ = outputs[0].Destroy() }()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output %s is not a float32 tensor", e.output)
	}
	return pool(out.GetShape(), out.GetData(), mask)
}

func (e *Encoder) sessionLocked() (*ort.DynamicAdvancedSession, error) {
	if e.session != nil {
		return e.session, nil
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer func() { _ = opts.Destroy() }()
	if e.cfg.IntraOpThreads > 0 {
		if err := opts.SetIntraOpNumThreads(e.cfg.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(e.cfg.ModelPath, e.inputs, []string{e.output}, opts)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", e.cfg.ModelPath, err)
	}
	e.session = session
	e.logger.Info("ONNX session opened", zap.String("model", e.cfg.Name), zap.String("output", e.output))
	return session, nil
}

// Evict releases the inference session; the next Embed reopens it.
func (e *Encoder) Evict() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return 0
	}
	if err := e.session.Destroy(); err != nil {
		e.logger.Warn("Failed to destroy ONNX session", zap.String("model", e.cfg.Name), zap.Error(err))
	}
	e.session = nil
	return 1
}

// HealthCheck verifies the model file is still readable.
func (e *Encoder) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(e.cfg.ModelPath); err != nil {
		return fmt.Errorf("model file: %w", err)
	}
	return nil
}

// Close releases the session.
func (e *Encoder) Close() error {
	e.Evict()
	return nil
}
