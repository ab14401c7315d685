// Package embedding turns listing descriptions and search queries into vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/telemetry"

	"go.uber.org/zap"
)

// Embedder 將文字轉為向量；失敗時回傳 UpstreamUnavailable
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// provider 單次呼叫外部 API，不含重試
type provider interface {
	embedOnce(ctx context.Context, text string) ([]float32, error)
	name() core.EmbeddingProviderName
	model() string
	url() string
}

// Options 建立 Embedder 的參數
type Options struct {
	Provider   core.EmbeddingProviderName
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// 重試間隔，零值使用 1s..10s
	InitialInterval time.Duration
	MaxInterval     time.Duration
	HTTPClient      *http.Client
}

func OptionsFromConfig(conf *config.Configuration) Options {
	return Options{
		Provider:   core.EmbeddingProviderName(strings.ToLower(strings.TrimSpace(conf.Embedding.Provider))),
		APIKey:     conf.Embedding.APIKey,
		BaseURL:    conf.Embedding.BaseURL,
		Model:      conf.Embedding.Model,
		Timeout:    time.Duration(conf.Embedding.TimeoutSeconds) * time.Second,
		MaxRetries: conf.Embedding.MaxRetries,
	}
}

type factory func(opts Options) (provider, error)

var registry = map[core.EmbeddingProviderName]factory{
	core.EmbeddingProviderOpenAI: newOpenAIProvider,
	core.EmbeddingProviderOllama: newOllamaProvider,
}

// ErrUnknownProvider 設定了未支援的 provider
var ErrUnknownProvider = errors.New("unknown embedding provider")

// NewEmbedder 依設定選擇 provider（wire 使用）
func NewEmbedder(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	conf *config.Configuration,
) (Embedder, error) {
	return New(logger, trace, metric, OptionsFromConfig(conf))
}

func New(logger *zap.Logger, trace *telemetry.Trace, metric *telemetry.Metric, opts Options) (Embedder, error) {
	if opts.Provider == "" {
		opts.Provider = core.EmbeddingProviderOpenAI
	}
	build, ok := registry[opts.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = time.Second
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	p, err := build(opts)
	if err != nil {
		return nil, err
	}
	logger.Info("embedding provider ready",
		zap.String("provider", string(p.name())),
		zap.String("model", p.model()),
		zap.Int("maxRetries", opts.MaxRetries),
	)
	return &retryingEmbedder{
		provider: p,
		logger:   logger,
		trace:    trace,
		metric:   metric,
		opts:     opts,
	}, nil
}

// statusError 外部 API 回傳非 2xx
type statusError struct {
	provider   core.EmbeddingProviderName
	statusCode int
	body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s embeddings returned %d: %s", e.provider, e.statusCode, e.body)
}

// retryable 429 與 5xx 可重試，其他 4xx 視為永久失敗
func (e *statusError) retryable() bool {
	return e.statusCode == http.StatusTooManyRequests || e.statusCode >= http.StatusInternalServerError
}

var (
	errNoVector          = errors.New("embedding response contained no vector")
	errMalformedResponse = errors.New("malformed embedding response")
)

func trimBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 3000 {
		return s[:3000] + "..."
	}
	return s
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
