package embedding

import (
	"context"
	"errors"
	"strings"
	"time"

	"agentmarket/internal/core"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/telemetry"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// retryingEmbedder 對 provider 加上逾時、指數退避重試與指標
type retryingEmbedder struct {
	provider provider
	logger   *zap.Logger
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	opts     Options
}

func (e *retryingEmbedder) Model() string {
	return e.provider.model()
}

func (e *retryingEmbedder) Embed(ctx context.Context, text string) (_ []float32, returnedError error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []float32{}, nil
	}

	ctx, span, end := e.trace.WithSpan(ctx, "embedding."+string(e.provider.name()))
	defer func() { end(returnedError) }()

	meta := core.TraceEmbeddingMeta{
		Provider:   string(e.provider.name()),
		Model:      e.provider.model(),
		URL:        e.provider.url(),
		InputChars: len(text),
	}

	start := time.Now()
	attempts := 0
	operation := func() ([]float32, error) {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()

		vector, err := e.provider.embedOnce(attemptCtx, text)
		if err == nil {
			return vector, nil
		}
		if !retryable(ctx, err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.opts.InitialInterval
	policy.MaxInterval = e.opts.MaxInterval

	vector, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(e.opts.MaxRetries)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			e.logger.Warn("embedding attempt failed, retrying",
				zap.String("provider", string(e.provider.name())),
				zap.Int("attempt", attempts),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)

	meta.Attempts = attempts
	if err != nil {
		e.trace.ApplyTraceAttributes(span, meta)
		e.metric.ObserveEmbedding(string(e.provider.name()), "error", time.Since(start))
		e.logger.Error("embedding failed",
			zap.String("provider", string(e.provider.name())),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		// 上游錯誤內容只寫 log，不回給呼叫端
		returnedError = cErr.UpstreamUnavailable("embedding provider unavailable")
		return nil, returnedError
	}

	meta.Dimensions = len(vector)
	e.trace.ApplyTraceAttributes(span, meta)
	e.metric.ObserveEmbedding(string(e.provider.name()), "ok", time.Since(start))
	return vector, nil
}

// retryable 網路錯誤、單次逾時、429、5xx 可重試；呼叫端取消不重試
func retryable(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	if errors.Is(err, errNoVector) || errors.Is(err, errMalformedResponse) {
		return false
	}
	// 其餘為傳輸層錯誤（連線失敗、逾時、EOF 等）
	return true
}
