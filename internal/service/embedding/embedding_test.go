package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"agentmarket/internal/core"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/telemetry"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEmbedder(t *testing.T, opts Options) Embedder {
	t.Helper()
	opts.InitialInterval = time.Millisecond
	opts.MaxInterval = 5 * time.Millisecond
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}
	e, err := New(zap.NewNop(), telemetry.NewNoopTrace(), &telemetry.Metric{}, opts)
	require.NoError(t, err)
	return e
}

func openAIHandler(t *testing.T, vector []float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body openAIRequestBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "get weather by city", body.Input)
		assert.Equal(t, core.DefaultOpenAIEmbeddingModel, body.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "embedding": vector, "index": 0}},
			"model":  body.Model,
		})
	}
}

func TestOpenAIEmbed(t *testing.T) {
	server := httptest.NewServer(openAIHandler(t, []float64{0.5, -0.25, 1}))
	defer server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOpenAI, APIKey: "sk-test", BaseURL: server.URL})
	vector, err := e.Embed(context.Background(), "  get weather by city ")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25, 1}, vector)
	assert.Equal(t, core.DefaultOpenAIEmbeddingModel, e.Model())
}

func TestOllamaEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var body ollamaRequestBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nomic-embed-text", body.Model)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":      body.Model,
			"embeddings": [][]float64{{1, 2, 3}},
		})
	}))
	defer server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOllama, BaseURL: server.URL})
	vector, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vector)
}

func TestEmbedBlankTextSkipsRemoteCall(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOllama, BaseURL: server.URL})
	vector, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, vector)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestEmbedRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float64{{1}}})
		}
	}))
	defer server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOllama, BaseURL: server.URL, MaxRetries: 3})
	vector, err := e.Embed(context.Background(), "retry me")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vector)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEmbedGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOllama, BaseURL: server.URL, MaxRetries: 3})
	_, err := e.Embed(context.Background(), "down")
	require.Error(t, err)

	appErr := cErr.From(err)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.HttpCode())
	assert.Equal(t, cErr.UPSTREAM_UNAVAILABLE, appErr.ErrorCode())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOpenAI, APIKey: "sk-test", BaseURL: server.URL})
	_, err := e.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, cErr.UPSTREAM_UNAVAILABLE, cErr.From(err).ErrorCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEmbedFailureHidesUpstreamBody(t *testing.T) {
	upstreamBody := `{"error":"internal","host":"10.0.3.7","detail":"` + strings.Repeat("x", 2048) + `"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer server.Close()

	observed, logs := observer.New(zap.ErrorLevel)
	e, err := New(zap.New(observed), telemetry.NewNoopTrace(), &telemetry.Metric{}, Options{
		Provider:        core.EmbeddingProviderOpenAI,
		APIKey:          "sk-test",
		BaseURL:         server.URL,
		MaxRetries:      1,
		Timeout:         time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "x")
	require.Error(t, err)
	appErr := cErr.From(err)
	assert.Equal(t, cErr.UPSTREAM_UNAVAILABLE, appErr.ErrorCode())
	assert.Equal(t, "embedding provider unavailable", appErr.ErrorDesc())
	assert.NotContains(t, appErr.Error(), "10.0.3.7")
	assert.NotContains(t, appErr.ErrorDesc(), "10.0.3.7")

	// 細節仍保留在 log
	entries := logs.FilterMessage("embedding failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "500")
}

func TestEmbedEmptyVectorIsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOpenAI, APIKey: "sk-test", BaseURL: server.URL})
	_, err := e.Embed(context.Background(), "x")
	assert.Equal(t, cErr.UPSTREAM_UNAVAILABLE, cErr.From(err).ErrorCode())
}

func TestEmbedUnreachableProvider(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOllama, BaseURL: url, MaxRetries: 2})
	_, err := e.Embed(context.Background(), "x")
	assert.Equal(t, cErr.UPSTREAM_UNAVAILABLE, cErr.From(err).ErrorCode())
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(zap.NewNop(), telemetry.NewNoopTrace(), nil, Options{Provider: "cohere"})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = New(zap.NewNop(), telemetry.NewNoopTrace(), nil, Options{Provider: core.EmbeddingProviderOpenAI})
	assert.Error(t, err, "openai requires an api key")
}

func TestDecodeBody(t *testing.T) {
	plain := []byte(`{"embeddings":[[1,2]]}`)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write(plain)
	require.NoError(t, gw.Close())

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write(plain)
	require.NoError(t, bw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zs := enc.EncodeAll(plain, nil)
	require.NoError(t, enc.Close())

	tests := []struct {
		name     string
		encoding string
		raw      []byte
	}{
		{name: "identity", raw: plain},
		{name: "gzip header", encoding: "gzip", raw: gz.Bytes()},
		{name: "gzip sniffed", raw: gz.Bytes()},
		{name: "brotli", encoding: "br", raw: br.Bytes()},
		{name: "zstd header", encoding: "zstd", raw: zs},
		{name: "zstd sniffed", raw: zs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.encoding != "" {
				h.Set("Content-Encoding", tt.encoding)
			}
			got, err := decodeBody(tt.raw, h)
			require.NoError(t, err)
			assert.Equal(t, plain, got)
		})
	}
}

func TestOpenAICompressedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		_, _ = bw.Write([]byte(`{"data":[{"embedding":[0.1,0.2]}]}`))
		_ = bw.Close()
	}))
	defer server.Close()

	e := newTestEmbedder(t, Options{Provider: core.EmbeddingProviderOpenAI, APIKey: "sk-test", BaseURL: server.URL})
	vector, err := e.Embed(context.Background(), "compressed")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vector)
}
