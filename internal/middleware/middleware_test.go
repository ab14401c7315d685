package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/database/client"
	"agentmarket/internal/database/fluentd/repository"
	redisRepo "agentmarket/internal/database/redis/repository"
	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/pkg/response"
	"agentmarket/internal/service"
	"agentmarket/internal/telemetry"
	"agentmarket/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	RequestID   string          `json:"requestID"`
	Code        int             `json:"code"`
	Data        json.RawMessage `json:"data"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// newEngine 依正式順序掛上 recovery 與 response
func newEngine(conf *config.Configuration) *gin.Engine {
	logger := zap.NewNop()
	trace := telemetry.NewNoopTrace()
	metric := telemetry.NewMetric(nil)
	logRepo := repository.NewLogRepository(conf, &client.NoopClient{})

	engine := gin.New()
	engine.Use(
		NewRecovery(logger, trace, metric, conf, logRepo).ErrorHandler(),
		NewLogger(logger, trace, conf, logRepo).LoggerHandler(),
		NewResponse(logger, trace, metric, conf, logRepo).FormatHandler(),
	)
	return engine
}

func TestResponseEnvelope(t *testing.T) {
	engine := newEngine(testutil.Config())
	engine.GET("/ok", func(c *gin.Context) { response.Success(c, gin.H{"hello": "world"}) })
	engine.POST("/created", func(c *gin.Context) { response.Create(c, gin.H{"id": "1"}) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "OK", body.Message)
	assert.JSONEq(t, `{"hello":"world"}`, string(body.Data))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/created", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Create Success", decodeEnvelope(t, w).Description)
}

func TestTraceEntryRequestIDMatchesEnvelope(t *testing.T) {
	conf := testutil.Config()
	engine := gin.New()
	engine.Use(NewTraceEntry(telemetry.NewNoopTrace(), telemetry.NewMetric(nil), conf).Handler())
	inner := newEngine(conf)
	engine.Use(inner.Handlers...)
	engine.GET("/ok", func(c *gin.Context) { response.Success(c, gin.H{}) })
	engine.GET("/missing", func(c *gin.Context) { response.AbortWithError(c, cErr.NotFound("nope")) })

	for _, path := range []string{"/ok", "/missing"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		header := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, header, path)
		assert.Equal(t, header, decodeEnvelope(t, w).RequestID, path)
	}
}

func TestRecoveryRendersAppError(t *testing.T) {
	engine := newEngine(testutil.Config())
	engine.GET("/missing", func(c *gin.Context) { response.AbortWithError(c, cErr.NotFound("listing not found")) })
	engine.GET("/wrapped", func(c *gin.Context) {
		response.AbortWithError(c, errors.Join(errors.New("context"), cErr.Forbidden("nope")))
	})
	engine.GET("/unknown", func(c *gin.Context) { response.AbortWithError(c, errors.New("driver exploded")) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, cErr.NOT_FOUND, body.Code)
	assert.Equal(t, "listing not found", body.Description)
	assert.NotEmpty(t, body.RequestID)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wrapped", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decodeEnvelope(t, w)
	assert.Equal(t, cErr.INTERNAL_ERROR, body.Code)
	assert.NotContains(t, body.Description, "driver exploded")
}

func TestRecoveryHandlesPanic(t *testing.T) {
	engine := newEngine(testutil.Config())
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, cErr.INTERNAL_ERROR, decodeEnvelope(t, w).Code)
}

func TestRedactBody(t *testing.T) {
	out := redactBody("application/json", []byte(`{"email":"a@x.com","password":"hunter2hunter2"}`))
	assert.NotContains(t, string(out), "hunter2")
	assert.Contains(t, string(out), "a@x.com")

	out = redactBody("application/x-www-form-urlencoded", []byte("username=a%40x.com&password=hunter2hunter2"))
	assert.NotContains(t, string(out), "hunter2")
	assert.Contains(t, string(out), "username=a%40x.com")

	plain := []byte(`{"query":"weather"}`)
	assert.Equal(t, plain, redactBody("application/json", plain))
}

func TestAuthHandler(t *testing.T) {
	conf := testutil.Config()
	providers := service.NewProviderService(zap.NewNop(), telemetry.NewNoopTrace(), conf, testutil.NewProviderStore())
	ctx := context.Background()
	_, err := providers.Register(ctx, &dto.RegisterProviderDto{Name: "Acme Labs", Email: "a@x.com", Password: "correct-horse"})
	require.NoError(t, err)
	tokenResp, err := providers.Login(ctx, "a@x.com", "correct-horse")
	require.NoError(t, err)

	engine := newEngine(conf)
	auth := NewAuth(zap.NewNop(), telemetry.NewNoopTrace(), providers)
	engine.GET("/me", auth.Handler(), func(c *gin.Context) {
		response.Success(c, gin.H{"email": c.GetString(core.ContextProviderEmail)})
	})

	tests := []struct {
		name   string
		header string
		status int
		code   int
	}{
		{name: "valid", header: "Bearer " + tokenResp.AccessToken, status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + tokenResp.AccessToken, status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized, code: cErr.UNAUTHORIZED},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: cErr.UNAUTHORIZED},
		{name: "garbage token", header: "Bearer abc.def.ghi", status: http.StatusUnauthorized, code: cErr.INVALID_SESSION},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			body := decodeEnvelope(t, w)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"email":"a@x.com"}`, string(body.Data))
				return
			}
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		})
	}
}

type fakeLimiter struct {
	remaining int
	err       error
	calls     int
	scope     string
}

func (f *fakeLimiter) Consume(_ context.Context, scope, _ string, _ int64, _ int) (int, int64, error) {
	f.calls++
	f.scope = scope
	return f.remaining, 42, f.err
}

func TestRateLimitGuard(t *testing.T) {
	conf := testutil.Config()
	conf.RateLimit.SearchPerMinute = 5

	tests := []struct {
		name    string
		limiter *fakeLimiter
		status  int
	}{
		{name: "allowed", limiter: &fakeLimiter{remaining: 4}, status: http.StatusOK},
		{name: "blocked", limiter: &fakeLimiter{err: redisRepo.ErrRateLimitExceeded}, status: http.StatusTooManyRequests},
		{name: "redis down fails open", limiter: &fakeLimiter{err: errors.New("dial tcp: refused")}, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := &RateLimit{logger: zap.NewNop(), trace: telemetry.NewNoopTrace(), metric: telemetry.NewMetric(nil), config: conf, limiter: tt.limiter}
			engine := newEngine(conf)
			engine.GET("/search", limit.SearchGuard(), func(c *gin.Context) { response.Success(c, gin.H{}) })

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, 1, tt.limiter.calls)
			assert.Equal(t, "search", tt.limiter.scope)
			if tt.status == http.StatusTooManyRequests {
				assert.Equal(t, "42", w.Header().Get("Retry-After"))
				assert.Equal(t, cErr.RATE_LIMIT_EXCEEDED, decodeEnvelope(t, w).Code)
			}
		})
	}
}

func TestRateLimitDisabled(t *testing.T) {
	conf := testutil.Config()
	conf.RateLimit.SearchPerMinute = 0
	limiter := &fakeLimiter{}
	limit := &RateLimit{logger: zap.NewNop(), trace: telemetry.NewNoopTrace(), metric: telemetry.NewMetric(nil), config: conf, limiter: limiter}
	engine := newEngine(conf)
	engine.GET("/search", limit.SearchGuard(), func(c *gin.Context) { response.Success(c, gin.H{}) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, limiter.calls)
}

func TestSafePreviewJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, safePreviewJSON(`{ "a" : 1 }`, 100))
	assert.Equal(t, "plain text", safePreviewJSON("plain text", 100))
	assert.Equal(t, `{"na…`, safePreviewJSON(gin.H{"name": "weather"}, 4))
	assert.Contains(t, safePreviewJSON(func() {}, 100), "marshal error")
}

func TestCorsAllowedOrigins(t *testing.T) {
	conf := testutil.Config()
	conf.App.CorsAllowOrigins = []string{"https://agents.example"}
	engine := gin.New()
	engine.Use(NewCors(telemetry.NewNoopTrace(), conf).CorsHandler())
	engine.GET("/api/services/search", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/services/search", nil)
	req.Header.Set("Origin", "https://agents.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://agents.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/services/search", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
