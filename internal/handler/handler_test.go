package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agentmarket/config"
	"agentmarket/internal/database/client"
	fluentdRepo "agentmarket/internal/database/fluentd/repository"
	"agentmarket/internal/dto"
	"agentmarket/internal/handler"
	"agentmarket/internal/middleware"
	"agentmarket/internal/router"
	"agentmarket/internal/search"
	"agentmarket/internal/service"
	"agentmarket/internal/telemetry"
	"agentmarket/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	RequestID   string          `json:"requestID"`
	Code        int             `json:"code"`
	Data        json.RawMessage `json:"data"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
}

type server struct {
	conf     *config.Configuration
	engine   *gin.Engine
	embedder *testutil.Embedder
	listings *testutil.ListingStore
	usage    *testutil.UsageStore
	health   *service.HealthService
}

// newServer 以正式 router 與 middleware 組裝，資料層換成記憶體 fake
func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conf := testutil.Config()
	conf.App.Version = "1.2.3"
	logger := zap.NewNop()
	trace := telemetry.NewNoopTrace()
	metric := telemetry.NewMetric(nil)
	logRepo := fluentdRepo.NewLogRepository(conf, &client.NoopClient{})

	s := &server{
		conf:     conf,
		embedder: testutil.NewEmbedder(),
		listings: testutil.NewListingStore(),
		usage:    &testutil.UsageStore{},
		health:   service.NewHealthServiceWithChecks(map[string]service.HealthCheck{"mongodb": func(context.Context) error { return nil }}),
	}
	index := search.NewIndex()
	providerService := service.NewProviderService(logger, trace, conf, testutil.NewProviderStore())
	listingService := service.NewListingService(logger, trace, metric, s.listings, s.embedder, index)
	searchService := service.NewSearchService(logger, trace, metric, conf, s.listings, testutil.NewCache(), s.embedder, index)
	usageService := service.NewUsageService(logger, trace, metric, conf, s.listings, s.usage, &testutil.UsageLogger{})

	auth := middleware.NewAuth(logger, trace, providerService)
	s.engine = router.NewRouter(
		conf,
		logger,
		middleware.NewTraceEntry(trace, metric, conf),
		middleware.NewRecovery(logger, trace, metric, conf, logRepo),
		middleware.NewCors(trace, conf),
		middleware.NewLogger(logger, trace, conf, logRepo),
		middleware.NewResponse(logger, trace, metric, conf, logRepo),
		router.NewOpsRouter(handler.NewInfoHandler(conf), handler.NewHealthHandler(s.health)),
		router.NewProviderRouter(handler.NewProviderHandler(trace, providerService), auth),
		router.NewListingRouter(
			handler.NewListingHandler(trace, listingService),
			handler.NewSearchHandler(trace, searchService),
			handler.NewUsageHandler(trace, usageService),
			auth,
			middleware.NewRateLimit(logger, trace, metric, conf, nil),
		),
	)
	return s
}

func (s *server) do(t *testing.T, method, target, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

// signup 註冊並登入，回傳 access token
func (s *server) signup(t *testing.T, name, email string) string {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/api/providers/register", "", dto.RegisterProviderDto{
		Name: name, Email: email, Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(t, http.MethodPost, "/api/providers/token", "", dto.LoginDto{Email: email, Password: "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var token dto.TokenResponseDto
	require.NoError(t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func (s *server) publish(t *testing.T, token, name, description string) dto.ListingResponseDto {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/services", token, listingBody(name, description))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var listing dto.ListingResponseDto
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	return listing
}

func listingBody(name, description string) map[string]any {
	return map[string]any{
		"name":        name,
		"description": description,
		"categories":  []string{"utilities"},
		"api": map[string]any{
			"endpoint": "https://api.example.com/v1/run",
			"method":   "GET",
		},
	}
}
