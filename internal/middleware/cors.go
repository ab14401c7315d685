package middleware

import (
	"net/http"
	"slices"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Cors struct {
	trace  *telemetry.Trace
	config *config.Configuration
}

func NewCors(trace *telemetry.Trace, config *config.Configuration) *Cors {
	return &Cors{trace: trace, config: config}
}

// corsConfig agent 以 Bearer token 呼叫，不需要 cookie，因此不開 AllowCredentials
func (m *Cors) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
	}
	origins := m.config.App.CorsAllowOrigins
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// CorsHandler infra 路徑只套 CORS 不開 span，preflight 仍需要正確回應
func (m *Cors) CorsHandler() gin.HandlerFunc {
	cfg := m.corsConfig()
	corsHandler := cors.New(cfg)

	return func(c *gin.Context) {
		if isInfraPath(c.FullPath()) {
			corsHandler(c)
			return
		}

		_, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanCorsMiddleware))
		defer end(nil)
		m.trace.ApplyTraceAttributes(span, core.TraceCorsMeta{
			Origin:       c.GetHeader("Origin"),
			AllowOrigins: m.config.App.CorsAllowOrigins,
			Preflight:    c.Request.Method == http.MethodOptions,
		})
		corsHandler(c)
	}
}
