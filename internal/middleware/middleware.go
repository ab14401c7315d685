package middleware

import (
	"strings"

	"agentmarket/internal/core"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/google/wire"
	"go.opentelemetry.io/otel/trace"
)

var ProviderSet = wire.NewSet(
	NewTraceEntry,
	NewCors,
	NewLogger,
	NewRecovery,
	NewResponse,
	NewAuth,
	NewRateLimit,
)

// 不追蹤、不包裝回應的路徑
func isInfraPath(endpoint string) bool {
	return strings.HasPrefix(endpoint, "/swagger") ||
		strings.HasPrefix(endpoint, "/metrics") ||
		strings.HasPrefix(endpoint, "/version") ||
		strings.HasPrefix(endpoint, "/health") ||
		strings.HasPrefix(endpoint, "/debug/pprof")
}

// routeOf 以註冊的路由樣板作為指標 label，未命中路由時歸為 no_route
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "no_route"
}

// requestIDOf 優先使用 trace entry 產生的 request ID，確保 header 與回應一致
func requestIDOf(c *gin.Context, span trace.Span) string {
	if id := c.GetString(core.ContextRequestID); id != "" {
		return id
	}
	return requestIDFromSpan(span)
}

// requestIDFromSpan 使用 trace ID；span 未取樣或為 noop 時退回 UUIDv7
func requestIDFromSpan(span trace.Span) string {
	if span != nil && span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
