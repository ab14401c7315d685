package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceEntry 每個 API 請求的 root server span，並負責 request ID 與請求層指標
type TraceEntry struct {
	trace  *telemetry.Trace
	metric *telemetry.Metric
	conf   *config.Configuration
}

func NewTraceEntry(trace *telemetry.Trace, metric *telemetry.Metric, conf *config.Configuration) *TraceEntry {
	return &TraceEntry{trace: trace, metric: metric, conf: conf}
}

func (m *TraceEntry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isInfraPath(c.FullPath()) {
			c.Next()
			return
		}
		start := time.Now().UTC()
		if _, exists := c.Get("requestDuration"); !exists {
			c.Set("requestDuration", start)
		}

		// 上游若帶 traceparent 則延續
		parent := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := routeOf(c)
		ctx, span := m.trace.StartSpanForLayer(parent, core.TraceSpanName(c.Request.Method+" "+route),
			trace.WithSpanKind(trace.SpanKindServer))
		c.Request = c.Request.WithContext(ctx)
		c.Set(core.ContextTraceKey, ctx)

		requestID := requestIDFromSpan(span)
		c.Set(core.ContextRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		meta := serverMeta(c, route, m.conf.App.Name)
		meta.SpanTraceID = span.SpanContext().TraceID().String()

		c.Next()

		status := c.Writer.Status()
		meta.HttpStatusCode = status
		m.trace.ApplyTraceAttributes(span, &meta)
		m.metric.ObserveRequest(route, status, time.Since(start))

		var cause error
		if status >= http.StatusBadRequest && len(c.Errors) > 0 {
			cause = c.Errors.Last().Err
		}
		m.trace.EndSpan(span, cause)
	}
}

// serverMeta 依 OTel HTTP server 語意整理 request 面向屬性
func serverMeta(c *gin.Context, route, serverName string) core.TraceHttpServerMeta {
	peerAddr, peerPort := peerOf(c)
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return core.TraceHttpServerMeta{
		ClientAddr:        c.ClientIP(),
		HttpRequestMethod: c.Request.Method,
		HttpRoute:         route,
		UrlPath:           c.Request.URL.Path,
		UrlScheme:         scheme,
		UserAgent:         c.Request.UserAgent(),
		ServerAddress:     serverName,
		NetworkPeerAddr:   peerAddr,
		NetworkPeerPort:   peerPort,
		NetworkProtoVer:   c.Request.Proto,
		SpanKind:          "server",
	}
}

func peerOf(c *gin.Context) (string, int) {
	host, port, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.ClientIP(), 0
	}
	p, _ := strconv.Atoi(port)
	return host, p
}
