package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/database/fluentd/model"
	"agentmarket/internal/database/fluentd/repository"
	"agentmarket/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const redacted = "[REDACTED]"

// 不落地的欄位與 header
var (
	sensitiveFields  = []string{"password", "access_token"}
	sensitiveHeaders = map[string]struct{}{"authorization": {}, "cookie": {}}
)

type Logger struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewLogger(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Logger {
	return &Logger{
		logger:            logger,
		trace:             trace,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// LoggerHandler 記錄請求：敏感欄位遮蔽、二進位內容不讀 body，同步送 fluentd
func (m *Logger) LoggerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if isInfraPath(endpoint) {
			c.Next()
			return
		}
		ctx, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanLoggerMiddleware))

		requestTime := time.Now().UTC()
		if t, ok := c.Value("requestDuration").(time.Time); ok {
			requestTime = t
		}
		requestID := requestIDOf(c, span)
		body := readBodyPreview(c)
		headers := headerSnapshot(c.Request.Header)
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}

		m.trace.ApplyTraceAttributes(span, core.LoggerRequestMeta{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			FullPath:   endpoint,
			Query:      c.Request.URL.RawQuery,
			Body:       body,
			Scheme:     c.Request.URL.Scheme,
			Host:       c.Request.Host,
			UserAgent:  c.Request.UserAgent(),
			ContentLen: c.Request.ContentLength,
			Proto:      c.Request.Proto,
			ClientIP:   c.ClientIP(),
			Headers:    headers,
			Params:     params,
		})

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("headers", headers),
			zap.String("requestId", requestID),
			zap.String("spanId", span.SpanContext().SpanID().String()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(params) > 0 {
			fields = append(fields, zap.Any("params", params))
		}
		if body != "" {
			fields = append(fields, zap.String("body", body))
		}
		m.logger.Info("[Request] "+c.Request.Method+" "+routeOf(c), fields...)

		if err := m.fluentdRepository.LogRequest(ctx, model.RequestLog{
			RequestID:   requestID,
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Route:       endpoint,
			ListingID:   c.Param("serviceID"),
			ProjectName: m.config.App.Name,
			RequestTS:   model.Timestamp(requestTime),
			Body:        body,
			IPHash:      hashClientIP(c.ClientIP()),
			UserAgent:   c.Request.UserAgent(),
			Version:     m.config.App.Version,
		}); err != nil {
			m.logger.Warn("forward request log failed", zap.Error(err))
		}
		end(nil)
		c.Next()
	}
}

// readBodyPreview 讀取並回填 body，回傳遮蔽後的預覽
func readBodyPreview(c *gin.Context) string {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if isBinaryContent(mediaType) {
		if c.Request.ContentLength > 0 {
			return fmt.Sprintf("(binary %s, %d bytes)", mediaType, c.Request.ContentLength)
		}
		return fmt.Sprintf("(binary %s)", mediaType)
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return ""
	}
	data, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(data))
	return toSafePreview(redactBody(mediaType, data), tracePreviewLimit)
}

// headerSnapshot 以小寫 key 攤平 header，認證相關一律遮蔽
func headerSnapshot(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		lk := strings.ToLower(k)
		if _, hidden := sensitiveHeaders[lk]; hidden {
			out[lk] = redacted
			continue
		}
		out[lk] = strings.Join(v, ",")
	}
	return out
}

// redactBody 遮蔽登入、註冊請求中的密碼
func redactBody(mediaType string, data []byte) []byte {
	switch {
	case strings.HasPrefix(mediaType, "application/json"):
		var body map[string]any
		if err := json.Unmarshal(data, &body); err != nil {
			return data
		}
		changed := false
		for _, field := range sensitiveFields {
			if _, ok := body[field]; ok {
				body[field] = redacted
				changed = true
			}
		}
		if !changed {
			return data
		}
		out, err := json.Marshal(body)
		if err != nil {
			return data
		}
		return out
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return []byte(redacted)
		}
		for _, field := range sensitiveFields {
			if values.Has(field) {
				values.Set(field, redacted)
			}
		}
		return []byte(values.Encode())
	default:
		return data
	}
}

func hashClientIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// 僅對文字內容做安全預覽：UTF-8 直接截斷；非 UTF-8 以 Base64 表示
func toSafePreview(b []byte, max int) string {
	if len(b) == 0 {
		return ""
	}
	if utf8.Valid(b) {
		if len(b) > max {
			return string(b[:max]) + "…"
		}
		return string(b)
	}
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}

// 是否為二進位內容（不讀 body）
func isBinaryContent(mediaType string) bool {
	return strings.HasPrefix(mediaType, "multipart/") ||
		strings.HasPrefix(mediaType, "image/") ||
		strings.HasPrefix(mediaType, "audio/") ||
		strings.HasPrefix(mediaType, "video/") ||
		mediaType == "application/octet-stream"
}
