package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/database/fluentd/model"
	"agentmarket/internal/database/fluentd/repository"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/pkg/response"
	"agentmarket/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	tracePreviewLimit   = 2000
	fluentdPreviewLimit = 4000
)

type Response struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewResponse(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Response {
	return &Response{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// FormatHandler 將 handler 透過 c.Set 放入的 data/message 包成統一回應
func (middleware *Response) FormatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isInfraPath(c.FullPath()) {
			c.Next()
			return
		}

		requestTime := time.Now()
		if startTime, ok := c.Get("requestDuration"); ok {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		} else {
			c.Set("requestDuration", requestTime)
		}

		c.Next()

		// 錯誤交給 Recovery；handler 自己寫出的回應不再包裝
		if len(c.Errors) > 0 || c.Writer.Written() {
			return
		}
		statusCode := c.Writer.Status()
		if statusCode >= http.StatusBadRequest {
			response.AbortWithError(c, cErr.MapHttpStatusToError(statusCode, "request error"))
			return
		}

		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanResponseMiddleware))
		defer end(nil)

		data, message := payloadOf(c)
		requestID := requestIDOf(c, span)
		duration := time.Since(requestTime)
		route := routeOf(c)

		middleware.trace.ApplyTraceAttributes(span, core.TraceResponseMeta{
			Path:       c.Request.URL.Path,
			Method:     c.Request.Method,
			Status:     statusCode,
			Message:    message,
			DurationMs: float64(duration.Milliseconds()),
			Data:       safePreviewJSON(data, tracePreviewLimit),
		})
		middleware.logger.Info("[Response] "+message,
			zap.String("route", route),
			zap.String("method", c.Request.Method),
			zap.Int("status", statusCode),
			zap.Duration("duration", duration),
			zap.String("requestId", requestID),
		)
		middleware.forward(ctx, c, model.ResponseLog{
			RequestID:  requestID,
			Route:      route,
			StatusCode: statusCode,
			DurationMs: float64(duration.Microseconds()) / 1000,
			Body:       safePreviewJSON(data, fluentdPreviewLimit),
		})
		middleware.metric.IncSuccess(route, statusCode)

		body, err := json.Marshal(response.Response{
			RequestID:   requestID,
			Code:        0,
			Data:        data,
			Message:     "OK",
			Description: message,
		})
		if err != nil {
			response.AbortWithError(c, cErr.InternalServer("marshal response failed"))
			return
		}
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Writer.WriteHeader(statusCode)
		if _, err := c.Writer.Write(body); err != nil {
			middleware.logger.Warn("write response failed", zap.Error(err))
		}
	}
}

func (middleware *Response) forward(ctx context.Context, c *gin.Context, entry model.ResponseLog) {
	entry.ProviderID = c.GetString(core.ContextProviderID)
	entry.ProjectName = middleware.config.App.Name
	entry.Version = middleware.config.App.Version
	entry.ResponseTS = model.Timestamp(time.Now())
	if err := middleware.fluentdRepository.LogResponse(ctx, entry); err != nil {
		middleware.logger.Warn("forward response log failed", zap.Error(err))
	}
}

// payloadOf 取出 handler 設定的 data 與 message，未設定時給預設值
func payloadOf(c *gin.Context) (any, string) {
	data, _ := c.Get("data")
	if data == nil {
		data = map[string]any{}
	}
	message := "Request Success"
	if msg, ok := c.Get("message"); ok {
		if s, ok := msg.(string); ok && s != "" {
			message = s
		}
	}
	return data, message
}

// safePreviewJSON 序列化後截斷到 limit bytes；字串若本身是 JSON 會先正規化
func safePreviewJSON(data any, limit int) string {
	var out string
	if s, ok := data.(string); ok {
		var js any
		if err := json.Unmarshal([]byte(s), &js); err != nil {
			out = s
		} else {
			b, _ := json.Marshal(js)
			out = string(b)
		}
	} else {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Sprintf("[marshal error: %v]", err)
		}
		out = string(b)
	}
	if len(out) > limit {
		return out[:limit] + "…"
	}
	return out
}
