package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/database/fluentd/model"
	"agentmarket/internal/database/fluentd/repository"
	cErr "agentmarket/internal/pkg/error"
	res "agentmarket/internal/pkg/response"
	"agentmarket/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	panicMessageLimit = 8000
	panicStackLimit   = 16000
)

type Recovery struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewRecovery(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Recovery {
	return &Recovery{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// ErrorHandler 統一輸出錯誤回應：panic 與 c.Errors 只在這裡渲染一次
func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()
		if t, ok := c.Value("requestDuration").(time.Time); ok {
			requestTime = t
		}

		// 必須在 c.Next() 之前註冊
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			duration := time.Since(requestTime)
			ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
			requestID := requestIDOf(c, span)

			meta := core.TracePanicMeta{
				Path:       c.Request.URL.Path,
				Method:     c.Request.Method,
				ClientIP:   c.ClientIP(),
				UserAgent:  c.Request.UserAgent(),
				DurationMs: float64(duration.Milliseconds()),
				Message:    toSafePreview([]byte(fmt.Sprint(rec)), panicMessageLimit),
				Stack:      toSafePreview(debug.Stack(), panicStackLimit),
				Status:     http.StatusInternalServerError,
			}
			middleware.trace.ApplyTraceAttributes(span, meta)
			middleware.logger.Error("[PANIC] Recovered",
				zap.String("path", meta.Path),
				zap.String("method", meta.Method),
				zap.String("client_ip", meta.ClientIP),
				zap.Duration("duration", duration),
				zap.String("panic", meta.Message),
				zap.String("stacktrace", meta.Stack),
				zap.String("requestId", requestID),
			)

			middleware.render(ctx, c, span, end, requestID, cErr.InternalServer("unexpected panic"), duration)
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		duration := time.Since(requestTime)
		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
		requestID := requestIDOf(c, span)

		appErr := firstAppError(c.Errors)
		if appErr == nil {
			middleware.logger.Error("[ERROR] unknown",
				zap.String("error", toSafePreview([]byte(c.Errors.String()), panicMessageLimit)),
				zap.Duration("duration", duration),
				zap.String("requestId", requestID),
			)
			// 內部錯誤細節不回給呼叫端
			appErr = cErr.New(http.StatusInternalServerError, cErr.INTERNAL_ERROR, "unknown-error", "unexpected error")
		} else {
			middleware.logger.Warn(appErr.Error(),
				zap.Int("code", appErr.ErrorCode()),
				zap.Int("status", appErr.HttpCode()),
				zap.String("data", appErr.ErrorDesc()),
				zap.Duration("duration", duration),
				zap.String("requestId", requestID),
			)
		}
		middleware.render(ctx, c, span, end, requestID, appErr, duration)
	}
}

func firstAppError(errs []*gin.Error) *cErr.Error {
	var appErr *cErr.Error
	for _, e := range errs {
		if errors.As(e.Err, &appErr) {
			return appErr
		}
	}
	return nil
}

// render 結束 recovery span、輸出錯誤外層，並送 fluentd 與 prometheus
func (middleware *Recovery) render(
	ctx context.Context,
	c *gin.Context,
	span trace.Span,
	end func(error),
	requestID string,
	appErr *cErr.Error,
	duration time.Duration,
) {
	middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
		Code:       appErr.ErrorCode(),
		Message:    appErr.Error(),
		Detail:     appErr.ErrorDesc(),
		Status:     appErr.HttpCode(),
		DurationMs: float64(duration.Milliseconds()),
	})
	end(appErr)

	if !c.Writer.Written() {
		res.Fail(c, requestID, appErr)
	}
	c.Abort()

	route := routeOf(c)
	if err := middleware.fluentdRepository.LogResponse(ctx, model.ResponseLog{
		RequestID:   requestID,
		Route:       route,
		ProviderID:  c.GetString(core.ContextProviderID),
		ProjectName: middleware.config.App.Name,
		Code:        appErr.ErrorCode(),
		StatusCode:  appErr.HttpCode(),
		DurationMs:  float64(duration.Microseconds()) / 1000,
		Error:       appErr.Error(),
		ResponseTS:  model.Timestamp(time.Now()),
		Version:     middleware.config.App.Version,
	}); err != nil {
		middleware.logger.Warn("forward response log failed", zap.Error(err))
	}
	middleware.metric.IncFail(route, appErr.Error())
}
