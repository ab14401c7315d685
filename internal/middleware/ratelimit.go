package middleware

import (
	"context"
	"errors"
	"strconv"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/database/redis/repository"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/pkg/response"
	"agentmarket/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type windowLimiter interface {
	Consume(ctx context.Context, scope string, clientIdentifier string, windowSeconds int64, limitCount int) (int, int64, error)
}

type RateLimit struct {
	logger  *zap.Logger
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	config  *config.Configuration
	limiter windowLimiter
}

func NewRateLimit(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	rateLimiterRepository *repository.RateLimiterRepository,
) *RateLimit {
	return &RateLimit{
		logger:  logger,
		trace:   trace,
		metric:  metric,
		config:  config,
		limiter: rateLimiterRepository,
	}
}

// SearchGuard 每個 client IP 每分鐘的搜尋次數限制
func (middleware *RateLimit) SearchGuard() gin.HandlerFunc {
	return middleware.Guard("search", 60, func() int { return middleware.config.RateLimit.SearchPerMinute })
}

// Guard 固定視窗限流；limit <= 0 代表不限制，Redis 失敗時放行
func (middleware *RateLimit) Guard(scope string, windowSeconds int64, limit func() int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitCount := limit()
		if limitCount <= 0 {
			c.Next()
			return
		}
		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRateLimitMiddleware))

		remaining, ttlSec, err := middleware.limiter.Consume(ctx, scope, c.ClientIP(), windowSeconds, limitCount)
		blocked := errors.Is(err, repository.ErrRateLimitExceeded)
		if err != nil && !blocked {
			middleware.logger.Warn("rate limiter unavailable, allowing request",
				zap.String("scope", scope),
				zap.Error(err),
			)
			end(nil)
			c.Next()
			return
		}

		// 寫入回應標頭，方便呼叫端與排錯
		c.Header("X-RateLimit-Limit", strconv.Itoa(limitCount))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if ttlSec > 0 {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(ttlSec, 10))
		}

		middleware.trace.ApplyTraceAttributes(span, core.TraceRateLimitMiddlewareMeta{
			Scope:       scope,
			ConfigLimit: limitCount,
			Remaining:   remaining,
			TTLSeconds:  ttlSec,
			Blocked:     blocked,
		})

		if blocked {
			if ttlSec > 0 {
				c.Header("Retry-After", strconv.FormatInt(ttlSec, 10))
			}
			middleware.metric.IncRateLimited(c.FullPath())
			cause := cErr.RateLimitExceeded("rate limit exceeded")
			response.AbortWithError(c, cause)
			end(cause)
			return
		}
		end(nil)
		c.Next()
	}
}
