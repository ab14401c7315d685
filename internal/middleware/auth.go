package middleware

import (
	"agentmarket/internal/core"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/pkg/response"
	"agentmarket/internal/service"
	"agentmarket/internal/telemetry"
	"agentmarket/utils/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Auth struct {
	logger          *zap.Logger
	trace           *telemetry.Trace
	providerService *service.ProviderService
}

func NewAuth(
	logger *zap.Logger,
	trace *telemetry.Trace,
	providerService *service.ProviderService,
) *Auth {
	return &Auth{
		logger:          logger,
		trace:           trace,
		providerService: providerService,
	}
}

// Handler 驗證 Bearer token，成功後把 provider 資訊放進 gin context
func (m *Auth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanAuthMiddleware))
		meta := core.TraceAuthMiddlewareMeta{Where: "header"}

		raw, err := token.BearerFromRequest(c)
		if err != nil {
			meta.Status = "missing_token"
			m.trace.ApplyTraceAttributes(span, meta)
			cause := cErr.Unauthorized("not authenticated")
			c.Header("WWW-Authenticate", "Bearer")
			response.AbortWithError(c, cause)
			end(cause)
			return
		}

		provider, err := m.providerService.Authenticate(ctx, raw)
		if err != nil {
			meta.Status = "invalid_token"
			m.trace.ApplyTraceAttributes(span, meta)
			c.Header("WWW-Authenticate", "Bearer")
			response.AbortWithError(c, err)
			end(err)
			return
		}

		meta.ProviderID = provider.ID
		meta.Status = "success"
		m.trace.ApplyTraceAttributes(span, meta)
		c.Set(core.ContextProviderID, provider.ID)
		c.Set(core.ContextProviderEmail, provider.Email)
		end(nil)
		c.Next()
	}
}
