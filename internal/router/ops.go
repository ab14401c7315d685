package router

import (
	"agentmarket/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpsRouter 掛載不經過 API 外層包裝的維運路由
type OpsRouter struct {
	infoHandler   *handler.InfoHandler
	healthHandler *handler.HealthHandler
}

func NewOpsRouter(
	infoHandler *handler.InfoHandler,
	healthHandler *handler.HealthHandler,
) *OpsRouter {
	return &OpsRouter{
		infoHandler:   infoHandler,
		healthHandler: healthHandler,
	}
}

func (opsRouter *OpsRouter) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/", opsRouter.infoHandler.Root)
	engine.GET("/version", opsRouter.infoHandler.Version)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/health-check", opsRouter.healthHandler.HealthCheck)

	probes := engine.Group("/health")
	{
		probes.GET("/liveness", opsRouter.healthHandler.Liveness)
		probes.GET("/readiness", opsRouter.healthHandler.Readiness)
	}
}
