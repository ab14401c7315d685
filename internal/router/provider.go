package router

import (
	"agentmarket/internal/handler"
	"agentmarket/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ProviderRouter struct {
	providerHandler *handler.ProviderHandler
	authMiddleware  *middleware.Auth
}

func NewProviderRouter(
	providerHandler *handler.ProviderHandler,
	authMiddleware *middleware.Auth,
) *ProviderRouter {
	return &ProviderRouter{
		providerHandler: providerHandler,
		authMiddleware:  authMiddleware,
	}
}

func (providerRouter *ProviderRouter) RegisterRoutes(engine *gin.Engine) {
	router := engine.Group("/api/providers")
	{
		router.POST("/register", providerRouter.providerHandler.Register)
		router.POST("/token", providerRouter.providerHandler.Token)
		router.GET("/me", providerRouter.authMiddleware.Handler(), providerRouter.providerHandler.Me)
	}
}
