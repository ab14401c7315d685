package router

import (
	"agentmarket/internal/handler"
	"agentmarket/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ListingRouter struct {
	listingHandler      *handler.ListingHandler
	searchHandler       *handler.SearchHandler
	usageHandler        *handler.UsageHandler
	authMiddleware      *middleware.Auth
	ratelimitMiddleware *middleware.RateLimit
}

func NewListingRouter(
	listingHandler *handler.ListingHandler,
	searchHandler *handler.SearchHandler,
	usageHandler *handler.UsageHandler,
	authMiddleware *middleware.Auth,
	ratelimitMiddleware *middleware.RateLimit,
) *ListingRouter {
	return &ListingRouter{
		listingHandler:      listingHandler,
		searchHandler:       searchHandler,
		usageHandler:        usageHandler,
		authMiddleware:      authMiddleware,
		ratelimitMiddleware: ratelimitMiddleware,
	}
}

func (listingRouter *ListingRouter) RegisterRoutes(engine *gin.Engine) {
	auth := listingRouter.authMiddleware.Handler()

	router := engine.Group("/api/services")
	{
		router.POST("", auth, listingRouter.listingHandler.Create)
		router.GET("/mine", auth, listingRouter.listingHandler.Mine)
		router.GET("/search", listingRouter.ratelimitMiddleware.SearchGuard(), listingRouter.searchHandler.Search)

		router.GET("/:serviceID", listingRouter.listingHandler.Get)
		router.PUT("/:serviceID", auth, listingRouter.listingHandler.Update)
		router.DELETE("/:serviceID", auth, listingRouter.listingHandler.Delete)

		router.POST("/:serviceID/usage", listingRouter.usageHandler.Record)
		router.GET("/:serviceID/usage", auth, listingRouter.usageHandler.List)
	}
}
