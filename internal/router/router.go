package router

import (
	docs "agentmarket/cmd/docs"
	"agentmarket/config"
	"agentmarket/internal/middleware"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/pkg/request"
	"agentmarket/internal/pkg/response"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	NewRouter,
	NewOpsRouter,
	NewProviderRouter,
	NewListingRouter,
)

// 透過依賴注入將 middleware 與各模組路由組起來
func NewRouter(
	config *config.Configuration,
	logger *zap.Logger,
	traceEntry *middleware.TraceEntry,
	recovery *middleware.Recovery,
	cors *middleware.Cors,
	loggerMiddleware *middleware.Logger,
	responseMiddleware *middleware.Response,
	opsRouter *OpsRouter,
	providerRouter *ProviderRouter,
	listingRouter *ListingRouter,
) *gin.Engine {

	switch config.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	if err := request.RegisterValidations(); err != nil {
		logger.Fatal("register validations failed", zap.Error(err))
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	if err := router.SetTrustedProxies(config.App.TrustedProxies); err != nil {
		logger.Fatal("invalid trusted proxies", zap.Error(err))
	}
	router.Use(traceEntry.Handler())
	router.Use(func(c *gin.Context) {
		if v := config.App.Version; v != "" {
			c.Writer.Header().Set("X-App-Version", v)
		}
		c.Next()
	})
	router.Use(loggerMiddleware.LoggerHandler())
	router.Use(cors.CorsHandler())
	router.Use(recovery.ErrorHandler())
	router.Use(responseMiddleware.FormatHandler())

	router.NoRoute(func(c *gin.Context) {
		response.AbortWithError(c, cErr.NotFound("route not found"))
	})
	router.NoMethod(func(c *gin.Context) {
		response.AbortWithError(c, cErr.MethodNotAllowed("method not allowed"))
	})

	opsRouter.RegisterRoutes(router)

	if config.App.SwaggerEnabled {
		router.GET("/swagger/*any", func(c *gin.Context) {
			docs.SwaggerInfo.Host = c.Request.Host
			if config.App.Env == "production" {
				docs.SwaggerInfo.Schemes = []string{"https"}
			}
		}, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	providerRouter.RegisterRoutes(router)
	listingRouter.RegisterRoutes(router)

	if config.App.Env != "production" {
		pprof.Register(router)
	}
	return router
}
