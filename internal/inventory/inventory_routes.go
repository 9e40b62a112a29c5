package inventory

import (
	"cerven-ot/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	principals middleware.PrincipalLoader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	stores := r.Group("/stores")
	stores.Use(middleware.AuthMiddleware())
	stores.Use(middleware.ContextLogger(logger))
	stores.Use(middleware.LoadPrincipal(principals))
	{
		stores.POST("",
			middleware.RateLimitByUser(0.5, 3),
			middleware.Idempotency(rdb, logger),
			handler.CreateStore,
		)
		stores.GET("", handler.ListStores)
		stores.GET("/options", handler.StoreOptions)
	}

	items := r.Group("/inventory")
	items.Use(middleware.AuthMiddleware())
	items.Use(middleware.ContextLogger(logger))
	items.Use(middleware.LoadPrincipal(principals))
	{
		items.GET("", handler.ListItems)
		items.GET("/export", middleware.RateLimitByUser(0.2, 2), handler.ExportItems)
		items.POST("/import",
			middleware.RateLimitByUser(0.1, 1),
			middleware.Idempotency(rdb, logger),
			handler.ImportItems,
		)
	}
}
