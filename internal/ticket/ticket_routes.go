package ticket

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
	tickets := r.Group("/tickets")
	tickets.Use(middleware.AuthMiddleware())
	tickets.Use(middleware.ContextLogger(logger))
	tickets.Use(middleware.LoadPrincipal(principals))
	{
		tickets.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.Idempotency(rdb, logger),
			handler.Create,
		)
		tickets.GET("", handler.GetAll)
		tickets.GET("/export", middleware.RateLimitByUser(0.2, 2), handler.Export)
		tickets.GET("/:id", handler.GetByID)
		tickets.PUT("/update", handler.UpdateByBody)
		tickets.PUT("/:id", handler.Update)
		tickets.POST("/import",
			middleware.RateLimitByUser(0.1, 1),
			middleware.Idempotency(rdb, logger),
			handler.Import,
		)
	}
}
