package liquidation

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
	liquidations := r.Group("/liquidations")
	liquidations.Use(middleware.AuthMiddleware())
	liquidations.Use(middleware.ContextLogger(logger))
	liquidations.Use(middleware.LoadPrincipal(principals))
	{
		liquidations.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Idempotency(rdb, logger),
			handler.Create,
		)
		liquidations.GET("", handler.GetAll)
		liquidations.GET("/:id", handler.GetByID)
		liquidations.GET("/:id/voucher", middleware.RateLimitByUser(1, 3), handler.Voucher)
		liquidations.POST("/:id/approve", middleware.RateLimitByUser(1, 5), handler.Approve)
		liquidations.POST("/:id/reject", middleware.RateLimitByUser(1, 5), handler.Reject)
	}
}
