package leave

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
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	leaves.Use(middleware.ContextLogger(logger))
	leaves.Use(middleware.LoadPrincipal(principals))
	{
		leaves.GET("", handler.GetAll)
		leaves.GET("/:id", handler.GetById)
		leaves.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Idempotency(rdb, logger),
			handler.Create,
		)
		leaves.PUT("/:id", handler.Update)
		leaves.POST("/:id/approve", middleware.RateLimitByUser(1, 5), handler.Approve)
		leaves.POST("/:id/reject", middleware.RateLimitByUser(1, 5), handler.Reject)
		leaves.POST("/:id/cancel", handler.Cancel)
	}
}
