package cashadvance

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
	advances := r.Group("/cash-advances")
	advances.Use(middleware.AuthMiddleware())
	advances.Use(middleware.ContextLogger(logger))
	advances.Use(middleware.LoadPrincipal(principals))
	{
		advances.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Idempotency(rdb, logger),
			handler.Create,
		)
		advances.GET("", handler.GetAll)
		advances.GET("/:id", handler.GetByID)
		advances.POST("/:id/approve", middleware.RateLimitByUser(1, 5), handler.Approve)
		advances.POST("/:id/reject", middleware.RateLimitByUser(1, 5), handler.Reject)
	}
}
