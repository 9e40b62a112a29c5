package overtime

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
	requests := r.Group("/overtime-requests")
	requests.Use(middleware.AuthMiddleware())
	requests.Use(middleware.ContextLogger(logger))
	requests.Use(middleware.LoadPrincipal(principals))
	{
		requests.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Idempotency(rdb, logger),
			handler.Create,
		)
		requests.GET("", middleware.RateLimitByUser(3, 10), handler.GetAll)
		requests.GET("/:id", middleware.RateLimitByUser(3, 10), handler.GetByID)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.ContextLogger(logger))
	admin.Use(middleware.LoadPrincipal(principals))
	{
		admin.POST("/update-overtime", middleware.RateLimitByUser(1, 5), handler.Review)
	}
}
