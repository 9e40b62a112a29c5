package attendance

import (
	"cerven-ot/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
	principals middleware.PrincipalLoader,
	logger *zap.Logger,
) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware())
	attendances.Use(middleware.ContextLogger(logger))
	attendances.Use(middleware.LoadPrincipal(principals))
	{
		attendances.GET("", middleware.RateLimitByUser(3, 10), h.GetAll)
		attendances.POST("/clock-in",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			h.ClockIn,
		)
		attendances.POST("/clock-out",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			h.ClockOut,
		)
	}
}
