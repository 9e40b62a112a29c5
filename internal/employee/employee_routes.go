package employee

import (
	"cerven-ot/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	principals middleware.PrincipalLoader,
	logger *zap.Logger,
) {
	me := r.Group("/me")
	me.Use(middleware.AuthMiddleware())
	me.Use(middleware.ContextLogger(logger))
	me.Use(middleware.LoadPrincipal(principals))
	{
		me.GET("", middleware.RateLimitByUser(5, 20), handler.Me)
	}

	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	employees.Use(middleware.ContextLogger(logger))
	employees.Use(middleware.LoadPrincipal(principals))
	{
		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "employee", "read"),
			handler.GetAll,
		)

		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "employee", "read"),
			handler.GetById,
		)
	}
}
