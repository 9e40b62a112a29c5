package rbac

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to already carry authentication.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.POST("/enforce", handler.Enforce)
	}
}
