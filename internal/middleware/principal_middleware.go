package middleware

import (
	"context"

	"cerven-ot/internal/shared/apperror"
	"cerven-ot/internal/shared/contextutil"
	"cerven-ot/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// PrincipalLoader is satisfied by employee.Service.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, companyID, employeeID, userID string) (contextutil.Principal, error)
}

// LoadPrincipal resolves the caller once per request and stores it in the
// request context. It must run after AuthMiddleware.
func LoadPrincipal(loader PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.GetString("company_id")
		employeeID := c.GetString("employee_id")
		if companyID == "" || employeeID == "" {
			errObj := apperror.ErrUnauthorized
			response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			c.Abort()
			return
		}

		p, err := loader.LoadPrincipal(c.Request.Context(), companyID, employeeID, c.GetString("user_id"))
		if err != nil {
			httpErr := apperror.ToHTTP(err)
			if httpErr.Status == 404 {
				httpErr = apperror.ToHTTP(apperror.ErrUnauthorized)
			}
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		c.Set("role", p.Role)
		c.Set("position", p.Position)
		c.Request = c.Request.WithContext(contextutil.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}
