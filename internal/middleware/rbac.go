package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
	"github.com/noah-isme/studylab-api/pkg/response"
)

// RequireRoles lets through only actors whose resolved role is listed. Browsers are sent back to
// their dashboard with an error message; API clients get a 403.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			if apiRequest(c) {
				response.Error(c, appErrors.ErrUnauthorized)
				c.Abort()
				return
			}
			redirectToLogin(c)
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		if apiRequest(c) {
			response.Error(c, appErrors.ErrForbidden)
		} else {
			response.AddFlash(c, response.FlashError, "You do not have permission to access that page.")
			response.Redirect(c, "/dashboard")
		}
		c.Abort()
	}
}

// RequireBDM restricts a route to staff and superusers.
func RequireBDM() gin.HandlerFunc {
	return RequireRoles(models.RoleSuperAdmin, models.RoleStaff)
}
