package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evea/internal/domain"
	"evea/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has one of the roles.
// Mount after RequireAuth.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

// VendorOnly additionally requires the session to carry a vendor id.
func VendorOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !p.IsVendor() {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Vendor account required")
			return
		}
		c.Next()
	}
}
