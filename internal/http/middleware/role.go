// README: Desk role middleware; the caller declares admin or cashier in X-Role.
package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"parkdesk/internal/types"
)

const (
	RoleHeader = "X-Role"
	roleKey    = "desk_role"
)

// Role rejects requests without a known role and stores it for handlers.
func Role() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := types.Role(c.GetHeader(RoleHeader))
		if !role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or unknown role"})
			return
		}
		c.Set(roleKey, role)
		c.Next()
	}
}

// RequireRole must run after Role.
func RequireRole(allowed ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(allowed, CallerRole(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not allowed"})
			return
		}
		c.Next()
	}
}

func CallerRole(c *gin.Context) types.Role {
	v, ok := c.Get(roleKey)
	if !ok {
		return ""
	}
	role, _ := v.(types.Role)
	return role
}
