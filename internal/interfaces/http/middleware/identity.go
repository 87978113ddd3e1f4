package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/emgea/siscalculo/internal/infrastructure/logger"
)

// ActingUserKey is the gin context key holding the acting user name.
const ActingUserKey = "acting_user"

// defaultUser labels writes performed without an identity header.
const defaultUser = "sistema"

// Identity resolves the acting user from the X-User-Name header the intranet
// gateway injects, and plants it into both the gin and request contexts.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetHeader("X-User-Name")
		if user == "" {
			user = defaultUser
		}
		c.Set(ActingUserKey, user)
		ctx, _ := logger.WithActingUser(c.Request.Context(), logger.FromContext(c.Request.Context()), user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetActingUser returns the acting user planted by Identity.
func GetActingUser(c *gin.Context) string {
	if user := c.GetString(ActingUserKey); user != "" {
		return user
	}
	return defaultUser
}
