package middleware

import (
	"github.com/elemently/builder-backend/internal/registry"
	"github.com/gin-gonic/gin"
)

// ContentScope seeds a fresh per-request instance table on the request
// context, so repeated content lookups within one request share the same
// instances and never leak across requests.
func ContentScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(registry.WithScope(c.Request.Context()))
		c.Next()
	}
}
