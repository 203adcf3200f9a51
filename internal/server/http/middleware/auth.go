package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/craftline/fulfillment/internal/pkg/auth"
)

// StaffAuthRequired ensures the request carries a valid staff API key before
// reaching state-mutating endpoints.
func StaffAuthRequired(checker *pkgAuth.StaffKeyChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := extractStaffKey(c)
		if key == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if err := checker.Check(key); err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func extractStaffKey(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
