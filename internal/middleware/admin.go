package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	adminPasswordHeader = "X-Admin-Password"
	sessionHeader       = "X-Session-ID"
)

// AdminGate rejects requests whose X-Admin-Password header does not match
// password. An empty password disables the check.
func AdminGate(password string) gin.HandlerFunc {
	want := []byte(password)
	return func(c *gin.Context) {
		if len(want) == 0 {
			c.Next()
			return
		}

		got := []byte(c.GetHeader(adminPasswordHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid admin password",
			})
			return
		}
		c.Next()
	}
}
