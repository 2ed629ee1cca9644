package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", adminPasswordHeader, sessionHeader, idempotencyHeader}
	corsExpose  = []string{"Content-Length", sessionHeader}
)

// CORS returns the CORS middleware. A single "*" origin allows any origin
// without credentials.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    corsMethods,
			AllowHeaders:    corsHeaders,
			ExposeHeaders:   corsExpose,
			MaxAge:          12 * time.Hour,
		})
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     corsMethods,
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    corsExpose,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
