package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns the middleware applying the cross-origin contract every
// response carries: any origin, the standard verbs, Content-Type and
// Authorization headers. Preflight OPTIONS requests are answered directly.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
	})
}

// TriggerKeyAuth enforces the shared-secret `key` query parameter on the
// signals trigger. An empty configured secret rejects every caller.
func TriggerKeyAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := strings.TrimSpace(c.Query("key"))
		if provided == "" || secret == "" || provided != secret {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
