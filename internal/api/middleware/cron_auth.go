package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/streamer-hq/pkg/utils"
)

// CronAuth guards the scheduled-job endpoints with a shared bearer secret.
// When no secret is configured the endpoints are open; that is acceptable in
// development only and the server warns about it at startup.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			utils.SendUnauthorized(c, "invalid cron secret")
			c.Abort()
			return
		}
		c.Next()
	}
}
