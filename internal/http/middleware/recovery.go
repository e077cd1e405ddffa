// README: Recovery middleware; a panic becomes a logged 500 with the generic error body.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wanderplan/internal/platform/logger"
	"wanderplan/internal/platform/requestid"
)

func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Error("panic recovered",
						"panic", r,
						"path", c.Request.URL.Path,
						"request_id", requestid.FromContext(c.Request.Context()),
					)
				}
				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			}
		}()
		c.Next()
	}
}
