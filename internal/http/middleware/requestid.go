// README: Request id middleware; accepts or mints X-Request-ID and stores it on the request context.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"wanderplan/internal/platform/requestid"
)

// maxRequestIDLen caps client-supplied ids before they reach logs.
const maxRequestIDLen = 128

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestid.Header))
		if id == "" || len(id) > maxRequestIDLen {
			id = requestid.New()
		}
		c.Request = c.Request.WithContext(requestid.WithID(c.Request.Context(), id))
		c.Set("request_id", id)
		c.Writer.Header().Set(requestid.Header, id)
		c.Next()
	}
}
