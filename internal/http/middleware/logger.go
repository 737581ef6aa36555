package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints one access line per request, including the resolved user id
// when the request passed the auth gate.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		userID := int64(0)
		if p, ok := CurrentPrincipal(c); ok {
			userID = p.UserID
		}

		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d user_id=%d latency_ms=%.3f ip=%s",
			GetRequestID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			userID,
			float64(latency.Microseconds())/1000.0,
			c.ClientIP(),
		)
	}
}
