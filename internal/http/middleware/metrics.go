// README: Request metrics middleware.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver is implemented by *metrics.Metrics.
type RequestObserver interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

func Metrics(obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
