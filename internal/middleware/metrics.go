package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/service"
)

// Metrics observes every request's method, route, status, and latency.
// Unmatched requests are recorded under their raw path so 404 noise stays
// visible. A nil service turns the middleware into a pass-through.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
