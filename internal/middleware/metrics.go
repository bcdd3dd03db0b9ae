package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/forum-submission-api/internal/service"
)

// Metrics records one http_request_duration_seconds sample per request, keyed
// by the matched route. Unmatched requests share a single label so scanners
// cannot blow up label cardinality. Paths in skip are not observed.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	ignored := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		ignored[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := ignored[route]; ok {
			return
		}
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
