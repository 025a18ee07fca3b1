package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/postboard/metrics"
)

// PageViewRecorder counts successful page renders by route pattern.
func PageViewRecorder() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only record successful page views (2xx) for GET requests.
		if c.Request.Method != http.MethodGet {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		// the pattern ("/post/:id"), not the raw path, keeps label cardinality bounded
		route := c.FullPath()
		if route == "" || route == "/health" || route == "/metrics" || route == "/live" || strings.HasPrefix(route, "/api/") {
			return
		}
		metrics.IncPageView(route)
	}
}
