package metrics

import (
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// =============================================================================
// Gin Middleware
// =============================================================================

// GinPrometheusMiddleware возвращает Gin middleware,
// который собирает метрики http_requests_total и http_request_duration_seconds
func GinPrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Пропускаем метрики для /metrics и /health endpoints
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()

		HttpRequestsInFlight.WithLabelValues(serviceName).Inc()
		defer HttpRequestsInFlight.WithLabelValues(serviceName).Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := routePath(c)

		HttpRequestsTotal.WithLabelValues(serviceName, c.Request.Method, path, status).Inc()
		HttpRequestDuration.WithLabelValues(serviceName, c.Request.Method, path).Observe(duration)
	}
}

// =============================================================================
// Helpers
// =============================================================================

var objectIDPattern = regexp.MustCompile(`[0-9a-fA-F]{24}`)

// routePath возвращает шаблон маршрута (/api/product/:id) для уменьшения кардинальности.
// Для незарегистрированных путей ObjectID заменяются на :id.
func routePath(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return normalizePath(c.Request.URL.Path)
}

func normalizePath(path string) string {
	path = objectIDPattern.ReplaceAllString(path, ":id")
	if len(path) > 100 {
		path = path[:100]
	}
	return path
}
