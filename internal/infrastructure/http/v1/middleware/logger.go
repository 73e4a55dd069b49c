package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"trackiq/pkg/logger"
)

// Logger writes one access log entry per request. The level follows the
// status class; probes under /health only log at debug.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []any{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", max(c.Writer.Size(), 0),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, "query", q)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Errorw("request", fields...)
		case status >= 400:
			l.Warnw("request", fields...)
		case strings.HasPrefix(route, "/health"):
			l.Debugw("request", fields...)
		default:
			l.Infow("request", fields...)
		}
	}
}
