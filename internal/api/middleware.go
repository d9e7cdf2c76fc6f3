package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request after it is handled. The level follows
// the response status.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
		}
		if errMsg := c.Errors.ByType(gin.ErrorTypePrivate).String(); errMsg != "" {
			attrs = append(attrs, "error", errMsg)
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request handled", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("request handled", attrs...)
		default:
			logger.Info("request handled", attrs...)
		}
	}
}
