package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"edpharma/logger"
)

// RequestLogger logs one line per request. Bodies and headers are never logged.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if p, ok := CurrentPrincipal(c); ok {
			kv = append(kv, "user_id", p.ID)
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("Request failed", kv...)
		case c.Writer.Status() >= 400:
			log.Warn("Request rejected", kv...)
		default:
			log.Info("Request handled", kv...)
		}
	}
}
