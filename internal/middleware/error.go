package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/arogyacare/platform-api/pkg/logger"
)

// ErrorLogger logs errors attached to the context by handlers. The
// response envelope has already been written by the handler; this layer
// only records the wrapped detail that must not reach clients.
func ErrorLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			log.ZL.Error().
				Err(e.Err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("request error")
		}
	}
}
