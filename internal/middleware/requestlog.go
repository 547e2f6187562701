package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
)

type RequestLogMiddleware struct {
	log *logger.Logger
}

func NewRequestLogMiddleware(log *logger.Logger) *RequestLogMiddleware {
	return &RequestLogMiddleware{log: log.With("Middleware", "RequestLogMiddleware")}
}

// LogRequests emits one structured line per request after it completes.
func (rm *RequestLogMiddleware) LogRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rm.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
