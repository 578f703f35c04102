package tracing

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/shared/id"
)

// Middleware creates Gin middleware that assigns the request ID and logs
// the finished request at debug level. A nil logger disables logging.
func Middleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !acceptable(rid) {
			rid = id.NewRequestID().String()
		}

		c.Set(ContextKey, rid)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), rid))
		c.Header(HeaderRequestID, rid)

		start := time.Now()
		c.Next()

		if logger == nil {
			return
		}
		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Debug("Request served", fields...)
	}
}
