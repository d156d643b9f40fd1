package logger

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// correlationIDKey marks the context storage slot for the correlation
// identifier.
type correlationIDKey struct{}

// CorrelationIDFromContext returns the correlation identifier stored in
// ctx, or an empty string when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}

	return ""
}

// CorrelationMiddleware stamps every request with a correlation id so a
// request's log records can be tied together.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := uuid.NewString()
		ctx := context.WithValue(c.Request.Context(), correlationIDKey{}, correlationID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Correlation-Id", correlationID)
		c.Next()
	}
}
