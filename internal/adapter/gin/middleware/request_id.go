package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"http-user-service/pkg/logger"
)

// RequestIDHeader names the header the request ID is read from and
// echoed on.
const RequestIDHeader = "X-Request-ID"

// RequestID ensures every request carries an ID. An incoming
// X-Request-ID is kept so IDs survive proxy hops, otherwise one is
// generated. The ID travels in the request context, where handlers,
// hooks and the request logger pick it up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(RequestIDHeader, id)

		c.Next()
	}
}
