package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"http-user-service/pkg/errs"
	"http-user-service/pkg/logger"
	"http-user-service/pkg/pipeline"
	"http-user-service/pkg/token"
)

// BearerAuth rejects requests that do not carry a valid bearer token.
// The verified subject is stored in the request context as the user ID
// so request logs and audit entries can attribute the call.
func BearerAuth(tokens *token.Service, log *zap.Logger) gin.HandlerFunc {
	mapErr := pipeline.NewErrorMapper(log)
	return func(c *gin.Context) {
		const prefix = "Bearer "

		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, prefix) {
			mapErr(c, errs.NewUnauthorizedError("missing bearer token"))
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, token.ErrTokenExpired) {
				msg = "token expired"
			}
			mapErr(c, errs.NewUnauthorizedError(msg))
			return
		}

		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.Subject)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
