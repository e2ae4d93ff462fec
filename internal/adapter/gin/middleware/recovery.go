package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"http-user-service/pkg/errs"
	"http-user-service/pkg/logger"
	"http-user-service/pkg/pipeline"
)

// Recovery converts a handler panic into the standard 500 envelope
// instead of killing the process. Startup wiring is the only place
// this service is allowed to panic.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	mapErr := pipeline.NewErrorMapper(log)
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(c.Request.Context(), log).Error("panic recovered",
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
				if !c.Writer.Written() {
					mapErr(c, errs.NewInternalError("panic recovered", nil))
				} else {
					c.Abort()
				}
			}
		}()
		c.Next()
	}
}
