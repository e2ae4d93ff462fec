package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"http-user-service/pkg/errs"
)

// ErrorResponse is the error body shape shared by every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DecodeError marks a request that could not be turned into its typed
// form. It always maps to a 400 response.
type DecodeError struct {
	Err error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed request: %v", e.Err)
}

// Unwrap returns the wrapped error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error
func (e *DecodeError) HTTPStatus() int {
	return http.StatusBadRequest
}

// Code returns the machine-readable error code
func (e *DecodeError) Code() string {
	return "invalid_request"
}

// EncodeError marks a response that could not be serialized. It carries
// no HTTP status so the mapper treats it as internal.
type EncodeError struct {
	Err error
}

// Error implements the error interface
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode response: %v", e.Err)
}

// Unwrap returns the wrapped error
func (e *EncodeError) Unwrap() error {
	return e.Err
}

// NewErrorMapper builds the default boundary mapper. Errors exposing an
// HTTP status through errs.HTTPStatuser keep their status and code;
// everything else becomes a generic 500 so internal detail never leaks.
func NewErrorMapper(log *zap.Logger) ErrorMapper {
	return func(c *gin.Context, err error) {
		var statuser errs.HTTPStatuser
		if errors.As(err, &statuser) {
			status := statuser.HTTPStatus()
			message := statuser.Error()
			if status >= http.StatusInternalServerError {
				log.Error("request failed", zap.Error(err))
				message = "An internal error occurred"
			}
			c.AbortWithStatusJSON(status, ErrorResponse{
				Error:   statuser.Code(),
				Message: message,
			})
			return
		}

		log.Error("unmapped error", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
