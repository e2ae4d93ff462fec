package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"http-user-service/pkg/errs"
)

// Validator wraps go-playground struct validation and converts its raw
// errors into a single *errs.ValidationError with human-readable
// per-field messages, so callers never see validator internals.
type Validator struct {
	validate *validator.Validate
}

// New creates a new Validator
func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Struct validates v against its `validate` tags
func (v *Validator) Struct(ctx context.Context, val any) error {
	if err := v.validate.StructCtx(ctx, val); err != nil {
		return format(err)
	}
	return nil
}

// Hook adapts the validator as a typed request pre-hook
func Hook[Req any](v *Validator) func(ctx context.Context, req Req) error {
	return func(ctx context.Context, req Req) error {
		return v.Struct(ctx, req)
	}
}

// format converts validator.ValidationErrors into a human-readable error message.
func format(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs.NewValidationError("", err.Error())
	}
	var messages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return errs.NewValidationError("", strings.Join(messages, ", "))
}
