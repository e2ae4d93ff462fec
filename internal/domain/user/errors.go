package user

import "http-user-service/pkg/errs"

// Domain errors are defined once and propagated unchanged through the
// layers; only the HTTP boundary turns them into status codes.
var (
	// ErrNotFound is returned when no user exists for the given ID
	ErrNotFound = errs.NewNotFoundError("user", "user not found")
	// ErrEmailTaken is returned when another user already owns the email
	ErrEmailTaken = errs.NewAlreadyExistsError("user", "user with this email already exists")
	// ErrInvalidID is returned for non-positive user IDs
	ErrInvalidID = errs.NewValidationError("id", "must be a positive integer")
	// ErrInvalidQuery is returned when a search query fails safety validation
	ErrInvalidQuery = errs.NewValidationError("query", "contains invalid characters")
)
