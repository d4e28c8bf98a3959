package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned on login when email or password is
	// wrong. One sentinel covers both cases so responses never reveal which
	// field failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned when a bearer token cannot be resolved to a
	// user. Unknown, revoked and malformed tokens are indistinguishable.
	ErrInvalidToken = errors.New("invalid or revoked token")
	// ErrEmailTaken is returned when registering with an email that already
	// has a user record.
	ErrEmailTaken = errors.New("email already registered")
)

// ValidationError carries field-level messages for a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError builds a ValidationError from a field→message map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ErrorResponse is the standard failure body.
type ErrorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// MapErrorToHTTP maps service errors to an HTTP status and response body.
func MapErrorToHTTP(err error) (int, ErrorResponse) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Message: ve.Error(),
			Code:    "VALIDATION_FAILED",
			Errors:  ve.Fields,
		}
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{
			Message: ErrInvalidCredentials.Error(),
			Code:    "INVALID_CREDENTIALS",
		}
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{
			Message: ErrInvalidToken.Error(),
			Code:    "INVALID_TOKEN",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Message: "internal server error",
			Code:    "INTERNAL_ERROR",
		}
	}
}
