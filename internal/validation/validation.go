package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New builds a validator that reports fields by their json names, so error
// maps line up with what the client actually sent.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// EchoValidator adapts validator.Validate to the echo.Validator interface.
type EchoValidator struct {
	validator *validator.Validate
}

// NewEchoValidator wraps v for use as echo's request validator.
func NewEchoValidator(v *validator.Validate) *EchoValidator {
	return &EchoValidator{validator: v}
}

// Validate implements echo.Validator.
func (cv *EchoValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// FieldErrors flattens a validator error into a field→message map. Unknown
// tags fall back to a generic message rather than leaking rule internals.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["body"] = "invalid request body"
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = messageFor(fe)
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("the %s field is required", fe.Field())
	case "eqfield":
		return fmt.Sprintf("the %s field does not match", fe.Field())
	case "min":
		return fmt.Sprintf("the %s field must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("the %s field is invalid", fe.Field())
	}
}
