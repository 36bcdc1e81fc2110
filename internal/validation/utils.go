package validation

import (
	"fmt"
	"reflect"

	"github.com/deppfellow/go-products/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Bindable is implemented by request types that build themselves from the
// already validated params and body.
type Bindable interface {
	Bind(c echo.Context) error
}

// Validatable is implemented by request types with struct-level rules
// beyond the route's rule chains.
type Validatable interface {
	Validate() error
}

// BindAndValidate binds payload and, when it is Validatable, checks it.
// Struct violations come back as a 400 with field errors.
func BindAndValidate(c echo.Context, payload Bindable) error {
	if err := payload.Bind(c); err != nil {
		return err
	}

	v, ok := payload.(Validatable)
	if !ok {
		return nil
	}

	if err := v.Validate(); err != nil {
		fieldErrors := extractValidationError(err, payload)
		if len(fieldErrors) == 0 {
			return errs.ValidationError(err)
		}
		return errs.NewValidationError(fieldErrors)
	}

	return nil
}

func extractValidationError(err error, payload any) []errs.FieldError {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, err := range validationErrors {
		var msg string

		switch err.Tag() {
		case "required", "notempty":
			msg = "is required"

		case "min":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "gt":
			msg = fmt.Sprintf("must be greater than %s", err.Param())

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", err.Field(), err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", err.Field(), err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Type:     errs.FieldErrorType,
			Value:    err.Value(),
			Msg:      msg,
			Path:     err.Field(),
			Location: errs.LocationBody,
		})
	}

	return fieldErrors
}
