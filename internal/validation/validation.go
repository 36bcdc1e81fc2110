// Package validation declares per-field request rules and collects their
// violations.
//
// Rules are chains of checks on one field of the route params or the JSON
// body. Each chain runs as echo middleware and records one FieldError per
// failing check without stopping the request; HandleInputErrors then
// rejects the request if anything was recorded.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/deppfellow/go-products/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

const (
	errorsKey = "validation.errors"
	bodyKey   = "validation.body"
)

// InvalidJSONMessage is returned when the body is neither a JSON object
// nor an array.
const InvalidJSONMessage = "JSON no válido"

// Validate is shared by rule chains and request structs. It carries the
// int, notempty and boolean checks registered below.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Names struct-level errors by their JSON key.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("int", isInt)
	_ = v.RegisterValidation("notempty", isNotEmpty)
	_ = v.RegisterValidation("boolean", isStrictBoolean)

	return v
}

// isInt accepts base-10 integers, in a string or a whole JSON number.
func isInt(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case string:
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	case float64:
		return v == float64(int64(v))
	case int, int32, int64:
		return true
	default:
		return false
	}
}

// isNotEmpty fails only on an empty string form, so 0 and false pass.
func isNotEmpty(fl validator.FieldLevel) bool {
	s, err := cast.ToStringE(fl.Field().Interface())
	if err != nil {
		// Objects and arrays are never empty strings.
		return true
	}
	return s != ""
}

// isStrictBoolean accepts true, false, "true", "false", "1", "0", 1 and 0.
func isStrictBoolean(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case bool:
		return true
	case string:
		return v == "true" || v == "false" || v == "1" || v == "0"
	case float64:
		return v == 0 || v == 1
	case int:
		return v == 0 || v == 1
	default:
		return false
	}
}

// Positive reports whether value converts to a number greater than zero.
// A missing value converts to zero.
func Positive(value any) bool {
	n, err := cast.ToFloat64E(value)
	if err != nil {
		return false
	}
	return n > 0
}

type check struct {
	tag    string
	custom func(value any) bool
	msg    string
}

// Chain is an ordered list of checks on one request field.
type Chain struct {
	field    string
	location string
	optional bool
	checks   []check
}

// Param starts a chain on a route parameter.
func Param(field string) *Chain {
	return &Chain{field: field, location: errs.LocationParams}
}

// Body starts a chain on a top-level key of the JSON body.
func Body(field string) *Chain {
	return &Chain{field: field, location: errs.LocationBody}
}

// Check adds a validator tag check reported with msg.
func (ch *Chain) Check(tag, msg string) *Chain {
	ch.checks = append(ch.checks, check{tag: tag, msg: msg})
	return ch
}

// Custom adds a predicate check reported with msg.
func (ch *Chain) Custom(fn func(value any) bool, msg string) *Chain {
	ch.checks = append(ch.checks, check{custom: fn, msg: msg})
	return ch
}

// Optional skips the whole chain when the field is absent.
func (ch *Chain) Optional() *Chain {
	ch.optional = true
	return ch
}

// Middleware runs the checks and records a violation for each failure.
// It always calls next.
func (ch *Chain) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value, present, err := ch.value(c)
			if err != nil {
				return err
			}

			if !present && ch.optional {
				return next(c)
			}

			reported := value
			if present && value == nil {
				reported = errs.Null
			}

			for _, chk := range ch.checks {
				if ch.passes(chk, value) {
					continue
				}
				addError(c, errs.FieldError{
					Type:     errs.FieldErrorType,
					Value:    reported,
					Msg:      chk.msg,
					Path:     ch.field,
					Location: ch.location,
				})
			}

			return next(c)
		}
	}
}

func (ch *Chain) passes(chk check, value any) bool {
	if chk.custom != nil {
		return chk.custom(value)
	}
	// A nil value fails every tag.
	return Validate.Var(value, chk.tag) == nil
}

func (ch *Chain) value(c echo.Context) (any, bool, error) {
	if ch.location == errs.LocationParams {
		v := c.Param(ch.field)
		return v, v != "", nil
	}

	body, err := readBody(c)
	if err != nil {
		return nil, false, err
	}
	v, ok := body[ch.field]
	return v, ok, nil
}

// HandleInputErrors rejects the request with every violation recorded so
// far, in recording order. Without violations it calls next untouched.
func HandleInputErrors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if fieldErrors := Errors(c); len(fieldErrors) > 0 {
			return errs.NewValidationError(fieldErrors)
		}
		return next(c)
	}
}

// Errors returns the violations recorded for the request.
func Errors(c echo.Context) []errs.FieldError {
	fieldErrors, _ := c.Get(errorsKey).([]errs.FieldError)
	return fieldErrors
}

func addError(c echo.Context, fieldError errs.FieldError) {
	c.Set(errorsKey, append(Errors(c), fieldError))
}

// BodyField returns a key of the JSON body and whether it was sent.
func BodyField(c echo.Context, field string) (any, bool, error) {
	body, err := readBody(c)
	if err != nil {
		return nil, false, err
	}
	v, ok := body[field]
	return v, ok, nil
}

// readBody decodes the JSON body once per request. The raw bytes are put
// back on the request so later readers still see them.
func readBody(c echo.Context) (map[string]any, error) {
	if body, ok := c.Get(bodyKey).(map[string]any); ok {
		return body, nil
	}

	body := map[string]any{}

	req := c.Request()
	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			// Oversized bodies surface as echo's 413.
			var echoErr *echo.HTTPError
			if errors.As(err, &echoErr) {
				return nil, err
			}
			return nil, errs.NewBadRequestError(InvalidJSONMessage, true, nil, nil)
		}
		req.Body = io.NopCloser(bytes.NewReader(raw))

		if len(bytes.TrimSpace(raw)) > 0 {
			var decoded any
			if err := json.Unmarshal(raw, &decoded); err != nil {
				return nil, errs.NewBadRequestError(InvalidJSONMessage, true, nil, nil)
			}

			// Arrays are valid bodies without named fields; other scalars are not.
			switch v := decoded.(type) {
			case map[string]any:
				body = v
			case []any:
			default:
				return nil, errs.NewBadRequestError(InvalidJSONMessage, true, nil, nil)
			}
		}
	}

	c.Set(bodyKey, body)
	return body, nil
}
