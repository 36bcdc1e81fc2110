package errs

import "strings"

// FieldError is one failed validation check on one request field.
//
//	{"type": "field", "value": "", "msg": "Valor no valido", "path": "price", "location": "body"}
//
// Value echoes what the client sent and is omitted when the field was
// absent. An explicit null is reported as Null.
type FieldError struct {
	Type     string `json:"type"`
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Null is the FieldError.Value of a field sent as JSON null.
var Null any = jsonNull{}

type jsonNull struct{}

func (jsonNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// FieldErrorType is the Type of every FieldError produced by validation.
const FieldErrorType = "field"

// Request locations a FieldError can point at.
const (
	LocationBody   = "body"
	LocationParams = "params"
)

// HTTPError is the error type handlers and services return when the
// outcome maps to a specific HTTP status.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`

	// Override marks messages that are safe to show verbatim even for
	// server-side failures.
	Override bool `json:"override"`

	Errors []FieldError `json:"errors"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError, regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
	}
}

// ErrorResponse is the body written for every failed request. Exactly one
// of Error and Errors is set.
type ErrorResponse struct {
	Error  string       `json:"error,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

// NewErrorResponse picks the body shape for e.
func NewErrorResponse(e *HTTPError) ErrorResponse {
	if len(e.Errors) > 0 {
		return ErrorResponse{Errors: e.Errors}
	}
	return ErrorResponse{Error: e.Message}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
