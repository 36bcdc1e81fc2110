package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/go-products/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runChains sends body through the given chains and returns what the
// request ended with: the collected violations, or nil when next ran.
func runChains(t *testing.T, method, path, body string, chains ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	reached := func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}
	e.Add(method, "/items/:id", reached, append(chains, HandleInputErrors)...)
	e.Add(method, "/items", reached, append(chains, HandleInputErrors)...)

	var handlerErr error
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		handlerErr = err
		_ = c.NoContent(http.StatusTeapot)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec, handlerErr
}

func fieldErrors(t *testing.T, err error) []errs.FieldError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr.Errors
}

func TestChainCollectsEveryFailure(t *testing.T) {
	name := Body("name").Check("notempty", "name empty").Middleware()
	price := Body("price").
		Check("notempty", "price empty").
		Check("numeric", "price numeric").
		Custom(Positive, "price positive").
		Middleware()

	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{name: "empty object", body: `{}`, expected: []string{"name empty", "price empty", "price numeric", "price positive"}},
		{name: "no body", body: ``, expected: []string{"name empty", "price empty", "price numeric", "price positive"}},
		{name: "zero price", body: `{"name":"a","price":0}`, expected: []string{"price positive"}},
		{name: "negative price", body: `{"name":"a","price":-3}`, expected: []string{"price positive"}},
		{name: "text price", body: `{"name":"a","price":"Hola"}`, expected: []string{"price numeric", "price positive"}},
		{name: "empty strings", body: `{"name":"","price":""}`, expected: []string{"name empty", "price empty", "price numeric", "price positive"}},
		{name: "valid", body: `{"name":"a","price":"12.5"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := runChains(t, http.MethodPost, "/items", tt.body, name, price)

			if len(tt.expected) == 0 {
				require.NoError(t, err)
				assert.Equal(t, http.StatusNoContent, rec.Code)
				return
			}

			got := fieldErrors(t, err)
			msgs := make([]string, 0, len(got))
			for _, fe := range got {
				msgs = append(msgs, fe.Msg)
				assert.Equal(t, errs.FieldErrorType, fe.Type)
				assert.Equal(t, errs.LocationBody, fe.Location)
			}
			assert.Equal(t, tt.expected, msgs)
		})
	}
}

func TestOptionalChain(t *testing.T) {
	name := Body("name").Check("notempty", "name empty").Optional().Middleware()

	_, err := runChains(t, http.MethodPut, "/items", `{}`, name)
	require.NoError(t, err)

	_, err = runChains(t, http.MethodPut, "/items", `{"name":""}`, name)
	got := fieldErrors(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "name empty", got[0].Msg)
	assert.Equal(t, "", got[0].Value)
}

func TestParamChain(t *testing.T) {
	id := Param("id").Check("int", "bad id").Middleware()

	tests := []struct {
		path  string
		valid bool
	}{
		{path: "/items/1", valid: true},
		{path: "/items/-4", valid: true},
		{path: "/items/1.5"},
		{path: "/items/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := runChains(t, http.MethodGet, tt.path, "", id)
			if tt.valid {
				require.NoError(t, err)
				return
			}

			got := fieldErrors(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "id", got[0].Path)
			assert.Equal(t, errs.LocationParams, got[0].Location)
		})
	}
}

func TestBooleanCheck(t *testing.T) {
	availability := Body("availability").Check("boolean", "bad availability").Middleware()

	for _, body := range []string{`{"availability":true}`, `{"availability":false}`, `{"availability":"true"}`, `{"availability":"0"}`, `{"availability":1}`} {
		_, err := runChains(t, http.MethodPut, "/items", body, availability)
		assert.NoError(t, err, body)
	}

	for _, body := range []string{`{}`, `{"availability":"hola"}`, `{"availability":2}`, `{"availability":null}`, `{"availability":[]}`} {
		_, err := runChains(t, http.MethodPut, "/items", body, availability)
		assert.Len(t, fieldErrors(t, err), 1, body)
	}
}

func TestNullIsReportedApartFromAbsent(t *testing.T) {
	price := Body("price").Check("numeric", "price numeric").Middleware()

	_, err := runChains(t, http.MethodPost, "/items", `{"price":null}`, price)
	got := fieldErrors(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, errs.Null, got[0].Value)

	_, err = runChains(t, http.MethodPost, "/items", `{}`, price)
	got = fieldErrors(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Value)
}

func TestInvalidJSON(t *testing.T) {
	name := Body("name").Check("notempty", "name empty").Middleware()

	for _, body := range []string{`{"name":`, `"text"`, `null`, `42`} {
		_, err := runChains(t, http.MethodPost, "/items", body, name)

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr, body)
		assert.Equal(t, InvalidJSONMessage, httpErr.Message)
		assert.Empty(t, httpErr.Errors)
	}
}

func TestArrayBodyHasNoFields(t *testing.T) {
	name := Body("name").Check("notempty", "name empty").Middleware()

	_, err := runChains(t, http.MethodPost, "/items", `[1]`, name)
	got := fieldErrors(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "name empty", got[0].Msg)
}

func TestBodyIsRestoredForLaterReaders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Silla"}`))
	c := e.NewContext(req, httptest.NewRecorder())

	v, ok, err := BodyField(c, "name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Silla", v)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&raw))
	assert.Equal(t, "Silla", raw["name"])

	_, ok, err = BodyField(c, "price")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPositive(t *testing.T) {
	assert.True(t, Positive(1.5))
	assert.True(t, Positive("300"))
	assert.False(t, Positive(0))
	assert.False(t, Positive(nil))
	assert.False(t, Positive("Hola"))
	assert.False(t, Positive(-1))
}

type sizedRequest struct {
	Name string `json:"name" validate:"max=3"`
}

func (r *sizedRequest) Bind(echo.Context) error { return nil }

func (r *sizedRequest) Validate() error { return Validate.Struct(r) }

func TestBindAndValidate(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

	require.NoError(t, BindAndValidate(c, &sizedRequest{Name: "abc"}))

	err := BindAndValidate(c, &sizedRequest{Name: "abcd"})
	got := fieldErrors(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "name", got[0].Path)
	assert.Equal(t, "must not exceed 3 characters", got[0].Msg)
}
