package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/go-products/internal/errs"
	"github.com/deppfellow/go-products/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyRequest struct{}

func (r *emptyRequest) Bind(echo.Context) error { return nil }

func runHandle(t *testing.T, fn HandlerFunc[*emptyRequest, string]) (*httptest.ResponseRecorder, string, error) {
	t.Helper()

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(middleware.LoggerKey, &log)

	err := Handle(fn, http.StatusOK)(c)
	return rec, buf.String(), err
}

func TestHandleWrapsData(t *testing.T) {
	rec, _, err := runHandle(t, func(echo.Context, *emptyRequest) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":"ok"}`, rec.Body.String())
}

func TestHandleLogsClientErrorsAsWarnings(t *testing.T) {
	notFound := errs.NewNotFoundError("Producto no Encontrado", true, nil)

	_, logs, err := runHandle(t, func(echo.Context, *emptyRequest) (string, error) {
		return "", notFound
	})

	assert.Same(t, notFound, err)
	assert.Contains(t, logs, `"level":"warn"`)
	assert.NotContains(t, logs, `"level":"error"`)
}

func TestHandleLogsServerErrorsAsErrors(t *testing.T) {
	_, logs, err := runHandle(t, func(echo.Context, *emptyRequest) (string, error) {
		return "", errors.New("database is down")
	})

	assert.EqualError(t, err, "database is down")
	assert.Contains(t, logs, `"level":"error"`)
}
