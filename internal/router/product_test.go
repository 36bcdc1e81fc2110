package router_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/deppfellow/go-products/internal/errs"
	"github.com/deppfellow/go-products/internal/model"
	"github.com/deppfellow/go-products/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productResponse struct {
	Data model.Product `json:"data"`
}

type productsResponse struct {
	Data []model.Product `json:"data"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Errors []errs.FieldError `json:"errors"`
}

func doRequest(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload string
	switch b := body.(type) {
	case nil:
	case string:
		payload = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		payload = string(raw)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createProduct(t *testing.T, e *echo.Echo, name string, price float64) model.Product {
	t.Helper()

	rec := doRequest(t, e, http.MethodPost, "/api/products", map[string]any{"name": name, "price": price})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[productResponse](t, rec).Data
}

func messages(fieldErrors []errs.FieldError) []string {
	out := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, fe.Msg)
	}
	return out
}

func TestCreateProduct(t *testing.T) {
	e, _ := testutil.NewTestRouter(t)

	t.Run("empty body reports every failed check", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", map[string]any{})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		assert.Equal(t, []string{
			"El nombre del producto no puede ir vacio",
			"El precio del producto no puede ir vacio",
			"Valor no valido",
			"El precio debe ser mayor a 0",
		}, messages(resp.Errors))
		assert.Empty(t, resp.Error)

		for _, fe := range resp.Errors {
			assert.Equal(t, "field", fe.Type)
			assert.Equal(t, "body", fe.Location)
			assert.Nil(t, fe.Value)
		}
		assert.Equal(t, "name", resp.Errors[0].Path)
		assert.Equal(t, "price", resp.Errors[1].Path)
	})

	t.Run("zero price fails only the positive check", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", map[string]any{"name": "Monitor - Testing", "price": 0})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "El precio debe ser mayor a 0", resp.Errors[0].Msg)
		assert.Equal(t, float64(0), resp.Errors[0].Value)
	})

	t.Run("non numeric price fails two checks", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", map[string]any{"name": "Monitor - Testing", "price": "Hola"})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		assert.Equal(t, []string{"Valor no valido", "El precio debe ser mayor a 0"}, messages(resp.Errors))
		assert.Equal(t, "Hola", resp.Errors[0].Value)
	})

	t.Run("name longer than the column is rejected", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", map[string]any{"name": strings.Repeat("a", 101), "price": 10})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "name", resp.Errors[0].Path)
	})

	t.Run("explicit null price keeps its value", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", `{"name":"Monitor","price":null}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var raw struct {
			Errors []map[string]any `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		require.Len(t, raw.Errors, 3)
		for _, fe := range raw.Errors {
			value, ok := fe["value"]
			assert.True(t, ok)
			assert.Nil(t, value)
		}
	})

	t.Run("array body reports missing fields", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", `[1]`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Len(t, decode[errorResponse](t, rec).Errors, 4)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", `{"name": `)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "JSON no válido", decode[errorResponse](t, rec).Error)
	})

	t.Run("valid product is stored available", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", map[string]any{"name": "Mouse - Testing", "price": 50})
		require.Equal(t, http.StatusCreated, rec.Code)

		product := decode[productResponse](t, rec).Data
		assert.NotZero(t, product.ID)
		assert.Equal(t, "Mouse - Testing", product.Name)
		assert.Equal(t, 50.0, product.Price)
		assert.True(t, product.Availability)
		assert.False(t, product.CreatedAt.IsZero())
	})

	t.Run("numeric strings are accepted", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPost, "/api/products", map[string]any{"name": "Teclado", "price": "120.5"})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 120.5, decode[productResponse](t, rec).Data.Price)
	})
}

func TestGetProducts(t *testing.T) {
	e, _ := testutil.NewTestRouter(t)

	rec := doRequest(t, e, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	first := createProduct(t, e, "Primero", 10)
	second := createProduct(t, e, "Segundo", 20)

	rec = doRequest(t, e, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode[productsResponse](t, rec).Data
	require.Len(t, products, 2)
	assert.Equal(t, second.ID, products[0].ID)
	assert.Equal(t, first.ID, products[1].ID)
}

func TestGetProductByID(t *testing.T) {
	e, _ := testutil.NewTestRouter(t)
	product := createProduct(t, e, "Audífonos", 300)

	t.Run("invalid id", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodGet, "/api/products/not-valid-url", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "ID no válido", resp.Errors[0].Msg)
		assert.Equal(t, "params", resp.Errors[0].Location)
		assert.Equal(t, "id", resp.Errors[0].Path)
		assert.Equal(t, "not-valid-url", resp.Errors[0].Value)
	})

	t.Run("missing product", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodGet, "/api/products/2000", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Producto no Encontrado", decode[errorResponse](t, rec).Error)
	})

	t.Run("existing product", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodGet, fmt.Sprintf("/api/products/%d", product.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[productResponse](t, rec).Data
		assert.Equal(t, product.ID, got.ID)
		assert.Equal(t, "Audífonos", got.Name)
	})

	t.Run("repeated reads are identical", func(t *testing.T) {
		path := fmt.Sprintf("/api/products/%d", product.ID)

		first := doRequest(t, e, http.MethodGet, path, nil)
		second := doRequest(t, e, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
	})
}

func TestStorageFailure(t *testing.T) {
	e, s := testutil.NewTestRouter(t)
	product := createProduct(t, e, "Audífonos", 300)
	require.NoError(t, s.DB.Close())

	for _, path := range []string{"/api/products", fmt.Sprintf("/api/products/%d", product.ID)} {
		t.Run(path, func(t *testing.T) {
			rec := doRequest(t, e, http.MethodGet, path, nil)
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	e, _ := testutil.NewTestRouter(t)
	product := createProduct(t, e, "Monitor", 300)
	path := fmt.Sprintf("/api/products/%d", product.ID)

	t.Run("empty body", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPut, path, map[string]any{})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		assert.Equal(t, []string{
			"El precio del producto no puede ir vacio",
			"Valor no valido",
			"El precio debe ser mayor a 0",
			"Valor para disponibilidad no válido",
		}, messages(resp.Errors))
	})

	t.Run("invalid id is reported with body errors", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPut, "/api/products/not-valid-url", map[string]any{})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		require.Len(t, resp.Errors, 5)
		assert.Equal(t, "ID no válido", resp.Errors[0].Msg)
	})

	t.Run("zero price", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPut, path, map[string]any{"name": "Monitor", "price": 0, "availability": true})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		require.NotEmpty(t, resp.Errors)
		assert.Equal(t, "El precio debe ser mayor a 0", resp.Errors[0].Msg)
	})

	t.Run("invalid availability", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPut, path, map[string]any{"name": "Monitor", "price": 300, "availability": "hola"})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "Valor para disponibilidad no válido", resp.Errors[0].Msg)
	})

	t.Run("empty name", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPut, path, map[string]any{"name": "", "price": 300, "availability": true})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[errorResponse](t, rec)
		assert.Equal(t, []string{"El nombre del producto no puede ir vacio"}, messages(resp.Errors))
	})

	t.Run("missing product", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPut, "/api/products/2000", map[string]any{"name": "Monitor", "price": 300, "availability": true})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Producto no Encontrado", decode[errorResponse](t, rec).Error)
	})

	t.Run("valid update", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPut, path, map[string]any{"name": "Monitor Curvo", "price": 400, "availability": false})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[productResponse](t, rec).Data
		assert.Equal(t, product.ID, got.ID)
		assert.Equal(t, "Monitor Curvo", got.Name)
		assert.Equal(t, 400.0, got.Price)
		assert.False(t, got.Availability)
	})

	t.Run("omitted name is preserved", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPut, path, map[string]any{"price": 450, "availability": "true"})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[productResponse](t, rec).Data
		assert.Equal(t, "Monitor Curvo", got.Name)
		assert.Equal(t, 450.0, got.Price)
		assert.True(t, got.Availability)
	})
}

func TestUpdateAvailability(t *testing.T) {
	e, _ := testutil.NewTestRouter(t)
	product := createProduct(t, e, "Silla", 80)
	path := fmt.Sprintf("/api/products/%d", product.ID)

	t.Run("invalid id", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPatch, "/api/products/not-valid-url", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ID no válido", decode[errorResponse](t, rec).Errors[0].Msg)
	})

	t.Run("missing product", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPatch, "/api/products/2000", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Producto no Encontrado", decode[errorResponse](t, rec).Error)
	})

	t.Run("toggle twice restores the value", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodPatch, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[productResponse](t, rec).Data.Availability)

		rec = doRequest(t, e, http.MethodPatch, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[productResponse](t, rec).Data.Availability)
	})

	t.Run("concurrent toggles are not lost", func(t *testing.T) {
		const toggles = 10

		var wg sync.WaitGroup
		for i := 0; i < toggles; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodPatch, path, nil)
				rec := httptest.NewRecorder()
				e.ServeHTTP(rec, req)
				assert.Equal(t, http.StatusOK, rec.Code)
			}()
		}
		wg.Wait()

		rec := doRequest(t, e, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[productResponse](t, rec).Data.Availability)
	})
}

func TestDeleteProduct(t *testing.T) {
	e, _ := testutil.NewTestRouter(t)
	product := createProduct(t, e, "Lámpara", 35)
	path := fmt.Sprintf("/api/products/%d", product.ID)

	t.Run("invalid id", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodDelete, "/api/products/not-valid-url", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ID no válido", decode[errorResponse](t, rec).Errors[0].Msg)
	})

	t.Run("missing product", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodDelete, "/api/products/2000", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Producto no Encontrado", decode[errorResponse](t, rec).Error)
	})

	t.Run("existing product", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodDelete, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":"Producto eliminado de la base de datos."}`, rec.Body.String())

		rec = doRequest(t, e, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("second delete", func(t *testing.T) {
		rec := doRequest(t, e, http.MethodDelete, path, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Producto no Encontrado", decode[errorResponse](t, rec).Error)
	})
}
