package handler

import (
	"fmt"
	"strconv"

	"github.com/deppfellow/go-products/internal/errs"
	"github.com/deppfellow/go-products/internal/model"
	"github.com/deppfellow/go-products/internal/repository"
	"github.com/deppfellow/go-products/internal/server"
	"github.com/deppfellow/go-products/internal/service"
	"github.com/deppfellow/go-products/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

type ProductHandler struct {
	Handler
	productService *service.ProductService
}

func NewProductHandler(s *server.Server, productService *service.ProductService) *ProductHandler {
	return &ProductHandler{
		Handler:        NewHandler(s),
		productService: productService,
	}
}

// ---------------------------------------------------------------------------
// Requests. Route rule chains have already checked every field, so binding
// only converts JSON values into Go types.

type GetProductsRequest struct{}

func (r *GetProductsRequest) Bind(echo.Context) error { return nil }

type ProductIDRequest struct {
	ID int64
}

func (r *ProductIDRequest) Bind(c echo.Context) error {
	id, err := bindID(c)
	r.ID = id
	return err
}

type CreateProductRequest struct {
	Name  string  `json:"name" validate:"max=100"`
	Price float64 `json:"price"`
}

func (r *CreateProductRequest) Bind(c echo.Context) error {
	var err error
	if r.Name, err = bodyString(c, "name"); err != nil {
		return err
	}
	r.Price, err = bodyFloat(c, "price")
	return err
}

func (r *CreateProductRequest) Validate() error {
	return validation.Validate.Struct(r)
}

type UpdateProductRequest struct {
	ID           int64    `json:"-"`
	Name         *string  `json:"name" validate:"omitempty,max=100"`
	Price        *float64 `json:"price"`
	Availability *bool    `json:"availability"`
}

func (r *UpdateProductRequest) Bind(c echo.Context) error {
	var err error
	if r.ID, err = bindID(c); err != nil {
		return err
	}

	if _, ok, _ := validation.BodyField(c, "name"); ok {
		name, err := bodyString(c, "name")
		if err != nil {
			return err
		}
		r.Name = &name
	}
	if _, ok, _ := validation.BodyField(c, "price"); ok {
		price, err := bodyFloat(c, "price")
		if err != nil {
			return err
		}
		r.Price = &price
	}
	if _, ok, _ := validation.BodyField(c, "availability"); ok {
		availability, err := bodyBool(c, "availability")
		if err != nil {
			return err
		}
		r.Availability = &availability
	}
	return nil
}

func (r *UpdateProductRequest) Validate() error {
	return validation.Validate.Struct(r)
}

func bindID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errs.ValidationError(fmt.Errorf("id: %w", err))
	}
	return id, nil
}

func bodyString(c echo.Context, field string) (string, error) {
	v, _, err := validation.BodyField(c, field)
	if err != nil {
		return "", err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", errs.ValidationError(fmt.Errorf("%s: %w", field, err))
	}
	return s, nil
}

func bodyFloat(c echo.Context, field string) (float64, error) {
	v, _, err := validation.BodyField(c, field)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, errs.ValidationError(fmt.Errorf("%s: %w", field, err))
	}
	return f, nil
}

func bodyBool(c echo.Context, field string) (bool, error) {
	v, _, err := validation.BodyField(c, field)
	if err != nil {
		return false, err
	}
	// Through the string form so 1 and "1" bind like true.
	b, err := cast.ToBoolE(cast.ToString(v))
	if err != nil {
		return false, errs.ValidationError(fmt.Errorf("%s: %w", field, err))
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Endpoints

// GetProducts godoc
// @Summary List products
// @Description Returns every product, newest first
// @Tags Products
// @Produce json
// @Success 200 {object} handler.DataResponse[[]model.Product]
// @Router /products [get]
func (h *ProductHandler) GetProducts(c echo.Context, _ *GetProductsRequest) ([]model.Product, error) {
	return h.productService.List(c.Request().Context())
}

// GetProductByID godoc
// @Summary Get a product by id
// @Tags Products
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} handler.DataResponse[model.Product]
// @Failure 400 {object} errs.ErrorResponse "Invalid id"
// @Failure 404 {object} errs.ErrorResponse "Producto no Encontrado"
// @Router /products/{id} [get]
func (h *ProductHandler) GetProductByID(c echo.Context, req *ProductIDRequest) (*model.Product, error) {
	return h.productService.Get(c.Request().Context(), req.ID)
}

// CreateProduct godoc
// @Summary Create a product
// @Description New products are always available
// @Tags Products
// @Accept json
// @Produce json
// @Param product body handler.CreateProductRequest true "Product name and price"
// @Success 201 {object} handler.DataResponse[model.Product]
// @Failure 400 {object} errs.ErrorResponse "Validation errors"
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c echo.Context, req *CreateProductRequest) (*model.Product, error) {
	return h.productService.Create(c.Request().Context(), req.Name, req.Price)
}

// UpdateProduct godoc
// @Summary Update a product
// @Description Fields left out of the body keep their stored value
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product id"
// @Param product body handler.UpdateProductRequest true "Product fields"
// @Success 200 {object} handler.DataResponse[model.Product]
// @Failure 400 {object} errs.ErrorResponse "Invalid id or validation errors"
// @Failure 404 {object} errs.ErrorResponse "Producto no Encontrado"
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context, req *UpdateProductRequest) (*model.Product, error) {
	return h.productService.Update(c.Request().Context(), req.ID, repository.ProductUpdate{
		Name:         req.Name,
		Price:        req.Price,
		Availability: req.Availability,
	})
}

// UpdateAvailability godoc
// @Summary Toggle product availability
// @Tags Products
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} handler.DataResponse[model.Product]
// @Failure 400 {object} errs.ErrorResponse "Invalid id"
// @Failure 404 {object} errs.ErrorResponse "Producto no Encontrado"
// @Router /products/{id} [patch]
func (h *ProductHandler) UpdateAvailability(c echo.Context, req *ProductIDRequest) (*model.Product, error) {
	return h.productService.ToggleAvailability(c.Request().Context(), req.ID)
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags Products
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} handler.DataResponse[string]
// @Failure 400 {object} errs.ErrorResponse "Invalid id"
// @Failure 404 {object} errs.ErrorResponse "Producto no Encontrado"
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context, req *ProductIDRequest) (string, error) {
	return h.productService.Delete(c.Request().Context(), req.ID)
}
