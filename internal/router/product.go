package router

import (
	"net/http"

	"github.com/deppfellow/go-products/internal/handler"
	"github.com/deppfellow/go-products/internal/validation"
	"github.com/labstack/echo/v4"
)

// Violation messages returned to clients.
const (
	msgInvalidID           = "ID no válido"
	msgNameEmpty           = "El nombre del producto no puede ir vacio"
	msgPriceEmpty          = "El precio del producto no puede ir vacio"
	msgPriceNotNumeric     = "Valor no valido"
	msgPriceNotPositive    = "El precio debe ser mayor a 0"
	msgInvalidAvailability = "Valor para disponibilidad no válido"
)

func idRule() echo.MiddlewareFunc {
	return validation.Param("id").
		Check("int", msgInvalidID).
		Middleware()
}

func nameRule(optional bool) echo.MiddlewareFunc {
	chain := validation.Body("name").Check("notempty", msgNameEmpty)
	if optional {
		chain = chain.Optional()
	}
	return chain.Middleware()
}

func priceRule() echo.MiddlewareFunc {
	return validation.Body("price").
		Check("notempty", msgPriceEmpty).
		Check("numeric", msgPriceNotNumeric).
		Custom(validation.Positive, msgPriceNotPositive).
		Middleware()
}

func availabilityRule() echo.MiddlewareFunc {
	return validation.Body("availability").
		Check("boolean", msgInvalidAvailability).
		Middleware()
}

// registerProductRoutes mounts /products on api. Rule chains run in the
// order listed and HandleInputErrors always runs last.
func registerProductRoutes(api *echo.Group, h *handler.ProductHandler) {
	products := api.Group("/products")

	products.GET("", handler.Handle(h.GetProducts, http.StatusOK))

	products.GET("/:id", handler.Handle(h.GetProductByID, http.StatusOK),
		idRule(),
		validation.HandleInputErrors,
	)

	products.POST("", handler.Handle(h.CreateProduct, http.StatusCreated),
		nameRule(false),
		priceRule(),
		validation.HandleInputErrors,
	)

	products.PUT("/:id", handler.Handle(h.UpdateProduct, http.StatusOK),
		idRule(),
		nameRule(true),
		priceRule(),
		availabilityRule(),
		validation.HandleInputErrors,
	)

	products.PATCH("/:id", handler.Handle(h.UpdateAvailability, http.StatusOK),
		idRule(),
		validation.HandleInputErrors,
	)

	products.DELETE("/:id", handler.Handle(h.DeleteProduct, http.StatusOK),
		idRule(),
		validation.HandleInputErrors,
	)
}
