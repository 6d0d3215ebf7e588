package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CatalogHandler обрабатывает запросы каталога и корзины.
type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListProducts обрабатывает GET /api/products?category=.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.catalogService.ListProducts(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		c.Logger().Errorf("failed to list products: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct обрабатывает GET /api/products/:id.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	product, err := h.catalogService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct обрабатывает POST /api/admin/products.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req models.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	product, err := h.catalogService.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetCart обрабатывает GET /api/cart.
func (h *CatalogHandler) GetCart(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	items, err := h.catalogService.GetCart(c.Request().Context(), userID)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// AddToCart обрабатывает POST /api/cart/items.
func (h *CatalogHandler) AddToCart(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	items, err := h.catalogService.AddToCart(c.Request().Context(), userID, req)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ClearCart обрабатывает DELETE /api/cart.
func (h *CatalogHandler) ClearCart(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.catalogService.ClearCart(c.Request().Context(), userID); err != nil {
		return catalogError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func catalogError(c echo.Context, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	case errors.Is(err, services.ErrInvalidProduct), errors.Is(err, services.ErrInvalidQuantity):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	default:
		c.Logger().Errorf("catalog request failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
