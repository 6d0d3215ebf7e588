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

// OrderHandler обрабатывает запросы, связанные с заказами.
type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GetOrders обрабатывает GET /api/orders.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.GetUserOrders(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("failed to list orders: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, orders)
}

// GetOrder обрабатывает GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	order, err := h.orderService.GetUserOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return orderError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

// ListAllOrders обрабатывает GET /api/admin/orders?status=.
func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrders(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return orderError(c, err)
	}

	return c.JSON(http.StatusOK, orders)
}

// UpdateStatus обрабатывает PUT /api/admin/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), orderID, req.Status)
	if err != nil {
		return orderError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

func orderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case errors.Is(err, services.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order status")
	default:
		c.Logger().Errorf("order request failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
