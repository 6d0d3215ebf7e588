package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/payments"
	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// CheckoutHandler обрабатывает оформление заказа и возвраты от платёжного провайдера.
type CheckoutHandler struct {
	checkoutService services.CheckoutService
}

func NewCheckoutHandler(checkoutService services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout обрабатывает POST /api/checkout.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	identity, err := auth.GetIdentityFromContext(c)
	if err != nil {
		return err
	}

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	order, payment, err := h.checkoutService.Checkout(c.Request().Context(), &identity, req.ShippingAddress)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(http.StatusCreated, models.CheckoutResponse{Order: order.ToResponse(), Payment: payment})
}

// RequestPayment обрабатывает POST /api/payments/request.
func (h *CheckoutHandler) RequestPayment(c echo.Context) error {
	identity, err := auth.GetIdentityFromContext(c)
	if err != nil {
		return err
	}

	var req models.RequestPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	payment, err := h.checkoutService.RequestPayment(c.Request().Context(), &identity, req.OrderID)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(http.StatusOK, payment)
}

// PaymentSuccess обрабатывает GET /api/payments/success?orderId&paymentKey&amount.
func (h *CheckoutHandler) PaymentSuccess(c echo.Context) error {
	redirect := models.PaymentRedirect{
		OrderID:    c.QueryParam("orderId"),
		PaymentKey: c.QueryParam("paymentKey"),
		Amount:     c.QueryParam("amount"),
	}
	return h.confirm(c, redirect)
}

// ConfirmPayment обрабатывает POST /api/payments/confirm с теми же полями в теле.
func (h *CheckoutHandler) ConfirmPayment(c echo.Context) error {
	var body struct {
		OrderID    string      `json:"orderId"`
		PaymentKey string      `json:"paymentKey"`
		Amount     json.Number `json:"amount"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	return h.confirm(c, models.PaymentRedirect{
		OrderID:    body.OrderID,
		PaymentKey: body.PaymentKey,
		Amount:     body.Amount.String(),
	})
}

func (h *CheckoutHandler) confirm(c echo.Context, redirect models.PaymentRedirect) error {
	order, err := h.checkoutService.ConfirmPayment(c.Request().Context(), redirect)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(http.StatusOK, models.ConfirmResponse{Success: true, Order: order.ToResponse()})
}

// PaymentFail обрабатывает GET /api/payments/fail?orderId&code&message.
func (h *CheckoutHandler) PaymentFail(c echo.Context) error {
	failure := h.checkoutService.FailPayment(c.Request().Context(), models.FailureRedirect{
		OrderID: c.QueryParam("orderId"),
		Code:    c.QueryParam("code"),
		Message: c.QueryParam("message"),
	})
	return c.JSON(http.StatusOK, failure)
}

// checkoutError переводит ошибки оформления и оплаты в HTTP-ответы.
func checkoutError(c echo.Context, err error) error {
	var perr *services.PaymentError
	if errors.As(err, &perr) {
		return c.JSON(perr.StatusCode, models.PaymentFailure{
			Success: false,
			Code:    perr.Code,
			Message: perr.Message,
		})
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	}

	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.Is(err, services.ErrIncompleteRedirect):
		return echo.NewHTTPError(http.StatusBadRequest, "missing payment information")
	case errors.Is(err, services.ErrAmountMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, "payment amount does not match order")
	case errors.Is(err, services.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case errors.Is(err, services.ErrOrderAlreadyPaid), errors.Is(err, services.ErrPaymentAlreadyAttached):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, payments.ErrMissingSecret):
		c.Logger().Errorf("payments are not configured: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "payment server is not configured")
	default:
		c.Logger().Errorf("checkout request failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
