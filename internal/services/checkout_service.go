package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/events"
	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/payments"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultFailureMessage = "결제에 실패했습니다."

// CheckoutService определяет интерфейс оформления и оплаты заказа.
type CheckoutService interface {
	Checkout(ctx context.Context, user *models.Identity, address models.Address) (*models.Order, *models.PaymentRequest, error)
	RequestPayment(ctx context.Context, user *models.Identity, orderID uuid.UUID) (*models.PaymentRequest, error)
	ConfirmPayment(ctx context.Context, redirect models.PaymentRedirect) (*models.Order, error)
	FailPayment(ctx context.Context, redirect models.FailureRedirect) *models.PaymentFailure
}

// CheckoutOptions параметры оформления: ключ виджета, адреса возврата и тариф доставки.
type CheckoutOptions struct {
	ClientKey             string
	PublicBaseURL         string
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// ShippingFeeFor возвращает стоимость доставки для суммы товаров.
func (o CheckoutOptions) ShippingFeeFor(goodsTotal decimal.Decimal) decimal.Decimal {
	if goodsTotal.GreaterThanOrEqual(o.FreeShippingThreshold) {
		return decimal.Zero
	}
	return o.ShippingFee
}

// CheckoutServiceImpl реализует CheckoutService.
type CheckoutServiceImpl struct {
	orderStorage storage.OrderStorage
	cartStorage  CartStorage
	gateway      payments.Gateway
	metrics      *metrics.PaymentMetrics
	publisher    events.Publisher
	opts         CheckoutOptions
	logger       *log.Logger
}

// NewCheckoutService создаёт сервис оформления заказа.
func NewCheckoutService(
	orderStorage storage.OrderStorage,
	cartStorage CartStorage,
	gateway payments.Gateway,
	m *metrics.PaymentMetrics,
	publisher events.Publisher,
	opts CheckoutOptions,
	logger *log.Logger,
) *CheckoutServiceImpl {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CheckoutServiceImpl{
		orderStorage: orderStorage,
		cartStorage:  cartStorage,
		gateway:      gateway,
		metrics:      m,
		publisher:    publisher,
		opts:         opts,
		logger:       logger,
	}
}

// Checkout проверяет корзину и адрес, создаёт заказ в статусе pending и очищает корзину.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, user *models.Identity, address models.Address) (*models.Order, *models.PaymentRequest, error) {
	if user == nil || user.UserID == uuid.Nil {
		return nil, nil, ErrNotAuthenticated
	}
	if !address.Complete() {
		return nil, nil, &ValidationError{Err: ErrInvalidAddress}
	}

	cart, err := s.cartStorage.GetItems(ctx, user.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get cart items: %w", err)
	}
	if len(cart) == 0 {
		return nil, nil, &ValidationError{Err: ErrEmptyCart}
	}

	items := make([]models.LineItem, 0, len(cart))
	goods := decimal.Zero
	for _, ci := range cart {
		if ci.Quantity < 1 || ci.Size == "" || ci.Color == "" {
			return nil, nil, invalid(ErrInvalidLineItem, "product %s", ci.ProductID)
		}
		li := ci.LineItem()
		goods = goods.Add(li.Subtotal())
		items = append(items, li)
	}

	order, err := models.NewOrder(user.UserID, items, address, s.opts.ShippingFeeFor(goods))
	if err != nil {
		return nil, nil, &ValidationError{Err: ErrEmptyCart}
	}

	if err := s.orderStorage.Create(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("create order: %w", err)
	}

	// Заказ уже записан, поэтому ошибка очистки корзины не отменяет оформление
	if err := s.cartStorage.Clear(ctx, user.UserID); err != nil {
		s.logger.Printf("failed to clear cart for user %s after order %s: %v", user.UserID, order.Number, err)
	}

	s.metrics.OrderCreated()
	s.publish(ctx, events.TypeOrderCreated, order)
	s.logger.Printf("order %s created for user %s, payable %s", order.Number, user.UserID, order.PayableAmount())

	return order, s.paymentRequest(order, user), nil
}

// RequestPayment повторно собирает данные для платёжного виджета по неоплаченному заказу.
func (s *CheckoutServiceImpl) RequestPayment(ctx context.Context, user *models.Identity, orderID uuid.UUID) (*models.PaymentRequest, error) {
	if user == nil || user.UserID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != user.UserID {
		return nil, ErrOrderNotFound
	}
	if order.Paid() {
		return nil, ErrOrderAlreadyPaid
	}

	return s.paymentRequest(order, user), nil
}

// ConfirmPayment обрабатывает успешный возврат от провайдера: сверяет сумму,
// подтверждает платёж у провайдера и один раз записывает данные оплаты в заказ.
func (s *CheckoutServiceImpl) ConfirmPayment(ctx context.Context, redirect models.PaymentRedirect) (*models.Order, error) {
	orderNumber := strings.TrimSpace(redirect.OrderID)
	paymentKey := strings.TrimSpace(redirect.PaymentKey)
	rawAmount := strings.TrimSpace(redirect.Amount)
	if orderNumber == "" || paymentKey == "" || rawAmount == "" {
		s.metrics.Confirmation(metrics.ResultIncomplete)
		return nil, ErrIncompleteRedirect
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		s.metrics.Confirmation(metrics.ResultIncomplete)
		return nil, fmt.Errorf("%w: amount %q", ErrIncompleteRedirect, rawAmount)
	}

	order, err := s.orderStorage.GetByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			s.metrics.Confirmation(metrics.ResultNotFound)
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.Paid() {
		if order.Payment.Key == paymentKey {
			s.metrics.Confirmation(metrics.ResultDuplicate)
			return order, nil
		}
		s.metrics.Confirmation(metrics.ResultDuplicate)
		return nil, ErrPaymentAlreadyAttached
	}

	if !amount.Equal(order.PayableAmount()) {
		s.metrics.Confirmation(metrics.ResultMismatch)
		s.logger.Printf("amount mismatch for order %s: got %s, want %s", order.Number, amount, order.PayableAmount())
		return nil, ErrAmountMismatch
	}

	started := time.Now()
	conf, err := s.gateway.Confirm(ctx, paymentKey, order.Number, amount)
	s.metrics.GatewayCall(time.Since(started))

	method := models.DefaultPaymentMethod
	if err != nil {
		var rejected *payments.RejectedError
		if !errors.As(err, &rejected) || !rejected.AlreadyProcessed() {
			return nil, s.gatewayFailure(order, err)
		}
		// провайдер уже списал деньги по этому ключу, запись в заказ не дошла
		s.logger.Printf("payment %s already processed by provider for order %s, attaching", paymentKey, order.Number)
	} else if conf.Method != "" {
		method = conf.Method
	}

	// деньги уже списаны: запись не должна зависеть от отмены запроса
	return s.attachPayment(context.WithoutCancel(ctx), order, paymentKey, method)
}

func (s *CheckoutServiceImpl) attachPayment(ctx context.Context, order *models.Order, paymentKey, method string) (*models.Order, error) {
	if err := s.orderStorage.SetPaymentInfo(ctx, order.ID, paymentKey, method); err != nil {
		if errors.Is(err, storage.ErrPaymentAlreadyAttached) {
			s.metrics.Confirmation(metrics.ResultDuplicate)
			return nil, ErrPaymentAlreadyAttached
		}
		s.metrics.Confirmation(metrics.ResultError)
		return nil, fmt.Errorf("set payment info: %w", err)
	}

	paid, err := s.orderStorage.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	s.metrics.Confirmation(metrics.ResultConfirmed)
	s.publish(ctx, events.TypeOrderPaid, paid)
	s.logger.Printf("payment %s confirmed for order %s via %s", paymentKey, paid.Number, method)

	return paid, nil
}

// FailPayment переводит неуспешный возврат от провайдера в ответ клиенту. Заказ не меняется.
func (s *CheckoutServiceImpl) FailPayment(_ context.Context, redirect models.FailureRedirect) *models.PaymentFailure {
	s.metrics.Confirmation(metrics.ResultFailed)

	message := strings.TrimSpace(redirect.Message)
	if message == "" {
		message = defaultFailureMessage
	}
	s.logger.Printf("payment failed for order %s: %s %s", redirect.OrderID, redirect.Code, message)

	return &models.PaymentFailure{
		Success: false,
		OrderID: redirect.OrderID,
		Code:    redirect.Code,
		Message: message,
	}
}

func (s *CheckoutServiceImpl) gatewayFailure(order *models.Order, err error) error {
	var rejected *payments.RejectedError
	switch {
	case errors.As(err, &rejected):
		s.metrics.Confirmation(metrics.ResultRejected)
		s.logger.Printf("payment for order %s rejected: %v", order.Number, err)
		status := rejected.StatusCode
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		message := rejected.Message
		if message == "" {
			message = defaultFailureMessage
		}
		return &PaymentError{StatusCode: status, Code: rejected.Code, Message: message, Err: err}
	case errors.Is(err, payments.ErrUnavailable):
		s.metrics.Confirmation(metrics.ResultError)
		s.logger.Printf("payment provider unavailable for order %s: %v", order.Number, err)
		return &PaymentError{
			StatusCode: http.StatusGatewayTimeout,
			Code:       "PROVIDER_UNAVAILABLE",
			Message:    "payment provider is unavailable, try again later",
			Err:        err,
		}
	default:
		s.metrics.Confirmation(metrics.ResultError)
		return fmt.Errorf("confirm payment: %w", err)
	}
}

func (s *CheckoutServiceImpl) paymentRequest(order *models.Order, user *models.Identity) *models.PaymentRequest {
	base := strings.TrimRight(s.opts.PublicBaseURL, "/")
	return &models.PaymentRequest{
		ClientKey:     s.opts.ClientKey,
		OrderID:       order.Number,
		Amount:        order.PayableAmount().IntPart(),
		OrderName:     order.Name(),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		SuccessURL:    base + "/payments/success",
		FailURL:       base + "/payments/fail",
	}
}

func (s *CheckoutServiceImpl) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		s.logger.Printf("failed to publish %s for order %s: %v", eventType, order.Number, err)
	}
}
