package models

import "github.com/google/uuid"

// DefaultPaymentMethod способ оплаты, если провайдер его не вернул.
const DefaultPaymentMethod = "카드"

// PaymentRequest данные для запуска платёжного виджета на клиенте.
type PaymentRequest struct {
	ClientKey     string `json:"clientKey"`
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	OrderName     string `json:"orderName"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	SuccessURL    string `json:"successUrl"`
	FailURL       string `json:"failUrl"`
}

// PaymentRedirect параметры успешного возврата от провайдера.
// OrderID здесь номер заказа, который провайдер получил при запуске оплаты.
type PaymentRedirect struct {
	OrderID    string `query:"orderId" json:"orderId"`
	PaymentKey string `query:"paymentKey" json:"paymentKey"`
	Amount     string `query:"amount" json:"amount"`
}

// FailureRedirect параметры неуспешного возврата от провайдера.
type FailureRedirect struct {
	OrderID string `query:"orderId" json:"orderId"`
	Code    string `query:"code" json:"code"`
	Message string `query:"message" json:"message"`
}

// PaymentFailure результат неуспешной оплаты для показа пользователю.
type PaymentFailure struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// RequestPaymentRequest запрос на повторный запуск оплаты.
type RequestPaymentRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}

// CheckoutRequest тело запроса оформления заказа.
type CheckoutRequest struct {
	ShippingAddress Address `json:"shippingAddress"`
}

// CheckoutResponse ответ на оформление заказа.
type CheckoutResponse struct {
	Order   *OrderResponse  `json:"order"`
	Payment *PaymentRequest `json:"payment"`
}

// ConfirmResponse ответ на подтверждение оплаты.
type ConfirmResponse struct {
	Success bool           `json:"success"`
	Order   *OrderResponse `json:"order"`
}
