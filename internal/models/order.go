package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус выполнения заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderNumberPrefix префикс номера заказа, который видит покупатель и платёжный провайдер.
const orderNumberPrefix = "ORD-"

// ErrNoLineItems возвращается при попытке создать заказ без позиций.
var ErrNoLineItems = errors.New("order has no line items")

// Valid проверяет, что статус входит в известный набор.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Address адрес доставки. Все поля обязательны.
type Address struct {
	PostalCode    string `json:"postalCode"`
	Address       string `json:"address"`
	DetailAddress string `json:"detailAddress"`
	Recipient     string `json:"recipient"`
	Phone         string `json:"phone"`
}

// Complete сообщает, заполнены ли все поля адреса.
func (a Address) Complete() bool {
	return a.PostalCode != "" &&
		a.Address != "" &&
		a.DetailAddress != "" &&
		a.Recipient != "" &&
		a.Phone != ""
}

// LineItem позиция заказа. Цена фиксируется в момент оформления.
type LineItem struct {
	ProductID   uuid.UUID       `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Size        string          `db:"size" json:"selectedSize"`
	Color       string          `db:"color" json:"selectedColor"`
}

// Subtotal стоимость позиции.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// PaymentInfo данные подтверждённой оплаты.
type PaymentInfo struct {
	Key         string    `db:"payment_key" json:"paymentKey"`
	Method      string    `db:"payment_method" json:"method"`
	ConfirmedAt time.Time `db:"paid_at" json:"confirmedAt"`
}

// Order представляет заказ пользователя.
type Order struct {
	ID              uuid.UUID       `db:"id"`
	Number          string          `db:"number"`
	UserID          uuid.UUID       `db:"user_id"`
	Items           []LineItem      `db:"-"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	ShippingFee     decimal.Decimal `db:"shipping_fee"`
	ShippingAddress Address         `db:"-"`
	Status          OrderStatus     `db:"status"`
	Payment         *PaymentInfo    `db:"-"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// NewOrder собирает новый заказ в статусе pending: считает сумму по позициям,
// присваивает идентификатор и номер заказа.
func NewOrder(userID uuid.UUID, items []LineItem, address Address, shippingFee decimal.Decimal) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoLineItems
	}

	snapshot := make([]LineItem, len(items))
	copy(snapshot, items)

	total := decimal.Zero
	for _, it := range snapshot {
		total = total.Add(it.Subtotal())
	}

	now := time.Now().UTC()
	return &Order{
		ID:              uuid.New(),
		Number:          NewOrderNumber(),
		UserID:          userID,
		Items:           snapshot,
		TotalAmount:     total,
		ShippingFee:     shippingFee,
		ShippingAddress: address,
		Status:          OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NewOrderNumber генерирует номер заказа.
func NewOrderNumber() string {
	return orderNumberPrefix + shortuuid.New()
}

// PayableAmount сумма к оплате: товары плюс доставка.
func (o *Order) PayableAmount() decimal.Decimal {
	return o.TotalAmount.Add(o.ShippingFee)
}

// Paid сообщает, подтверждена ли оплата.
func (o *Order) Paid() bool {
	return o.Payment != nil
}

// Name краткое название заказа для платёжного виджета.
func (o *Order) Name() string {
	if len(o.Items) == 0 {
		return o.Number
	}
	if len(o.Items) == 1 {
		return o.Items[0].ProductName
	}
	return fmt.Sprintf("%s 외 %d건", o.Items[0].ProductName, len(o.Items)-1)
}

// OrderResponse ответ с заказом.
type OrderResponse struct {
	ID              uuid.UUID    `json:"id"`
	Number          string       `json:"orderNumber"`
	UserID          uuid.UUID    `json:"userId"`
	Items           []LineItem   `json:"items"`
	TotalAmount     int64        `json:"totalAmount"`
	ShippingFee     int64        `json:"shippingFee"`
	ShippingAddress Address      `json:"shippingAddress"`
	Status          string       `json:"status"`
	PaymentStatus   string       `json:"paymentStatus"`
	Payment         *PaymentInfo `json:"payment,omitempty"`
	CreatedAt       string       `json:"createdAt"`
}

// ToResponse преобразует заказ в DTO.
func (o *Order) ToResponse() *OrderResponse {
	paymentStatus := "unpaid"
	if o.Paid() {
		paymentStatus = "paid"
	}
	return &OrderResponse{
		ID:              o.ID,
		Number:          o.Number,
		UserID:          o.UserID,
		Items:           o.Items,
		TotalAmount:     o.TotalAmount.IntPart(),
		ShippingFee:     o.ShippingFee.IntPart(),
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		PaymentStatus:   paymentStatus,
		Payment:         o.Payment,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
}

// UpdateStatusRequest запрос администратора на смену статуса.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
