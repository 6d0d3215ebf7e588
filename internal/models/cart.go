package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem позиция корзины с текущей ценой товара из каталога.
type CartItem struct {
	ProductID   uuid.UUID       `db:"product_id" json:"productId"`
	ProductName string          `db:"name" json:"productName"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Size        string          `db:"size" json:"selectedSize"`
	Color       string          `db:"color" json:"selectedColor"`
}

// LineItem фиксирует позицию корзины как позицию заказа.
func (ci CartItem) LineItem() LineItem {
	return LineItem{
		ProductID:   ci.ProductID,
		ProductName: ci.ProductName,
		Price:       ci.Price,
		Quantity:    ci.Quantity,
		Size:        ci.Size,
		Color:       ci.Color,
	}
}

// AddCartItemRequest - запрос на добавление товара в корзину.
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"selectedSize"`
	Color     string    `json:"selectedColor"`
}
