package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product товар каталога.
type Product struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	Sizes       []string        `db:"sizes" json:"sizes"`
	Colors      []string        `db:"colors" json:"colors"`
	Stock       int             `db:"stock" json:"stock"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// CreateProductRequest - запрос на добавление товара.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       int      `json:"stock"`
}
