package services

import (
	"context"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
)

// CartStorage определяет интерфейс для работы с корзиной.
type CartStorage interface {
	AddItem(ctx context.Context, userID uuid.UUID, item models.AddCartItemRequest) error
	GetItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProductStorage определяет интерфейс для работы с каталогом.
type ProductStorage interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, category string) ([]*models.Product, error)
}

// PendingOrderSource отдаёт неоплаченные заказы, созданные раньше указанного момента.
type PendingOrderSource interface {
	GetStalePending(ctx context.Context, createdBefore time.Time) ([]*models.Order, error)
}
