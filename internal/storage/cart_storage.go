package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCartStorage хранит корзины пользователей.
type PostgresCartStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresCartStorage(pool *pgxpool.Pool) *PostgresCartStorage {
	return &PostgresCartStorage{pool: pool}
}

// AddItem добавляет товар в корзину. Одинаковые товар, размер и цвет складываются по количеству.
func (s *PostgresCartStorage) AddItem(ctx context.Context, userID uuid.UUID, item models.AddCartItemRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, size, color, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, product_id, size, color)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, userID, item.ProductID, item.Size, item.Color, item.Quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// GetItems возвращает корзину с текущими ценами каталога.
func (s *PostgresCartStorage) GetItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.product_id, p.name, p.price, c.quantity, c.size, c.color
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.added_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Price, &it.Quantity, &it.Size, &it.Color); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, it)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return items, nil
}

// Clear очищает корзину пользователя.
func (s *PostgresCartStorage) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
