package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

// PostgresProductStorage хранит каталог товаров.
type PostgresProductStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresProductStorage(pool *pgxpool.Pool) *PostgresProductStorage {
	return &PostgresProductStorage{pool: pool}
}

const productColumns = `id, name, description, price, category, sizes, colors, stock, created_at`

// Create добавляет товар в каталог.
func (s *PostgresProductStorage) Create(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, description, price, category, sizes, colors, stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`, p.ID, p.Name, p.Description, p.Price, p.Category, p.Sizes, p.Colors, p.Stock).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID возвращает товар по идентификатору.
func (s *PostgresProductStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return scanProduct(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// List возвращает каталог, опционально по категории.
func (s *PostgresProductStorage) List(ctx context.Context, category string) ([]*models.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE $1 = '' OR category = $1
		ORDER BY created_at DESC
	`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return products, nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Sizes, &p.Colors, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &p, nil
}
