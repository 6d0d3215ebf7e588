package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderAlreadyExists     = errors.New("order already exists")
	ErrEmptyOrder             = errors.New("order has no line items")
	ErrPaymentAlreadyAttached = errors.New("order already has a different payment attached")
)

// OrderStorage определяет интерфейс журнала заказов.
type OrderStorage interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	List(ctx context.Context, status models.OrderStatus) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	SetPaymentInfo(ctx context.Context, id uuid.UUID, paymentKey, method string) error
	GetStalePending(ctx context.Context, createdBefore time.Time) ([]*models.Order, error)
}

var _ OrderStorage = (*PostgresOrderStorage)(nil)

// PostgresOrderStorage реализует OrderStorage для PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

const orderColumns = `
	id, number, user_id, total_amount, shipping_fee,
	postal_code, address, detail_address, recipient, phone,
	status, payment_key, payment_method, paid_at, created_at, updated_at
`

// Create сохраняет заказ вместе с позициями в одной транзакции.
func (s *PostgresOrderStorage) Create(ctx context.Context, order *models.Order) error {
	if len(order.Items) == 0 {
		return ErrEmptyOrder
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	addr := order.ShippingAddress
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, number, user_id, total_amount, shipping_fee,
			postal_code, address, detail_address, recipient, phone,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`,
		order.ID,
		order.Number,
		order.UserID,
		order.TotalAmount,
		order.ShippingFee,
		addr.PostalCode,
		addr.Address,
		addr.DetailAddress,
		addr.Recipient,
		addr.Phone,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i, it := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, product_id, product_name, price, quantity, size, color)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, order.ID, i, it.ProductID, it.ProductName, it.Price, it.Quantity, it.Size, it.Color)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID возвращает заказ по идентификатору.
func (s *PostgresOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByNumber возвращает заказ по номеру.
func (s *PostgresOrderStorage) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number))
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByUserID возвращает заказы пользователя в порядке создания.
func (s *PostgresOrderStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY seq ASC
	`, userID)
}

// List возвращает все заказы, новые первыми. Пустой статус означает без фильтра.
func (s *PostgresOrderStorage) List(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	if status == "" {
		return s.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY seq DESC`)
	}
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = $1
		ORDER BY seq DESC
	`, status)
}

// UpdateStatus перезаписывает статус заказа без проверки переходов.
func (s *PostgresOrderStorage) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// SetPaymentInfo прикрепляет оплату к заказу. Повтор с тем же ключом ничего не меняет,
// другой ключ на уже оплаченном заказе отклоняется. Статус не трогается.
func (s *PostgresOrderStorage) SetPaymentInfo(ctx context.Context, id uuid.UUID, paymentKey, method string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET payment_key = $2, payment_method = $3, paid_at = COALESCE(paid_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND (payment_key IS NULL OR payment_key = $2)
	`, id, paymentKey, method)
	if err != nil {
		return fmt.Errorf("failed to set payment info: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var existing *string
	err = s.pool.QueryRow(ctx, `SELECT payment_key FROM orders WHERE id = $1`, id).Scan(&existing)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to check payment info: %w", err)
	}

	return ErrPaymentAlreadyAttached
}

// GetStalePending возвращает неоплаченные заказы в статусе pending, созданные раньше указанного момента.
func (s *PostgresOrderStorage) GetStalePending(ctx context.Context, createdBefore time.Time) ([]*models.Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = 'pending' AND payment_key IS NULL AND created_at < $1
		ORDER BY created_at ASC
	`, createdBefore)
}

func (s *PostgresOrderStorage) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []*models.Order
		ids    []uuid.UUID
	)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}

	return orders, nil
}

func (s *PostgresOrderStorage) attachItems(ctx context.Context, order *models.Order) error {
	items, err := s.loadItems(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return err
	}
	order.Items = items[order.ID]
	return nil
}

// loadItems читает позиции сразу для нескольких заказов.
func (s *PostgresOrderStorage) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.LineItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT order_id, product_id, product_name, price, quantity, size, color
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.LineItem, len(orderIDs))
	for rows.Next() {
		var (
			orderID uuid.UUID
			it      models.LineItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.Price, &it.Quantity, &it.Size, &it.Color); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], it)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return items, nil
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order         models.Order
		paymentKey    *string
		paymentMethod *string
		paidAt        *time.Time
	)

	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.UserID,
		&order.TotalAmount,
		&order.ShippingFee,
		&order.ShippingAddress.PostalCode,
		&order.ShippingAddress.Address,
		&order.ShippingAddress.DetailAddress,
		&order.ShippingAddress.Recipient,
		&order.ShippingAddress.Phone,
		&order.Status,
		&paymentKey,
		&paymentMethod,
		&paidAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if paymentKey != nil {
		order.Payment = &models.PaymentInfo{Key: *paymentKey}
		if paymentMethod != nil {
			order.Payment.Method = *paymentMethod
		}
		if paidAt != nil {
			order.Payment.ConfirmedAt = *paidAt
		}
	}

	return &order, nil
}
