package storage

import (
	"context"
	"sync"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
)

var _ OrderStorage = (*MemoryOrderStorage)(nil)

// MemoryOrderStorage хранит заказы в памяти процесса. Используется в тестах и локальной разработке.
type MemoryOrderStorage struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*models.Order
	seq    []uuid.UUID
}

// NewMemoryOrderStorage создаёт пустое хранилище.
func NewMemoryOrderStorage() *MemoryOrderStorage {
	return &MemoryOrderStorage{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *MemoryOrderStorage) Create(_ context.Context, order *models.Order) error {
	if len(order.Items) == 0 {
		return ErrEmptyOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; ok {
		return ErrOrderAlreadyExists
	}
	for _, o := range s.orders {
		if o.Number == order.Number {
			return ErrOrderAlreadyExists
		}
	}

	s.orders[order.ID] = cloneOrder(order)
	s.seq = append(s.seq, order.ID)
	return nil
}

func (s *MemoryOrderStorage) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemoryOrderStorage) GetByNumber(_ context.Context, number string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.Number == number {
			return cloneOrder(o), nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *MemoryOrderStorage) GetByUserID(_ context.Context, userID uuid.UUID) ([]*models.Order, error) {
	return s.filter(false, func(o *models.Order) bool { return o.UserID == userID }), nil
}

func (s *MemoryOrderStorage) List(_ context.Context, status models.OrderStatus) ([]*models.Order, error) {
	return s.filter(true, func(o *models.Order) bool { return status == "" || o.Status == status }), nil
}

func (s *MemoryOrderStorage) UpdateStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryOrderStorage) SetPaymentInfo(_ context.Context, id uuid.UUID, paymentKey, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil
	}

	now := time.Now().UTC()
	switch {
	case o.Payment == nil:
		o.Payment = &models.PaymentInfo{Key: paymentKey, Method: method, ConfirmedAt: now}
	case o.Payment.Key == paymentKey:
		o.Payment.Method = method
	default:
		return ErrPaymentAlreadyAttached
	}
	o.UpdatedAt = now
	return nil
}

func (s *MemoryOrderStorage) GetStalePending(_ context.Context, createdBefore time.Time) ([]*models.Order, error) {
	return s.filter(false, func(o *models.Order) bool {
		return o.Status == models.OrderStatusPending && o.Payment == nil && o.CreatedAt.Before(createdBefore)
	}), nil
}

// filter обходит заказы в порядке вставки (или в обратном).
func (s *MemoryOrderStorage) filter(newestFirst bool, keep func(*models.Order) bool) []*models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Order{}
	for i := range s.seq {
		idx := i
		if newestFirst {
			idx = len(s.seq) - 1 - i
		}
		o := s.orders[s.seq[idx]]
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.LineItem(nil), o.Items...)
	if o.Payment != nil {
		p := *o.Payment
		cp.Payment = &p
	}
	return &cp
}
