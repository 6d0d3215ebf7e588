package services

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/agamariel/storefront/internal/events"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/payments"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type mockCartStorage struct {
	AddItemFunc  func(ctx context.Context, userID uuid.UUID, item models.AddCartItemRequest) error
	GetItemsFunc func(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	ClearFunc    func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockCartStorage) AddItem(ctx context.Context, userID uuid.UUID, item models.AddCartItemRequest) error {
	if m.AddItemFunc != nil {
		return m.AddItemFunc(ctx, userID, item)
	}
	return nil
}

func (m *mockCartStorage) GetItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	if m.GetItemsFunc != nil {
		return m.GetItemsFunc(ctx, userID)
	}
	return []models.CartItem{}, nil
}

func (m *mockCartStorage) Clear(ctx context.Context, userID uuid.UUID) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, userID)
	}
	return nil
}

type mockProductStorage struct {
	CreateFunc  func(ctx context.Context, product *models.Product) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListFunc    func(ctx context.Context, category string) ([]*models.Product, error)
}

func (m *mockProductStorage) Create(ctx context.Context, product *models.Product) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	return nil
}

func (m *mockProductStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockProductStorage) List(ctx context.Context, category string) ([]*models.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, category)
	}
	return nil, nil
}

// mockGateway считает вызовы подтверждения.
type mockGateway struct {
	mu          sync.Mutex
	calls       int
	ConfirmFunc func(ctx context.Context, paymentKey, orderNumber string, amount decimal.Decimal) (*payments.Confirmation, error)
}

func (m *mockGateway) Confirm(ctx context.Context, paymentKey, orderNumber string, amount decimal.Decimal) (*payments.Confirmation, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, paymentKey, orderNumber, amount)
	}
	return &payments.Confirmation{PaymentKey: paymentKey, OrderID: orderNumber, Status: "DONE", TotalAmount: amount}, nil
}

func (m *mockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ctxOrderStorage учитывает отмену контекста при записи оплаты, как это делает pgx.
type ctxOrderStorage struct {
	*storage.MemoryOrderStorage
	failWrites int
}

func (s *ctxOrderStorage) SetPaymentInfo(ctx context.Context, id uuid.UUID, paymentKey, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failWrites > 0 {
		s.failWrites--
		return errors.New("connection reset")
	}
	return s.MemoryOrderStorage.SetPaymentInfo(ctx, id, paymentKey, method)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		types = append(types, ev.Type)
	}
	return types
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
