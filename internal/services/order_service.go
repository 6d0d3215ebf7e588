package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/agamariel/storefront/internal/events"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
)

// OrderService определяет интерфейс просмотра и администрирования заказов.
type OrderService interface {
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*models.OrderResponse, error)
	GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.OrderResponse, error)
	ListOrders(ctx context.Context, status string) ([]*models.OrderResponse, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.OrderResponse, error)
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	orderStorage storage.OrderStorage
	publisher    events.Publisher
	logger       *log.Logger
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(orderStorage storage.OrderStorage, publisher events.Publisher, logger *log.Logger) *OrderServiceImpl {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OrderServiceImpl{orderStorage: orderStorage, publisher: publisher, logger: logger}
}

// GetUserOrders возвращает список заказов пользователя.
func (s *OrderServiceImpl) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*models.OrderResponse, error) {
	orders, err := s.orderStorage.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user orders: %w", err)
	}
	return toResponses(orders), nil
}

// GetUserOrder возвращает заказ пользователя. Чужой заказ неотличим от отсутствующего.
func (s *OrderServiceImpl) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.OrderResponse, error) {
	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order.ToResponse(), nil
}

// ListOrders возвращает все заказы, новые первыми. Пустой status означает без фильтра.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, status string) ([]*models.OrderResponse, error) {
	filter := models.OrderStatus(status)
	if status != "" && !filter.Valid() {
		return nil, ErrInvalidStatus
	}

	orders, err := s.orderStorage.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toResponses(orders), nil
}

// UpdateStatus устанавливает статус заказа без проверки переходов.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.OrderResponse, error) {
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.orderStorage.UpdateStatus(ctx, orderID, next); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewOrderEvent(events.TypeOrderStatusChanged, order)); err != nil {
		s.logger.Printf("failed to publish status change for order %s: %v", order.Number, err)
	}

	return order.ToResponse(), nil
}

func toResponses(orders []*models.Order) []*models.OrderResponse {
	resp := make([]*models.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, o.ToResponse())
	}
	return resp
}
