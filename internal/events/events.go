package events

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Топик событий по заказам.
const OrdersTopic = "storefront.orders"

const (
	batchTimeout = 10 * time.Millisecond
	writeTimeout = 5 * time.Second
)

// Типы событий.
const (
	TypeOrderCreated       = "order.created"
	TypeOrderPaid          = "order.paid"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent событие жизненного цикла заказа.
type OrderEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        uuid.UUID `json:"user_id"`
	Status        string    `json:"status"`
	PayableAmount int64     `json:"payable_amount"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewOrderEvent строит событие по текущему состоянию заказа.
func NewOrderEvent(eventType string, o *models.Order) OrderEvent {
	ev := OrderEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PayableAmount: o.PayableAmount().IntPart(),
		OccurredAt:    time.Now().UTC(),
	}
	if o.Payment != nil {
		ev.PaymentMethod = o.Payment.Method
	}
	return ev
}

// Publisher публикует события по заказам.
type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}

// NopPublisher ничего не публикует. Используется, когда брокеры не настроены.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }

// KafkaPublisher пишет события в Kafka асинхронно, ключ сообщения номер заказа.
// Publish не ждёт брокера, ошибки доставки попадают в лог.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *log.Logger
}

// NewKafkaPublisher создаёт publisher по списку брокеров через запятую.
// Пустой список даёт NopPublisher.
func NewKafkaPublisher(brokersCSV string, logger *log.Logger) Publisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return NopPublisher{}
	}

	if logger == nil {
		logger = log.Default()
	}

	p := &KafkaPublisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        OrdersTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		Async:        true,
		Completion:   p.completed,
	}
	return p
}

func (p *KafkaPublisher) completed(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		p.logger.Printf("failed to deliver order event for %s: %v", m.Key, err)
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderNumber),
		Value: data,
		Time:  ev.OccurredAt,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
