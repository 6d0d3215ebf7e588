package services

import (
	"context"
	"log"
	"time"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/google/uuid"
)

// PendingMonitor периодически ищет заказы, зависшие без оплаты, и сообщает о них
// через метрику и лог. Заказы не изменяет.
type PendingMonitor struct {
	source     PendingOrderSource
	metrics    *metrics.PaymentMetrics
	staleAfter time.Duration
	interval   time.Duration
	logger     *log.Logger
	now        func() time.Time

	// заказы, о которых уже сообщили; используется только из горутины монитора
	reported map[uuid.UUID]struct{}
}

func NewPendingMonitor(source PendingOrderSource, m *metrics.PaymentMetrics, staleAfter, interval time.Duration, logger *log.Logger) *PendingMonitor {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &PendingMonitor{
		source:     source,
		metrics:    m,
		staleAfter: staleAfter,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
		reported:   make(map[uuid.UUID]struct{}),
	}
}

// Start запускает монитор в отдельной горутине и останавливается по ctx.Done().
func (w *PendingMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		if _, err := w.scan(ctx); err != nil {
			w.logger.Printf("pending monitor error on initial scan: %v", err)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.scan(ctx); err != nil {
					w.logger.Printf("pending monitor error: %v", err)
				}
			}
		}
	}()
}

// scan возвращает число найденных зависших заказов. Каждый заказ попадает в лог
// один раз, пока остаётся зависшим.
func (w *PendingMonitor) scan(ctx context.Context) (int, error) {
	cutoff := w.now().Add(-w.staleAfter)
	orders, err := w.source.GetStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	w.metrics.StalePending(len(orders))

	current := make(map[uuid.UUID]struct{}, len(orders))
	fresh := 0
	for _, o := range orders {
		current[o.ID] = struct{}{}
		if _, seen := w.reported[o.ID]; seen {
			continue
		}
		fresh++
		w.logger.Printf("order %s is pending without payment since %s (payable %s)",
			o.Number, o.CreatedAt.Format(time.RFC3339), o.PayableAmount())
	}
	w.reported = current

	if fresh > 0 {
		w.logger.Printf("pending monitor: %d stale orders, %d new", len(orders), fresh)
	}
	return len(orders), nil
}
