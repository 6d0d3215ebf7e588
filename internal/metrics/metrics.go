package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Результаты подтверждения оплаты.
const (
	ResultConfirmed  = "confirmed"
	ResultDuplicate  = "duplicate"
	ResultRejected   = "rejected"
	ResultError      = "error"
	ResultIncomplete = "incomplete"
	ResultNotFound   = "not_found"
	ResultMismatch   = "amount_mismatch"
	ResultFailed     = "failed_redirect"
)

// PaymentMetrics метрики жизненного цикла оплаты. Нулевой указатель безопасен.
type PaymentMetrics struct {
	confirmations  *prometheus.CounterVec
	gatewayLatency prometheus.Histogram
	ordersCreated  prometheus.Counter
	stalePending   prometheus.Gauge
}

// NewPaymentMetrics регистрирует метрики в reg.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	m := &PaymentMetrics{
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "confirmations_total",
			Help:      "Payment confirmation attempts by result.",
		}, []string{"result"}),
		gatewayLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "gateway_duration_ms",
			Help:      "Payment provider confirm call latency in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders created at checkout.",
		}),
		stalePending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "stale_pending",
			Help:      "Pending orders without payment older than the configured threshold.",
		}),
	}

	reg.MustRegister(m.confirmations, m.gatewayLatency, m.ordersCreated, m.stalePending)
	return m
}

func (m *PaymentMetrics) Confirmation(result string) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(result).Inc()
}

func (m *PaymentMetrics) GatewayCall(d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayLatency.Observe(float64(d.Milliseconds()))
}

func (m *PaymentMetrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *PaymentMetrics) StalePending(n int) {
	if m == nil {
		return
	}
	m.stalePending.Set(float64(n))
}

// Handler отдаёт метрики в формате Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
