package services

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	accruals        *prometheus.CounterVec
	accruedAmount   *prometheus.CounterVec
	failures        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		accruals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewards_accruals_total",
			Help: "Completed reward accruals by transaction kind.",
		}, []string{"kind"}),
		accruedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewards_accrued_amount_total",
			Help: "Sum of credited reward amounts by transaction kind.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewards_request_failures_total",
			Help: "Failed requests by error kind.",
		}, []string{"kind"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rewards_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.accruals, m.accruedAmount, m.failures, m.requestDuration)
	return m
}

func (m *Metrics) ObserveAccrual(kind string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.accruals.WithLabelValues(kind).Inc()
	m.accruedAmount.WithLabelValues(kind).Add(amount.InexactFloat64())
}

func (m *Metrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
