package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения label outcome для операций хранилища.
const (
	OutcomeSuccess    = "success"
	OutcomeNotFound   = "not_found"
	OutcomeConnection = "connection_error"
	OutcomeQuery      = "query_error"
)

// StoreMetrics содержит метрики слоя доступа к данным.
// Все методы безопасно вызывать на nil-указателе.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec

	// Жизненный цикл соединений
	connAcquired prometheus.Counter
	connReleased prometheus.Counter
	connFailed   prometheus.Counter
	connInUse    prometheus.Gauge
}

// NewStoreMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWith(prometheus.DefaultRegisterer)
}

// NewStoreMetricsWith регистрирует метрики в переданном registerer.
func NewStoreMetricsWith(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "whisky_store_operations_total",
			Help: "Total number of repository operations by outcome",
		}, []string{"operation", "outcome"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "whisky_store_operation_duration_seconds",
			Help:    "Duration of repository operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		connAcquired: registerCounter(registerer, prometheus.CounterOpts{
			Name: "whisky_store_connections_acquired_total",
			Help: "Total number of store connections acquired",
		}),
		connReleased: registerCounter(registerer, prometheus.CounterOpts{
			Name: "whisky_store_connections_released_total",
			Help: "Total number of store connections released",
		}),
		connFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "whisky_store_connection_failures_total",
			Help: "Total number of failed connection acquisitions",
		}),
		connInUse: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "whisky_store_connections_in_use",
			Help: "Number of store connections currently held by operations",
		}),
	}
}

// RecordAcquired фиксирует выдачу соединения операции.
func (m *StoreMetrics) RecordAcquired() {
	if m == nil {
		return
	}
	m.connAcquired.Inc()
	m.connInUse.Inc()
}

// RecordReleased фиксирует возврат соединения в пул.
func (m *StoreMetrics) RecordReleased() {
	if m == nil {
		return
	}
	m.connReleased.Inc()
	m.connInUse.Dec()
}

// RecordAcquireFailed увеличивает счётчик неудачных попыток получить соединение.
func (m *StoreMetrics) RecordAcquireFailed() {
	if m == nil {
		return
	}
	m.connFailed.Inc()
}

// RecordOperation записывает исход и длительность операции репозитория.
func (m *StoreMetrics) RecordOperation(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}
