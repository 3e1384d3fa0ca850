package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	ReservationsTotal         *prometheus.CounterVec
	PaymentNotificationsTotal *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в переданном registry
// Используется в тестах, чтобы не конфликтовать с глобальным registry
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"method", "path"},
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "db_query_duration_seconds",
				Help:        "Database query duration in seconds",
				Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				ConstLabels: labels,
			},
			[]string{"operation", "status"},
		),
		DBOpenConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "db_open_connections",
				Help:        "Number of established connections to the database",
				ConstLabels: labels,
			},
			[]string{"db"},
		),
		DBInUseConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "db_in_use_connections",
				Help:        "Number of connections currently in use",
				ConstLabels: labels,
			},
			[]string{"db"},
		),
		DBIdleConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "db_idle_connections",
				Help:        "Number of idle connections",
				ConstLabels: labels,
			},
			[]string{"db"},
		),
		DBWaitCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "db_wait_count",
				Help:        "Total number of connections waited for",
				ConstLabels: labels,
			},
			[]string{"db"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "reservations_total",
				Help:        "Reservation attempts by kind and outcome",
				ConstLabels: labels,
			},
			[]string{"kind", "outcome"},
		),
		PaymentNotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "payment_notifications_total",
				Help:        "Processed payment gateway notifications by transaction status and outcome",
				ConstLabels: labels,
			},
			[]string{"transaction_status", "outcome"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.ReservationsTotal,
		m.PaymentNotificationsTotal,
	)

	return m
}

// ObserveReservation увеличивает счетчик попыток бронирования
// Безопасен для nil (метрики выключены)
func (m *Metrics) ObserveReservation(kind, outcome string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObservePaymentNotification увеличивает счетчик обработанных уведомлений платежного шлюза
func (m *Metrics) ObservePaymentNotification(status, outcome string) {
	if m == nil {
		return
	}
	m.PaymentNotificationsTotal.WithLabelValues(status, outcome).Inc()
}
