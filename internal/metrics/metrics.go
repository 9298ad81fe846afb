package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики локального сервера
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)

	// Метрики вызовов REST-бэкенда
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_api_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"endpoint", "status"},
	)
	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "backend_api_request_duration_seconds",
			Help: "Duration of backend API requests in seconds",
		},
		[]string{"endpoint"},
	)

	// Платёжные метрики
	PaymentInitiationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_initiations_total",
			Help: "Total number of payment initiation attempts",
		},
		[]string{"result"},
	)
	PaymentVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Total number of payment verification outcomes",
		},
		[]string{"result"},
	)
	PaymentCancellationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_cancellations_total",
			Help: "Total number of gateway cancel returns",
		},
	)

	// Метрики сессии
	SessionRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_refresh_total",
			Help: "Total number of session restore/refresh attempts",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// InitMetrics регистрирует все коллекторы. Повторные вызовы безопасны.
func InitMetrics() {
	registerOnce.Do(registerAll)
}

func registerAll() {
	// Регистрация HTTP метрик
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)

	// Регистрация метрик бэкенда
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)

	// Регистрация платёжных метрик
	prometheus.MustRegister(PaymentInitiationsTotal)
	prometheus.MustRegister(PaymentVerificationsTotal)
	prometheus.MustRegister(PaymentCancellationsTotal)

	// Регистрация метрик сессии
	prometheus.MustRegister(SessionRefreshTotal)

	// Стандартные метрики Go
	prometheus.MustRegister(prometheus.NewGoCollector())
	prometheus.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}
