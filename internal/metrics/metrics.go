package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики сервиса
// ============================================================
//
// Экспортируются через /metrics (доступ по debug basic auth).

// ============ HTTP ============

// HTTPRequestsTotal - количество запросов по шаблону маршрута, методу и статусу
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "tradebots",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	},
	[]string{"route", "method", "status"},
)

// HTTPRequestDuration - длительность обработки запроса в секундах
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "tradebots",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	},
	[]string{"route", "method"},
)

// ============ Auth ============

// AuthFailures - отказы в доступе по коду ошибки
var AuthFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "tradebots",
		Subsystem: "auth",
		Name:      "failures_total",
		Help:      "Total number of rejected requests by auth error code",
	},
	[]string{"code"}, // token_expired, invalid_header, permission_denied ...
)

// JWKSFetches - обращения к JWKS endpoint по результату
var JWKSFetches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "tradebots",
		Subsystem: "auth",
		Name:      "jwks_fetches_total",
		Help:      "Total number of JWKS fetches by result",
	},
	[]string{"result"}, // success, error
)

// ============ WebSocket ============

// WebSocketClients - текущее количество подключенных клиентов
var WebSocketClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "tradebots",
		Subsystem: "websocket",
		Name:      "clients",
		Help:      "Current number of connected WebSocket clients",
	},
)

// ChangeEventsBroadcast - разосланные события изменений по типу
var ChangeEventsBroadcast = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "tradebots",
		Subsystem: "websocket",
		Name:      "change_events_total",
		Help:      "Total number of broadcast change events by type",
	},
	[]string{"type"},
)

// WebSocketDroppedMessages - сообщения, отброшенные из-за переполненного буфера
var WebSocketDroppedMessages = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "tradebots",
		Subsystem: "websocket",
		Name:      "dropped_messages_total",
		Help:      "Total number of messages dropped due to full buffers",
	},
)

// ============ Хелперы ============

// RecordAuthFailure увеличивает счётчик отказов
func RecordAuthFailure(code string) {
	AuthFailures.WithLabelValues(code).Inc()
}

// RecordJWKSFetch учитывает результат обращения к JWKS
func RecordJWKSFetch(err error) {
	if err != nil {
		JWKSFetches.WithLabelValues("error").Inc()
		return
	}
	JWKSFetches.WithLabelValues("success").Inc()
}
