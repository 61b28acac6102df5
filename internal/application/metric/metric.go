package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики - количество запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP метрики - время обработки запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// WS метрики - количество активных соединений
	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	// Сообщения, прошедшие через relay (сохранено + разослано в комнату)
	messagesRelayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Количество сообщений, сохранённых и разосланных в комнаты",
		},
	)

	// Доставки, отброшенные молча. Оффлайн-получатель - это норма,
	// метрика отделяет её от реальных ошибок
	deliveriesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_dropped_total",
			Help: "Количество недоставленных событий по причинам",
		},
		[]string{"reason"},
	)

	// События сигналинга звонков, пересланные точка-точка
	callSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_signals_forwarded_total",
			Help: "Количество пересланных событий сигналинга звонков",
		},
		[]string{"type"},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func IncrementMessagesRelayed() {
	messagesRelayedTotal.Inc()
}

func IncrementDeliveryDropped(reason string) {
	deliveriesDroppedTotal.WithLabelValues(reason).Inc()
}

func IncrementCallSignal(eventType string) {
	callSignalsTotal.WithLabelValues(eventType).Inc()
}
