package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько отвечал бэкенд
	RequestDuration *prometheus.HistogramVec

	// Traffic + Errors: исходящие запросы по операциям и исходу
	RequestsTotal *prometheus.CounterVec

	// Лента уведомлений: успешные и проваленные циклы обновления
	FeedRefreshTotal *prometheus.CounterVec

	// Ручные детекции по итоговому классу отрисовки
	DetectionsTotal *prometheus.CounterVec

	// Запуски переобучения
	TrainTotal *prometheus.CounterVec

	// Saturation: состояние Circuit Breaker (0 - закрыт, 1 - полуоткрыт, 2 - открыт)
	CircuitBreakerState *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	// Null Object: без регистратора метрики пишутся в локальный, никуда не подключенный реестр
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinel_backend_request_duration_seconds",
			Help:    "Histogram of backend request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op"}),

		RequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_backend_requests_total",
			Help: "Total number of backend requests by operation and outcome.",
		}, []string{"op", "outcome"}), // outcome: ok, unauthorized, transport, decode или HTTP-код

		FeedRefreshTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_feed_refresh_total",
			Help: "Notification feed refresh cycles by result.",
		}, []string{"result"}),

		DetectionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_detections_total",
			Help: "Manual detections by rendered severity.",
		}, []string{"severity"}),

		TrainTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_train_total",
			Help: "Model retrain triggers by result.",
		}, []string{"result"}),

		CircuitBreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentinel_circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open).",
		}, []string{"breaker"}),
	}
}
