package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics содержит все метрики Prometheus сервиса
type Metrics struct {
	// HTTP
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Прогноз
	Forecasts        *prometheus.CounterVec
	ForecastDuration prometheus.Histogram
	PredictedValue   *prometheus.GaugeVec

	// Кэш выровненных кадров
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Хранилище
	QueryErrors *prometheus.CounterVec
	QueryRetry  prometheus.Counter

	// Прогрев и лента прогнозов
	WarmRuns      *prometheus.CounterVec
	FeedClients   prometheus.Gauge
	FeedBroadcast prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default возвращает метрики, зарегистрированные в глобальном реестре.
// Регистрация выполняется один раз на процесс.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New создает и регистрирует метрики в указанном реестре
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harga_http_requests_total",
				Help: "Количество HTTP-запросов по маршруту и коду ответа",
			},
			[]string{"route", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harga_http_request_duration_seconds",
				Help:    "Длительность обработки HTTP-запросов",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "harga_http_rate_limited_total",
			Help: "Количество запросов, отклоненных ограничителем частоты",
		}),

		Forecasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harga_forecasts_total",
				Help: "Количество прогнозов инфляции по результату",
			},
			[]string{"result"},
		),
		ForecastDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "harga_forecast_duration_seconds",
			Help:    "Длительность построения прогноза",
			Buckets: prometheus.DefBuckets,
		}),
		PredictedValue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "harga_predicted_inflation",
				Help: "Последнее прогнозное значение инфляции по региону",
			},
			[]string{"daerah_id"},
		),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "harga_frame_cache_hits_total",
			Help: "Попадания в кэш выровненных кадров",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "harga_frame_cache_misses_total",
			Help: "Промахи кэша выровненных кадров",
		}),

		QueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harga_db_query_errors_total",
				Help: "Ошибки запросов к хранилищу по операции",
			},
			[]string{"op"},
		),
		QueryRetry: factory.NewCounter(prometheus.CounterOpts{
			Name: "harga_db_query_retries_total",
			Help: "Повторные попытки запросов к хранилищу",
		}),

		WarmRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harga_warm_runs_total",
				Help: "Запуски прогрева кэша по результату",
			},
			[]string{"result"},
		),
		FeedClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "harga_feed_clients",
			Help: "Количество подписчиков ленты прогнозов",
		}),
		FeedBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Name: "harga_feed_broadcast_total",
			Help: "Количество разосланных обновлений прогноза",
		}),
	}
}

// ForecastResult метка результата прогноза
func ForecastResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
