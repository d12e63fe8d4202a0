// routes/api_routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LilVoxy/harga_pangan/config"
	"github.com/LilVoxy/harga_pangan/forecast"
	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/middleware"
	"github.com/LilVoxy/harga_pangan/models"
	"github.com/LilVoxy/harga_pangan/websocket"
)

// Dependencies зависимости обработчиков API
type Dependencies struct {
	Repo       models.Repository
	Data       *forecast.DataService
	Forecaster *forecast.Forecaster
	Feed       *websocket.Manager
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Server     config.ServerConfig
	Model      config.ModelConfig
}

// SetupRoutes настраивает все маршруты API и WebSocket
func SetupRoutes(router *mux.Router, deps Dependencies) {
	// Общие middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(deps.Server.AllowOrigin))
	router.Use(middleware.Instrument(deps.Metrics))
	router.Use(middleware.RateLimit(deps.Server.RateLimit, deps.Metrics))

	// Цены. Маршрут /last регистрируется раньше шаблона /{daerah_id}/{komoditas_id}
	router.HandleFunc("/harga_komoditas", GetAllPricesHandler(deps.Repo)).Methods("GET", "OPTIONS")
	router.HandleFunc("/harga_komoditas/last/{daerah_id}/{komoditas_id}", GetLastPriceHandler(deps.Repo)).Methods("GET", "OPTIONS")
	router.HandleFunc("/harga_komoditas/{daerah_id}", GetRegionPricesHandler(deps.Repo)).Methods("GET", "OPTIONS")
	router.HandleFunc("/harga_komoditas/{daerah_id}/{komoditas_id}", GetPriceSeriesHandler(deps.Data)).Methods("GET", "OPTIONS")
	router.HandleFunc("/harga_normal/{daerah_id}/{komoditas_id}", GetNormalPriceHandler(deps.Data, deps.Model.HPLambda)).Methods("GET", "OPTIONS")

	// Справочники и инфляция
	router.HandleFunc("/komoditas", GetCommoditiesHandler(deps.Repo)).Methods("GET", "OPTIONS")
	router.HandleFunc("/daerah", GetRegionsHandler(deps.Repo)).Methods("GET", "OPTIONS")
	router.HandleFunc("/inflasi/{id_daerah}", GetLatestInflationHandler(deps.Repo)).Methods("GET", "OPTIONS")
	router.HandleFunc("/inflasiall/{id_daerah}", GetInflationHistoryHandler(deps.Repo)).Methods("GET", "OPTIONS")

	// Прогноз
	router.HandleFunc("/prediksi/{id_daerah}", GetPredictionHandler(deps.Forecaster)).Methods("GET", "OPTIONS")
	router.HandleFunc("/predict", PredictHandler(deps.Forecaster)).Methods("GET", "OPTIONS")

	// Лента прогнозов
	if deps.Feed != nil {
		router.HandleFunc("/ws/prediksi/{id_daerah}", deps.Feed.HandleConnections)
		router.HandleFunc("/ws/status", deps.Feed.HandleStatus).Methods("GET", "OPTIONS")
	}

	// Служебные маршруты
	router.HandleFunc("/health", HealthHandler(deps.Repo)).Methods("GET", "OPTIONS")
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondClientError(w, http.StatusNotFound, "Route not found: "+r.URL.Path)
	})
}
