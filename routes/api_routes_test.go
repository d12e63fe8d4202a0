package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/LilVoxy/harga_pangan/config"
	"github.com/LilVoxy/harga_pangan/database"
	"github.com/LilVoxy/harga_pangan/forecast"
	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/models"
	"github.com/LilVoxy/harga_pangan/utils"
)

const seededRegion = 1

func month(i int) time.Time {
	return time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
}

// newTestRouter собирает маршруты над хранилищем в памяти с 24 месяцами данных региона 1
func newTestRouter(t *testing.T) (*mux.Router, *database.MemoryRepository) {
	t.Helper()

	repo := database.NewMemoryRepository()
	for i := 0; i < 24; i++ {
		for _, k := range models.CanonicalCommodityIDs() {
			repo.AddPrices(models.PriceRow{
				DaerahID:     seededRegion,
				KomoditasID:  k,
				TanggalHarga: month(i),
				Harga:        float64(20000 + 1000*k + 100*i),
			})
		}
		repo.AddInflation(models.InflationRow{IDDaerah: seededRegion, TanggalInflasi: month(i), TingkatInflasi: 3 + 0.1*float64(i%5)})
	}
	repo.SetReference(
		[]models.Commodity{{ID: 1, Nama: "Bawang Merah"}, {ID: 2, Nama: "Bawang Putih"}},
		[]models.Region{{ID: seededRegion, Nama: "Jakarta Pusat"}},
	)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := utils.NewDiscardLogger()
	data := forecast.NewDataService(repo, nil, m, logger)
	model := forecast.ModelFunc{
		Timesteps: 1,
		Features:  6,
		Fn: func(_ context.Context, input [][]float64) ([]float64, error) {
			return []float64{0.5}, nil
		},
	}

	server := config.DefaultServerConfig
	server.RateLimit = 0

	router := mux.NewRouter()
	SetupRoutes(router, Dependencies{
		Repo:       repo,
		Data:       data,
		Forecaster: forecast.NewForecaster(data, model, m, logger, forecast.DefaultConfig()),
		Metrics:    m,
		Gatherer:   reg,
		Server:     server,
		Model:      config.DefaultModelConfig,
	})
	return router, repo
}

func get(t *testing.T, router http.Handler, path string) (int, map[string]interface{}) {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("GET %s: failed to decode body: %v", path, err)
	}
	return rec.Code, body
}

func TestPriceSeries_TimeRange(t *testing.T) {
	router, _ := newTestRouter(t)

	code, body := get(t, router, "/harga_komoditas/1/2")
	if code != http.StatusOK || body["error"] != false || body["message"] != "Success" {
		t.Fatalf("status %d, body %v", code, body)
	}
	prices := body["prices"].([]interface{})
	// последняя дата 01-12-2023, окно в один год включает 01-12-2022
	if len(prices) != 13 {
		t.Fatalf("got %d prices, want 13", len(prices))
	}
	first := prices[0].(map[string]interface{})
	if first["tanggal_harga"] != "01-12-2022" {
		t.Errorf("first date = %v, want 01-12-2022", first["tanggal_harga"])
	}
	last := prices[len(prices)-1].(map[string]interface{})
	if last["tanggal_harga"] != "01-12-2023" {
		t.Errorf("last date = %v, want 01-12-2023", last["tanggal_harga"])
	}

	_, body = get(t, router, "/harga_komoditas/1/2?timeRange=2")
	if n := len(body["prices"].([]interface{})); n != 24 {
		t.Errorf("timeRange=2 returned %d prices, want 24", n)
	}

	for _, path := range []string{"/harga_komoditas/1/2?timeRange=0", "/harga_komoditas/1/2?timeRange=abc", "/harga_komoditas/x/2"} {
		code, body := get(t, router, path)
		if code != http.StatusBadRequest || body["error"] != true {
			t.Errorf("GET %s: status %d body %v, want 400 with error: true", path, code, body)
		}
	}
}

func TestMissingRegion_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []string{
		"/harga_komoditas/99",
		"/harga_komoditas/99/1",
		"/harga_komoditas/last/99/1",
		"/harga_normal/99/1",
		"/inflasi/99",
		"/inflasiall/99",
		"/prediksi/99",
	}
	for _, path := range paths {
		code, body := get(t, router, path)
		if code != http.StatusNotFound {
			t.Errorf("GET %s: status %d, want 404", path, code)
			continue
		}
		if body["error"] != true {
			t.Errorf("GET %s: error = %v, want true", path, body["error"])
		}
		if msg, _ := body["message"].(string); !strings.Contains(msg, "99") {
			t.Errorf("GET %s: message %q does not name the region", path, msg)
		}
	}
}

func TestLastPrice(t *testing.T) {
	router, _ := newTestRouter(t)

	code, body := get(t, router, "/harga_komoditas/last/1/3")
	if code != http.StatusOK {
		t.Fatalf("status %d, body %v", code, body)
	}
	data := body["data"].(map[string]interface{})
	if data["harga"] != float64(20000+3000+2300) || data["tanggal_harga"] != "01-12-2023" {
		t.Errorf("data = %v", data)
	}
}

func TestNormalPrice(t *testing.T) {
	router, repo := newTestRouter(t)

	code, body := get(t, router, "/harga_normal/1/1?timeRange=2")
	if code != http.StatusOK {
		t.Fatalf("status %d, body %v", code, body)
	}
	prices := body["prices"].([]interface{})
	if len(prices) != 24 {
		t.Fatalf("got %d points, want 24", len(prices))
	}
	for _, p := range prices {
		point := p.(map[string]interface{})
		if _, ok := point["harga_normal"]; !ok {
			t.Fatalf("point without harga_normal: %v", point)
		}
	}

	// Ряд из двух точек слишком короткий для тренда: 400
	repo.AddPrices(
		models.PriceRow{DaerahID: 5, KomoditasID: 1, TanggalHarga: month(0), Harga: 1},
		models.PriceRow{DaerahID: 5, KomoditasID: 1, TanggalHarga: month(1), Harga: 2},
	)
	code, body = get(t, router, "/harga_normal/5/1")
	if code != http.StatusBadRequest || body["error"] != true {
		t.Errorf("short series: status %d body %v, want 400", code, body)
	}
}

func TestReferenceAndInflation(t *testing.T) {
	router, _ := newTestRouter(t)

	code, body := get(t, router, "/komoditas")
	if code != http.StatusOK || len(body["data"].([]interface{})) != 2 {
		t.Errorf("/komoditas: status %d body %v", code, body)
	}
	code, body = get(t, router, "/daerah")
	region := body["data"].([]interface{})[0].(map[string]interface{})
	if code != http.StatusOK || region["nama_daerah"] != "Jakarta Pusat" {
		t.Errorf("/daerah: status %d body %v", code, body)
	}

	_, body = get(t, router, "/inflasi/1")
	latest := body["data"].(map[string]interface{})
	if latest["tanggal_inflasi"] != "01-12-2023" {
		t.Errorf("/inflasi/1 = %v", latest)
	}

	_, body = get(t, router, "/inflasiall/1")
	history := body["data"].([]interface{})
	if len(history) != 24 {
		t.Fatalf("/inflasiall/1 returned %d rows, want 24", len(history))
	}
	if history[0].(map[string]interface{})["tanggal_inflasi"] != "01-12-2023" {
		t.Errorf("history is not newest first: %v", history[0])
	}
}

func TestPrediction(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/prediksi/1", "/predict", "/predict?daerah_id=1"} {
		code, body := get(t, router, path)
		if code != http.StatusOK {
			t.Fatalf("GET %s: status %d body %v", path, code, body)
		}
		data := body["data"].(map[string]interface{})
		switch data["trend"] {
		case string(forecast.TrendIncreasing), string(forecast.TrendDecreasing), string(forecast.TrendStable):
		default:
			t.Errorf("GET %s: unexpected trend %v", path, data["trend"])
		}
		if body["predicted_inflation"] != data["predicted_inflation"] {
			t.Errorf("GET %s: top-level value differs from data", path)
		}
	}
}

func TestConnectionFailure(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.FailWith(errors.New("dial tcp 127.0.0.1:3306: connection refused"))

	for _, path := range []string{"/harga_komoditas", "/inflasi/1", "/prediksi/1", "/health"} {
		code, body := get(t, router, path)
		if code != http.StatusInternalServerError || body["error"] != "Database connection failed" {
			t.Errorf("GET %s: status %d body %v", path, code, body)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	code, body := get(t, router, "/health")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("/health: status %d body %v", code, body)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "harga_http_requests_total") {
		t.Errorf("/metrics: status %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	code, body := get(t, router, "/nope")
	if code != http.StatusNotFound || body["error"] != true {
		t.Errorf("status %d body %v", code, body)
	}
}
