// routes/forecast_handlers.go
package routes

import (
	"log"
	"net/http"

	"github.com/LilVoxy/harga_pangan/forecast"
	"github.com/LilVoxy/harga_pangan/models"
)

// GetPredictionHandler возвращает прогноз инфляции региона на следующий период.
// Недостаток данных здесь внутренняя ошибка (500): регион сам по себе корректен.
func GetPredictionHandler(forecaster *forecast.Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daerahID, err := pathInt(r, "id_daerah")
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		servePrediction(w, r, forecaster, daerahID)
	}
}

// PredictHandler прогноз по параметру запроса daerah_id (по умолчанию 1)
func PredictHandler(forecaster *forecast.Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daerahID, err := queryInt(r, "daerah_id", 1)
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		servePrediction(w, r, forecaster, daerahID)
	}
}

func servePrediction(w http.ResponseWriter, r *http.Request, forecaster *forecast.Forecaster, daerahID int) {
	result, err := forecaster.Predict(r.Context(), daerahID)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"data":                result,
		"predicted_inflation": result.Value,
		"description":         result.Description,
	})
	log.Printf("✅ Прогноз для региона %d: %.2f (%s)", daerahID, result.Rounded, result.Trend)
}

// HealthHandler проверяет доступность хранилища
func HealthHandler(repo models.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		respondSuccess(w, map[string]interface{}{"status": "ok"})
	}
}
