// routes/reference_handlers.go
package routes

import (
	"net/http"

	"github.com/LilVoxy/harga_pangan/models"
)

// GetCommoditiesHandler возвращает справочник товаров
func GetCommoditiesHandler(repo models.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commodities, err := repo.Commodities(r.Context())
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		if len(commodities) == 0 {
			respondError(w, r, models.NoData("routes.GetCommodities", "No data found in komoditas table"), http.StatusBadRequest)
			return
		}
		respondSuccess(w, map[string]interface{}{"data": commodities})
	}
}

// GetRegionsHandler возвращает справочник регионов
func GetRegionsHandler(repo models.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regions, err := repo.Regions(r.Context())
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		if len(regions) == 0 {
			respondError(w, r, models.NoData("routes.GetRegions", "No data found in daerah table"), http.StatusBadRequest)
			return
		}
		respondSuccess(w, map[string]interface{}{"data": regions})
	}
}

// GetLatestInflationHandler возвращает последнее наблюдение инфляции региона
func GetLatestInflationHandler(repo models.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daerahID, err := pathInt(r, "id_daerah")
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		latest, err := repo.LatestInflation(r.Context(), daerahID)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		respondSuccess(w, map[string]interface{}{"data": toInflationResponse(*latest)})
	}
}

// GetInflationHistoryHandler возвращает историю инфляции региона, новые наблюдения первыми
func GetInflationHistoryHandler(repo models.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daerahID, err := pathInt(r, "id_daerah")
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		history, err := repo.InflationHistory(r.Context(), daerahID)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		if len(history) == 0 {
			respondError(w, r, models.NoData("routes.GetInflationHistory", "No data found for id_daerah: %d", daerahID), http.StatusBadRequest)
			return
		}

		// Хранилище отдает историю по возрастанию даты
		data := make([]InflationResponse, len(history))
		for i, row := range history {
			data[len(history)-1-i] = toInflationResponse(row)
		}
		respondSuccess(w, map[string]interface{}{"data": data})
	}
}
