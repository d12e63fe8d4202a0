// routes/price_handlers.go
package routes

import (
	"log"
	"net/http"

	"github.com/LilVoxy/harga_pangan/forecast"
	"github.com/LilVoxy/harga_pangan/models"
)

// normalPriceDescription описание ряда нормальных цен в ответе
const normalPriceDescription = "Harga normal hasil dari aplikasi HP filter pada harga komoditas di daerah tertentu"

// GetAllPricesHandler возвращает все строки цен
func GetAllPricesHandler(repo models.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prices, err := repo.AllPrices(r.Context())
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		if len(prices) == 0 {
			respondError(w, r, models.NoData("routes.GetAllPrices", "Data not found in harga_komoditas"), http.StatusBadRequest)
			return
		}

		respondSuccess(w, map[string]interface{}{
			"prices": toPriceResponses(prices),
		})
		log.Printf("✅ Отправлено %d строк цен", len(prices))
	}
}

// GetRegionPricesHandler возвращает цены всех товаров региона
func GetRegionPricesHandler(repo models.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daerahID, err := pathInt(r, "daerah_id")
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		prices, err := repo.PricesByRegion(r.Context(), daerahID, nil)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		if len(prices) == 0 {
			respondError(w, r, models.NoData("routes.GetRegionPrices", "Data not found for daerah_id: %d", daerahID), http.StatusBadRequest)
			return
		}

		respondSuccess(w, map[string]interface{}{
			"prices": toPriceResponses(prices),
		})
		log.Printf("✅ Отправлено %d строк цен для региона %d", len(prices), daerahID)
	}
}

// GetPriceSeriesHandler возвращает ряд цен пары регион/товар за timeRange лет (по умолчанию 1)
func GetPriceSeriesHandler(data *forecast.DataService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daerahID, komoditasID, years, err := seriesParams(r)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		prices, err := data.PriceWindow(r.Context(), daerahID, komoditasID, years)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		respondSuccess(w, map[string]interface{}{
			"prices": toPriceResponses(prices),
		})
		log.Printf("✅ Отправлено %d цен для региона %d и товара %d", len(prices), daerahID, komoditasID)
	}
}

// GetLastPriceHandler возвращает последнюю цену пары регион/товар
func GetLastPriceHandler(repo models.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daerahID, err := pathInt(r, "daerah_id")
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		komoditasID, err := pathInt(r, "komoditas_id")
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		price, err := repo.LatestPrice(r.Context(), daerahID, komoditasID)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		respondSuccess(w, map[string]interface{}{
			"data": toPriceResponse(*price),
		})
	}
}

// GetNormalPriceHandler возвращает ряд цен с трендом HP-фильтра ("нормальной ценой").
// Слишком короткий ряд считается ошибкой запроса (400).
func GetNormalPriceHandler(data *forecast.DataService, lambda float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daerahID, komoditasID, years, err := seriesParams(r)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		normal, err := data.NormalPrices(r.Context(), daerahID, komoditasID, years, lambda)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		respondSuccess(w, map[string]interface{}{
			"prices":      toNormalPriceResponses(normal),
			"description": normalPriceDescription,
		})
		log.Printf("✅ Отправлено %d нормальных цен для региона %d и товара %d", len(normal), daerahID, komoditasID)
	}
}

// seriesParams читает daerah_id, komoditas_id и timeRange
func seriesParams(r *http.Request) (daerahID, komoditasID, years int, err error) {
	if daerahID, err = pathInt(r, "daerah_id"); err != nil {
		return
	}
	if komoditasID, err = pathInt(r, "komoditas_id"); err != nil {
		return
	}
	years, err = queryInt(r, "timeRange", 1)
	return
}
