// routes/dto.go
package routes

import (
	"github.com/LilVoxy/harga_pangan/models"
)

// PriceResponse строка цены в ответе API
type PriceResponse struct {
	DaerahID     int     `json:"daerah_id"`
	KomoditasID  int     `json:"komoditas_id"`
	TanggalHarga string  `json:"tanggal_harga"`
	Harga        float64 `json:"harga"`
}

// NormalPriceResponse точка ряда "нормальной цены"
type NormalPriceResponse struct {
	TanggalHarga string  `json:"tanggal_harga"`
	Harga        float64 `json:"harga"`
	HargaNormal  int64   `json:"harga_normal"`
}

// InflationResponse наблюдение инфляции
type InflationResponse struct {
	TingkatInflasi float64 `json:"tingkat_inflasi"`
	TanggalInflasi string  `json:"tanggal_inflasi"`
}

func toPriceResponse(p models.PriceRow) PriceResponse {
	return PriceResponse{
		DaerahID:     p.DaerahID,
		KomoditasID:  p.KomoditasID,
		TanggalHarga: formatDate(p.TanggalHarga),
		Harga:        p.Harga,
	}
}

func toPriceResponses(rows []models.PriceRow) []PriceResponse {
	out := make([]PriceResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPriceResponse(p))
	}
	return out
}

func toNormalPriceResponses(points []models.NormalPrice) []NormalPriceResponse {
	out := make([]NormalPriceResponse, 0, len(points))
	for _, p := range points {
		out = append(out, NormalPriceResponse{
			TanggalHarga: formatDate(p.Tanggal),
			Harga:        p.Harga,
			HargaNormal:  p.HargaNormal,
		})
	}
	return out
}

func toInflationResponse(row models.InflationRow) InflationResponse {
	return InflationResponse{
		TingkatInflasi: row.TingkatInflasi,
		TanggalInflasi: formatDate(row.TanggalInflasi),
	}
}
