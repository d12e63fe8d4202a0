package models

import (
	"time"
)

// Идентификаторы отслеживаемых товаров в каноническом порядке.
// Порядок определяет порядок колонок во всех матрицах признаков.
const (
	KomoditasBawangMerah        = 1
	KomoditasBawangPutih        = 2
	KomoditasCabaiMerahKeriting = 3
	KomoditasCabaiRawitHijau    = 4
	KomoditasDagingAyam         = 5
)

// CanonicalCommodityIDs возвращает идентификаторы товаров в каноническом порядке 1..5
func CanonicalCommodityIDs() []int {
	return []int{
		KomoditasBawangMerah,
		KomoditasBawangPutih,
		KomoditasCabaiMerahKeriting,
		KomoditasCabaiRawitHijau,
		KomoditasDagingAyam,
	}
}

// CommodityColumnNames возвращает названия колонок признаков для товаров
func CommodityColumnNames() []string {
	return []string{
		"Bawang Merah",
		"Bawang Putih",
		"Cabai Merah Keriting",
		"Cabai Rawit Hijau",
		"Daging Ayam",
	}
}

// InflationColumnName название колонки уровня инфляции
const InflationColumnName = "Tingkat Inflasi"

// PriceRow строка таблицы harga_komoditas
type PriceRow struct {
	DaerahID     int       `json:"daerah_id"`
	KomoditasID  int       `json:"komoditas_id"`
	TanggalHarga time.Time `json:"tanggal_harga"`
	Harga        float64   `json:"harga"`
}

// InflationRow строка таблицы inflasi
type InflationRow struct {
	IDDaerah       int       `json:"id_daerah"`
	TanggalInflasi time.Time `json:"tanggal_inflasi"`
	TingkatInflasi float64   `json:"tingkat_inflasi"`
}

// PriceObservation одно наблюдение цены (дата, товар, значение)
type PriceObservation struct {
	Date        time.Time
	CommodityID int
	Price       float64
}

// InflationObservation одно наблюдение уровня инфляции
type InflationObservation struct {
	Date time.Time
	Rate float64
}

// NormalPrice точка ряда "нормальной цены" (тренд HP-фильтра)
type NormalPrice struct {
	Tanggal     time.Time `json:"tanggal_harga"`
	Harga       float64   `json:"harga"`
	HargaNormal int64     `json:"harga_normal"`
}

// PriceObservations преобразует строки таблицы в наблюдения для выравнивания
func PriceObservations(rows []PriceRow) []PriceObservation {
	observations := make([]PriceObservation, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, PriceObservation{
			Date:        row.TanggalHarga,
			CommodityID: row.KomoditasID,
			Price:       row.Harga,
		})
	}
	return observations
}

// InflationObservations преобразует строки таблицы inflasi в наблюдения
func InflationObservations(rows []InflationRow) []InflationObservation {
	observations := make([]InflationObservation, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, InflationObservation{
			Date: row.TanggalInflasi,
			Rate: row.TingkatInflasi,
		})
	}
	return observations
}
