package models

import (
	"context"
	"time"
)

// Commodity строка справочника komoditas
type Commodity struct {
	ID     int    `json:"id_komoditas"`
	Nama   string `json:"nama_komoditas"`
	ImgURL string `json:"img_url"`
}

// Region строка справочника daerah
type Region struct {
	ID     int    `json:"daerah_id"`
	Nama   string `json:"nama_daerah"`
	ImgURL string `json:"img_url"`
}

// Repository интерфейс доступа к хранилищу цен и инфляции (только чтение).
// Все методы возвращают строки, упорядоченные по дате по возрастанию, если не указано иное.
type Repository interface {
	// AllPrices возвращает все строки harga_komoditas
	AllPrices(ctx context.Context) ([]PriceRow, error)

	// PricesByRegion возвращает цены региона для указанных товаров (все, если список пуст)
	PricesByRegion(ctx context.Context, daerahID int, komoditasIDs []int) ([]PriceRow, error)

	// PricesSince возвращает цены пары регион/товар начиная с указанной даты
	PricesSince(ctx context.Context, daerahID, komoditasID int, since time.Time) ([]PriceRow, error)

	// LatestPriceDate возвращает последнюю дату цены пары регион/товар
	LatestPriceDate(ctx context.Context, daerahID, komoditasID int) (time.Time, error)

	// LatestPrice возвращает последнюю строку цены пары регион/товар
	LatestPrice(ctx context.Context, daerahID, komoditasID int) (*PriceRow, error)

	// InflationHistory возвращает всю историю инфляции региона
	InflationHistory(ctx context.Context, daerahID int) ([]InflationRow, error)

	// LatestInflation возвращает последнее наблюдение инфляции региона
	LatestInflation(ctx context.Context, daerahID int) (*InflationRow, error)

	// Commodities возвращает справочник товаров
	Commodities(ctx context.Context) ([]Commodity, error)

	// Regions возвращает справочник регионов
	Regions(ctx context.Context) ([]Region, error)

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}
