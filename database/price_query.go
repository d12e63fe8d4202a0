// database/price_query.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LilVoxy/harga_pangan/models"
)

const priceColumns = `daerah_id, komoditas_id, tanggal_harga, harga`

// Дубликаты (дата, товар) упорядочиваются по возрастанию цены,
// поэтому при KeepLast выбирается наибольшая цена дня
const pricesByRegionOrder = ` ORDER BY tanggal_harga, komoditas_id, harga`

// pricesByRegionQuery строит запрос цен региона по n товарам (по всем при n == 0)
func pricesByRegionQuery(n int) string {
	query := `
		SELECT ` + priceColumns + `
		FROM harga_komoditas
		WHERE daerah_id = ?`
	if n > 0 {
		query += ` AND komoditas_id IN (` + placeholders(n) + `)`
	}
	return query + pricesByRegionOrder
}

// AllPrices возвращает все строки harga_komoditas
func (r *SQLRepository) AllPrices(ctx context.Context) ([]models.PriceRow, error) {
	const op = "database.AllPrices"

	var prices []models.PriceRow
	err := r.run(ctx, op, func(ctx context.Context) error {
		var err error
		prices, err = r.scanPrices(ctx, `
			SELECT `+priceColumns+`
			FROM harga_komoditas
			ORDER BY daerah_id, komoditas_id, tanggal_harga, harga
		`)
		return err
	})
	return prices, err
}

// PricesByRegion возвращает цены региона по указанным товарам (по всем, если список пуст)
func (r *SQLRepository) PricesByRegion(ctx context.Context, daerahID int, komoditasIDs []int) ([]models.PriceRow, error) {
	const op = "database.PricesByRegion"

	query := pricesByRegionQuery(len(komoditasIDs))
	args := []interface{}{daerahID}
	for _, id := range komoditasIDs {
		args = append(args, id)
	}

	var prices []models.PriceRow
	err := r.run(ctx, op, func(ctx context.Context) error {
		var err error
		prices, err = r.scanPrices(ctx, query, args...)
		return err
	})
	return prices, err
}

// PricesSince возвращает цены пары регион/товар начиная с даты since включительно
func (r *SQLRepository) PricesSince(ctx context.Context, daerahID, komoditasID int, since time.Time) ([]models.PriceRow, error) {
	const op = "database.PricesSince"

	var prices []models.PriceRow
	err := r.run(ctx, op, func(ctx context.Context) error {
		var err error
		prices, err = r.scanPrices(ctx, `
			SELECT `+priceColumns+`
			FROM harga_komoditas
			WHERE daerah_id = ? AND komoditas_id = ? AND tanggal_harga >= ?
			ORDER BY tanggal_harga, harga
		`, daerahID, komoditasID, since)
		return err
	})
	return prices, err
}

// LatestPriceDate возвращает последнюю дату цены пары регион/товар
func (r *SQLRepository) LatestPriceDate(ctx context.Context, daerahID, komoditasID int) (time.Time, error) {
	const op = "database.LatestPriceDate"

	var latest sql.NullTime
	err := r.run(ctx, op, func(ctx context.Context) error {
		return r.queryRow(ctx, `
			SELECT MAX(tanggal_harga)
			FROM harga_komoditas
			WHERE daerah_id = ? AND komoditas_id = ?
		`, daerahID, komoditasID).Scan(&latest)
	})
	if err != nil {
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, models.NoData(op, "нет цен для daerah_id %d и komoditas_id %d", daerahID, komoditasID)
	}
	return latest.Time, nil
}

// LatestPrice возвращает последнюю строку цены пары регион/товар
func (r *SQLRepository) LatestPrice(ctx context.Context, daerahID, komoditasID int) (*models.PriceRow, error) {
	const op = "database.LatestPrice"

	var p models.PriceRow
	err := r.run(ctx, op, func(ctx context.Context) error {
		return r.queryRow(ctx, `
			SELECT `+priceColumns+`
			FROM harga_komoditas
			WHERE daerah_id = ? AND komoditas_id = ?
			ORDER BY tanggal_harga DESC, harga DESC
			LIMIT 1
		`, daerahID, komoditasID).Scan(&p.DaerahID, &p.KomoditasID, &p.TanggalHarga, &p.Harga)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NoData(op, "нет цен для daerah_id %d и komoditas_id %d", daerahID, komoditasID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLRepository) scanPrices(ctx context.Context, query string, args ...interface{}) ([]models.PriceRow, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []models.PriceRow
	for rows.Next() {
		var p models.PriceRow
		if err := rows.Scan(&p.DaerahID, &p.KomoditasID, &p.TanggalHarga, &p.Harga); err != nil {
			return nil, &scanError{err: err}
		}
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prices, nil
}
