// database/inflation_query.go
package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/LilVoxy/harga_pangan/models"
)

// InflationHistory возвращает историю инфляции региона по возрастанию даты
func (r *SQLRepository) InflationHistory(ctx context.Context, daerahID int) ([]models.InflationRow, error) {
	const op = "database.InflationHistory"

	var history []models.InflationRow
	err := r.run(ctx, op, func(ctx context.Context) error {
		rows, err := r.query(ctx, `
			SELECT id_daerah, tanggal_inflasi, tingkat_inflasi
			FROM inflasi
			WHERE id_daerah = ?
			ORDER BY tanggal_inflasi
		`, daerahID)
		if err != nil {
			return err
		}
		defer rows.Close()

		history = history[:0]
		for rows.Next() {
			var row models.InflationRow
			if err := rows.Scan(&row.IDDaerah, &row.TanggalInflasi, &row.TingkatInflasi); err != nil {
				return &scanError{err: err}
			}
			history = append(history, row)
		}
		return rows.Err()
	})
	return history, err
}

// LatestInflation возвращает последнее наблюдение инфляции региона
func (r *SQLRepository) LatestInflation(ctx context.Context, daerahID int) (*models.InflationRow, error) {
	const op = "database.LatestInflation"

	var row models.InflationRow
	err := r.run(ctx, op, func(ctx context.Context) error {
		return r.queryRow(ctx, `
			SELECT id_daerah, tanggal_inflasi, tingkat_inflasi
			FROM inflasi
			WHERE id_daerah = ?
			ORDER BY tanggal_inflasi DESC
			LIMIT 1
		`, daerahID).Scan(&row.IDDaerah, &row.TanggalInflasi, &row.TingkatInflasi)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NoData(op, "нет данных об инфляции для id_daerah %d", daerahID)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
