// database/reference_query.go
package database

import (
	"context"

	"github.com/LilVoxy/harga_pangan/models"
)

// Commodities возвращает справочник товаров
func (r *SQLRepository) Commodities(ctx context.Context) ([]models.Commodity, error) {
	const op = "database.Commodities"

	var commodities []models.Commodity
	err := r.run(ctx, op, func(ctx context.Context) error {
		rows, err := r.query(ctx, `
			SELECT id_komoditas, nama_komoditas, COALESCE(img_url, '')
			FROM komoditas
			ORDER BY id_komoditas
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		commodities = commodities[:0]
		for rows.Next() {
			var c models.Commodity
			if err := rows.Scan(&c.ID, &c.Nama, &c.ImgURL); err != nil {
				return &scanError{err: err}
			}
			commodities = append(commodities, c)
		}
		return rows.Err()
	})
	return commodities, err
}

// Regions возвращает справочник регионов
func (r *SQLRepository) Regions(ctx context.Context) ([]models.Region, error) {
	const op = "database.Regions"

	var regions []models.Region
	err := r.run(ctx, op, func(ctx context.Context) error {
		rows, err := r.query(ctx, `
			SELECT daerah_id, nama_daerah, COALESCE(img_url, '')
			FROM daerah
			ORDER BY daerah_id
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		regions = regions[:0]
		for rows.Next() {
			var reg models.Region
			if err := rows.Scan(&reg.ID, &reg.Nama, &reg.ImgURL); err != nil {
				return &scanError{err: err}
			}
			regions = append(regions, reg)
		}
		return rows.Err()
	})
	return regions, err
}
