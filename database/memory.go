// database/memory.go
package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LilVoxy/harga_pangan/models"
)

// MemoryRepository хранилище в памяти с той же семантикой, что и SQLRepository.
// Используется как тестовый двойник хранилища.
type MemoryRepository struct {
	mu          sync.RWMutex
	prices      []models.PriceRow
	inflation   []models.InflationRow
	commodities []models.Commodity
	regions     []models.Region
	pingErr     error
}

// NewMemoryRepository создает пустое хранилище
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// AddPrices добавляет строки цен
func (m *MemoryRepository) AddPrices(rows ...models.PriceRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = append(m.prices, rows...)
}

// AddInflation добавляет наблюдения инфляции
func (m *MemoryRepository) AddInflation(rows ...models.InflationRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflation = append(m.inflation, rows...)
}

// SetReference задает справочники товаров и регионов
func (m *MemoryRepository) SetReference(commodities []models.Commodity, regions []models.Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commodities = commodities
	m.regions = regions
}

// FailWith заставляет все запросы возвращать ошибку соединения (nil - снять сбой)
func (m *MemoryRepository) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *MemoryRepository) check(op string) error {
	if m.pingErr != nil {
		return models.Connection(op, m.pingErr)
	}
	return nil
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.check("database.Ping")
}

func (m *MemoryRepository) AllPrices(ctx context.Context) ([]models.PriceRow, error) {
	rows, err := m.filterPrices("database.AllPrices", func(models.PriceRow) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DaerahID != rows[j].DaerahID {
			return rows[i].DaerahID < rows[j].DaerahID
		}
		return rows[i].KomoditasID < rows[j].KomoditasID
	})
	return rows, nil
}

func (m *MemoryRepository) PricesByRegion(ctx context.Context, daerahID int, komoditasIDs []int) ([]models.PriceRow, error) {
	wanted := make(map[int]bool, len(komoditasIDs))
	for _, id := range komoditasIDs {
		wanted[id] = true
	}
	rows, err := m.filterPrices("database.PricesByRegion", func(p models.PriceRow) bool {
		return p.DaerahID == daerahID && (len(wanted) == 0 || wanted[p.KomoditasID])
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].TanggalHarga.Equal(rows[j].TanggalHarga) {
			return rows[i].TanggalHarga.Before(rows[j].TanggalHarga)
		}
		if rows[i].KomoditasID != rows[j].KomoditasID {
			return rows[i].KomoditasID < rows[j].KomoditasID
		}
		return rows[i].Harga < rows[j].Harga
	})
	return rows, nil
}

func (m *MemoryRepository) PricesSince(ctx context.Context, daerahID, komoditasID int, since time.Time) ([]models.PriceRow, error) {
	return m.filterPrices("database.PricesSince", func(p models.PriceRow) bool {
		return p.DaerahID == daerahID && p.KomoditasID == komoditasID && !p.TanggalHarga.Before(since)
	})
}

func (m *MemoryRepository) LatestPriceDate(ctx context.Context, daerahID, komoditasID int) (time.Time, error) {
	p, err := m.LatestPrice(ctx, daerahID, komoditasID)
	if err != nil {
		return time.Time{}, err
	}
	return p.TanggalHarga, nil
}

func (m *MemoryRepository) LatestPrice(ctx context.Context, daerahID, komoditasID int) (*models.PriceRow, error) {
	const op = "database.LatestPrice"

	rows, err := m.filterPrices(op, func(p models.PriceRow) bool {
		return p.DaerahID == daerahID && p.KomoditasID == komoditasID
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NoData(op, "нет цен для daerah_id %d и komoditas_id %d", daerahID, komoditasID)
	}
	last := rows[len(rows)-1]
	return &last, nil
}

func (m *MemoryRepository) InflationHistory(ctx context.Context, daerahID int) ([]models.InflationRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("database.InflationHistory"); err != nil {
		return nil, err
	}

	var rows []models.InflationRow
	for _, r := range m.inflation {
		if r.IDDaerah == daerahID {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TanggalInflasi.Before(rows[j].TanggalInflasi)
	})
	return rows, nil
}

func (m *MemoryRepository) LatestInflation(ctx context.Context, daerahID int) (*models.InflationRow, error) {
	const op = "database.LatestInflation"

	rows, err := m.InflationHistory(ctx, daerahID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NoData(op, "нет данных об инфляции для id_daerah %d", daerahID)
	}
	last := rows[len(rows)-1]
	return &last, nil
}

func (m *MemoryRepository) Commodities(ctx context.Context) ([]models.Commodity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("database.Commodities"); err != nil {
		return nil, err
	}
	return append([]models.Commodity(nil), m.commodities...), nil
}

func (m *MemoryRepository) Regions(ctx context.Context) ([]models.Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("database.Regions"); err != nil {
		return nil, err
	}
	return append([]models.Region(nil), m.regions...), nil
}

// filterPrices возвращает подходящие строки, упорядоченные по дате, затем по цене
func (m *MemoryRepository) filterPrices(op string, keep func(models.PriceRow) bool) ([]models.PriceRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(op); err != nil {
		return nil, err
	}

	var rows []models.PriceRow
	for _, p := range m.prices {
		if keep(p) {
			rows = append(rows, p)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].TanggalHarga.Equal(rows[j].TanggalHarga) {
			return rows[i].TanggalHarga.Before(rows[j].TanggalHarga)
		}
		return rows[i].Harga < rows[j].Harga
	})
	return rows, nil
}
