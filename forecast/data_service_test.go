package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/LilVoxy/harga_pangan/cache"
	"github.com/LilVoxy/harga_pangan/database"
	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/models"
	"github.com/LilVoxy/harga_pangan/utils"
)

func TestDataService_AlignedFrameCache(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryRepository()
	seedRegion(repo, testRegion, 12)

	frameCache, err := cache.NewLRUFrameCache(8, time.Minute)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	s := NewDataService(repo, frameCache, metrics.New(prometheus.NewRegistry()), utils.NewDiscardLogger())

	first, err := s.AlignedFrame(ctx, testRegion)
	if err != nil {
		t.Fatalf("AlignedFrame failed: %v", err)
	}
	if first.Rows() != 12 || first.Width() != 6 {
		t.Fatalf("frame is %dx%d, want 12x6", first.Rows(), first.Width())
	}

	// Новые строки не видны до обновления кэша
	next := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	repo.AddPrices(models.PriceRow{DaerahID: testRegion, KomoditasID: 1, TanggalHarga: next, Harga: 12345})

	cached, err := s.AlignedFrame(ctx, testRegion)
	if err != nil {
		t.Fatalf("AlignedFrame failed: %v", err)
	}
	if cached.Rows() != 12 {
		t.Errorf("cached frame has %d rows, want 12", cached.Rows())
	}
	if stats := frameCache.Stats(); stats.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", stats.Hits)
	}

	refreshed, err := s.Refresh(ctx, testRegion)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.Rows() != 13 {
		t.Errorf("refreshed frame has %d rows, want 13", refreshed.Rows())
	}
	// Новая дата без инфляции и без прочих товаров остается с пропусками
	last := refreshed.Cells[12]
	if !last[0].Valid || last[1].Valid || last[refreshed.InflationColumn()].Valid {
		t.Errorf("unexpected cells in new row: %+v", last)
	}
}

func TestDataService_PriceWindow(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryRepository()
	seedRegion(repo, testRegion, 36)
	s := NewDataService(repo, nil, metrics.New(prometheus.NewRegistry()), utils.NewDiscardLogger())

	// Последняя дата 2024-12-01, окно в один год начинается с 2023-12-01 включительно
	prices, err := s.PriceWindow(ctx, testRegion, 1, 1)
	if err != nil {
		t.Fatalf("PriceWindow failed: %v", err)
	}
	if len(prices) != 13 {
		t.Errorf("PriceWindow returned %d rows, want 13", len(prices))
	}
	wantFirst := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	if !prices[0].TanggalHarga.Equal(wantFirst) {
		t.Errorf("first date = %v, want %v", prices[0].TanggalHarga, wantFirst)
	}

	all, err := s.PriceWindow(ctx, testRegion, 1, 10)
	if err != nil || len(all) != 36 {
		t.Errorf("PriceWindow(10 years) = %d rows, err %v; want 36", len(all), err)
	}

	if _, err := s.PriceWindow(ctx, testRegion, 1, 0); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("timeRange 0 err = %v, want InvalidInput", err)
	}
	if _, err := s.PriceWindow(ctx, 999, 1, 1); !errors.Is(err, models.ErrNoData) {
		t.Errorf("unknown region err = %v, want NoData", err)
	}
}

func TestDataService_NormalPrices(t *testing.T) {
	repo := database.NewMemoryRepository()
	seedRegion(repo, testRegion, 24)
	s := NewDataService(repo, nil, metrics.New(prometheus.NewRegistry()), utils.NewDiscardLogger())

	normal, err := s.NormalPrices(context.Background(), testRegion, 2, 5, 1600)
	if err != nil {
		t.Fatalf("NormalPrices failed: %v", err)
	}
	if len(normal) != 24 {
		t.Fatalf("NormalPrices returned %d points, want 24", len(normal))
	}
	for i := 1; i < len(normal); i++ {
		if !normal[i-1].Tanggal.Before(normal[i].Tanggal) {
			t.Fatalf("dates are not ascending at %d", i)
		}
	}
}

func TestDataService_DuplicatePricesResolveToHighest(t *testing.T) {
	ctx := context.Background()
	d := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	for _, order := range [][]float64{{100, 120}, {120, 100}} {
		repo := database.NewMemoryRepository()
		for _, price := range order {
			repo.AddPrices(models.PriceRow{DaerahID: testRegion, KomoditasID: 1, TanggalHarga: d, Harga: price})
		}
		repo.AddInflation(models.InflationRow{IDDaerah: testRegion, TanggalInflasi: d, TingkatInflasi: 2.5})
		s := NewDataService(repo, nil, metrics.New(prometheus.NewRegistry()), utils.NewDiscardLogger())

		frame, err := s.AlignedFrame(ctx, testRegion)
		if err != nil {
			t.Fatalf("AlignedFrame failed: %v", err)
		}
		if got := frame.Cells[0][0]; !got.Valid || got.Value != 120 {
			t.Errorf("insert order %v: cell = %+v, want 120", order, got)
		}
	}
}
