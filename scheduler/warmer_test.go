package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/LilVoxy/harga_pangan/cache"
	"github.com/LilVoxy/harga_pangan/database"
	"github.com/LilVoxy/harga_pangan/forecast"
	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/models"
	"github.com/LilVoxy/harga_pangan/utils"
)

type collector struct {
	mu      sync.Mutex
	results []*forecast.Result
}

func (c *collector) Publish(result *forecast.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func seed(repo *database.MemoryRepository, regionID int) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		date := start.AddDate(0, i, 0)
		for _, k := range models.CanonicalCommodityIDs() {
			repo.AddPrices(models.PriceRow{DaerahID: regionID, KomoditasID: k, TanggalHarga: date, Harga: float64(1000*k + 10*i)})
		}
		repo.AddInflation(models.InflationRow{IDDaerah: regionID, TanggalInflasi: date, TingkatInflasi: 2 + 0.1*float64(i%4)})
	}
}

func newWarmer(t *testing.T, repo models.Repository, pub Publisher, interval time.Duration) *Warmer {
	t.Helper()

	m := metrics.New(prometheus.NewRegistry())
	logger := utils.NewDiscardLogger()
	frameCache, err := cache.NewLRUFrameCache(16, time.Hour)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	data := forecast.NewDataService(repo, frameCache, m, logger)
	model := forecast.ModelFunc{
		Timesteps: 1,
		Features:  6,
		Fn: func(context.Context, [][]float64) ([]float64, error) {
			return []float64{1}, nil
		},
	}
	f := forecast.NewForecaster(data, model, m, logger, forecast.DefaultConfig())
	return NewWarmer(data, f, pub, m, logger, interval)
}

func TestWarmer_RunOnce(t *testing.T) {
	repo := database.NewMemoryRepository()
	seed(repo, 1)
	seed(repo, 2)
	// Регион 3 без данных пропускается без ошибки
	repo.SetReference(nil, []models.Region{{ID: 1}, {ID: 2}, {ID: 3}})

	pub := &collector{}
	if err := newWarmer(t, repo, pub, 0).RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if pub.count() != 2 {
		t.Fatalf("published %d forecasts, want 2", pub.count())
	}
	for _, r := range pub.results {
		// Модель возвращает 1, т.е. максимум нормализованной инфляции (2.3)
		if r.Value < 2.29 || r.Value > 2.31 {
			t.Errorf("region %d value = %v, want 2.3", r.DaerahID, r.Value)
		}
	}
}

func TestWarmer_RunOnceFailure(t *testing.T) {
	repo := database.NewMemoryRepository()
	repo.SetReference(nil, []models.Region{{ID: 1}})
	repo.FailWith(errors.New("connection refused"))

	err := newWarmer(t, repo, nil, 0).RunOnce(context.Background())
	if !errors.Is(err, models.ErrConnection) {
		t.Errorf("err = %v, want ConnectionError", err)
	}
}

func TestWarmer_Start(t *testing.T) {
	repo := database.NewMemoryRepository()
	seed(repo, 1)
	repo.SetReference(nil, []models.Region{{ID: 1}})

	pub := &collector{}
	w := newWarmer(t, repo, pub, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// gocron запускает задачу сразу при старте
	deadline := time.Now().Add(3 * time.Second)
	for pub.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if pub.count() == 0 {
		t.Error("scheduled warm-up did not publish any forecast")
	}
}
