// scheduler/warmer.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/LilVoxy/harga_pangan/forecast"
	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/models"
	"github.com/LilVoxy/harga_pangan/utils"
)

// Publisher получатель свежих прогнозов (лента WebSocket)
type Publisher interface {
	Publish(result *forecast.Result)
}

// Warmer периодически перестраивает кадры регионов в кэше и пересчитывает их прогнозы
type Warmer struct {
	data       *forecast.DataService
	forecaster *forecast.Forecaster
	publisher  Publisher
	metrics    *metrics.Metrics
	logger     *utils.AppLogger
	interval   time.Duration
}

// NewWarmer создает прогрев; publisher может быть nil
func NewWarmer(data *forecast.DataService, forecaster *forecast.Forecaster, publisher Publisher, m *metrics.Metrics, logger *utils.AppLogger, interval time.Duration) *Warmer {
	return &Warmer{
		data:       data,
		forecaster: forecaster,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		interval:   interval,
	}
}

// RunOnce обновляет все регионы справочника. Ошибка одного региона не прерывает обход.
func (w *Warmer) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	err := w.runOnce(ctx)
	w.metrics.WarmRuns.WithLabelValues(metrics.ForecastResult(err)).Inc()
	w.logger.LogDuration("Прогрев кэша", startTime)
	return err
}

func (w *Warmer) runOnce(ctx context.Context) error {
	// 1. Список регионов
	regions, err := w.data.Repository().Regions(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения списка регионов: %w", err)
	}

	// 2. Кадр и прогноз по каждому региону
	var errs []error
	published := 0
	for _, region := range regions {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := w.data.Refresh(ctx, region.ID); err != nil {
			if models.KindOf(err) == models.KindNoData {
				w.logger.Debug("Регион %d пропущен: %v", region.ID, err)
				continue
			}
			errs = append(errs, fmt.Errorf("регион %d: %w", region.ID, err))
			continue
		}

		result, err := w.forecaster.Predict(ctx, region.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("регион %d: %w", region.ID, err))
			continue
		}

		// 3. Рассылка подписчикам
		if w.publisher != nil {
			w.publisher.Publish(result)
		}
		published++
	}

	w.logger.Info("Прогрев завершен: регионов %d, прогнозов %d, ошибок %d", len(regions), published, len(errs))
	return errors.Join(errs...)
}

// Start запускает прогрев по расписанию и блокируется до отмены контекста
func (w *Warmer) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("Прогрев кэша выключен")
		return
	}

	scheduler := gocron.NewScheduler(time.UTC)
	w.logger.Info("Запуск прогрева кэша с интервалом %v", w.interval)

	_, err := scheduler.Every(w.interval).Do(func() {
		if err := w.RunOnce(ctx); err != nil {
			w.logger.Error("Ошибка при прогреве кэша: %v", err)
		}
	})
	if err != nil {
		w.logger.Error("Ошибка при настройке планировщика: %v", err)
		return
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	scheduler.Stop()
	w.logger.Info("Прогрев кэша остановлен")
}
