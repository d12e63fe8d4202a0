// app.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/LilVoxy/harga_pangan/cache"
	"github.com/LilVoxy/harga_pangan/config"
	"github.com/LilVoxy/harga_pangan/database"
	"github.com/LilVoxy/harga_pangan/forecast"
	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/tracing"
	"github.com/LilVoxy/harga_pangan/utils"
)

// app общие компоненты всех команд
type app struct {
	config     config.AppConfig
	logger     *utils.AppLogger
	tracer     *sdktrace.TracerProvider
	db         *sql.DB
	repo       *database.SQLRepository
	frameCache cache.FrameCache
	metrics    *metrics.Metrics
	data       *forecast.DataService
	forecaster *forecast.Forecaster
}

// newApp читает конфигурацию и подключает хранилище, кэш и (если нужно) модель
func newApp(ctx context.Context, withModel bool) (*app, error) {
	config.LoadEnv(envFile)
	cfg := config.GetConfig()
	if verbose {
		cfg.Log.Verbose = true
	}

	// 1. Логгер
	logger, err := utils.NewAppLogger(cfg.Log.Verbose, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	a := &app{config: cfg, logger: logger, metrics: metrics.Default()}

	// 2. Трассировка (выключена без OTEL_EXPORTER_OTLP_ENDPOINT)
	if a.tracer, err = tracing.InitTracer(ctx, cfg.Tracing); err != nil {
		a.close()
		return nil, fmt.Errorf("ошибка инициализации трассировки: %w", err)
	}

	// 3. Хранилище
	if a.db, err = config.ConnectDatabase(ctx, cfg.Database); err != nil {
		a.close()
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}
	logger.Info("✅ Подключение к базе данных %s@%s:%d установлено", cfg.Database.DBName, cfg.Database.Host, cfg.Database.Port)
	a.repo = database.NewSQLRepository(a.db, cfg.Database.Driver, cfg.Database.QueryTimeout, a.metrics)

	// 4. Кэш выровненных кадров
	if a.frameCache, err = cache.New(cfg.Cache); err != nil {
		a.close()
		return nil, fmt.Errorf("ошибка инициализации кэша: %w", err)
	}
	logger.Info("Кэш кадров: %s, TTL %v", cfg.Cache.Backend, cfg.Cache.TTL)

	a.data = forecast.NewDataService(a.repo, a.frameCache, a.metrics, logger)

	// 5. Модель загружается один раз
	if withModel {
		startTime := time.Now()
		model, err := forecast.LoadLSTMModel(cfg.Model.Path)
		if err != nil {
			a.close()
			return nil, err
		}
		timesteps, features := model.InputShape()
		logger.Info("✅ Модель %s загружена из %s: вход [%d, %d], %v", model.Name(), cfg.Model.Path, timesteps, features, time.Since(startTime))
		a.forecaster = forecast.NewForecaster(a.data, model, a.metrics, logger, forecast.DefaultConfig())
	}

	return a, nil
}

// close освобождает ресурсы в обратном порядке
func (a *app) close() {
	if a.frameCache != nil {
		if err := a.frameCache.Close(); err != nil {
			a.logger.Error("Ошибка закрытия кэша: %v", err)
		}
	}
	if a.db != nil {
		config.CloseDatabase(a.db)
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, a.tracer); err != nil {
			a.logger.Error("Ошибка остановки трассировки: %v", err)
		}
	}
	a.logger.Close()
}
