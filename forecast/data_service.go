package forecast

import (
	"context"
	"time"

	"github.com/LilVoxy/harga_pangan/cache"
	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/models"
	"github.com/LilVoxy/harga_pangan/pipeline"
	"github.com/LilVoxy/harga_pangan/tracing"
	"github.com/LilVoxy/harga_pangan/utils"
)

// DataService сервис получения рядов из хранилища для конвейера прогноза
type DataService struct {
	repo       models.Repository
	frameCache cache.FrameCache
	metrics    *metrics.Metrics
	logger     *utils.AppLogger
	duplicates pipeline.DuplicatePolicy
}

// NewDataService создает сервис; frameCache может быть nil (кэш выключен)
func NewDataService(repo models.Repository, frameCache cache.FrameCache, m *metrics.Metrics, logger *utils.AppLogger) *DataService {
	if frameCache == nil {
		frameCache = cache.NopFrameCache{}
	}
	return &DataService{
		repo:       repo,
		frameCache: frameCache,
		metrics:    m,
		logger:     logger,
		duplicates: pipeline.KeepLast,
	}
}

// Repository возвращает хранилище, с которым работает сервис
func (s *DataService) Repository() models.Repository {
	return s.repo
}

// AlignedFrame возвращает выровненный кадр региона: из кэша или собранный заново
func (s *DataService) AlignedFrame(ctx context.Context, regionID int) (*pipeline.AlignedFrame, error) {
	ctx, span := tracing.StartSpan(ctx, "forecast.AlignedFrame", tracing.AttrRegionID.Int(regionID))
	defer span.End()

	if frame, ok := s.frameCache.Get(ctx, regionID); ok {
		s.metrics.CacheHits.Inc()
		span.SetAttributes(tracing.AttrCacheHit.Bool(true), tracing.AttrRows.Int(frame.Rows()))
		return frame, nil
	}
	s.metrics.CacheMisses.Inc()
	span.SetAttributes(tracing.AttrCacheHit.Bool(false))

	frame, err := s.buildFrame(ctx, regionID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(tracing.AttrRows.Int(frame.Rows()))
	s.frameCache.Set(ctx, regionID, frame)
	return frame, nil
}

// Refresh перестраивает кадр региона в обход кэша и сохраняет его в кэш
func (s *DataService) Refresh(ctx context.Context, regionID int) (*pipeline.AlignedFrame, error) {
	s.frameCache.Invalidate(ctx, regionID)
	return s.AlignedFrame(ctx, regionID)
}

func (s *DataService) buildFrame(ctx context.Context, regionID int) (*pipeline.AlignedFrame, error) {
	startTime := time.Now()

	// 1. Цены отслеживаемых товаров региона
	prices, err := s.repo.PricesByRegion(ctx, regionID, models.CanonicalCommodityIDs())
	if err != nil {
		return nil, err
	}

	// 2. История инфляции региона
	inflation, err := s.repo.InflationHistory(ctx, regionID)
	if err != nil {
		return nil, err
	}

	// 3. Выравнивание по датам цен
	opts := pipeline.DefaultAlignOptions(regionID)
	opts.Duplicates = s.duplicates
	frame, err := pipeline.Align(models.PriceObservations(prices), models.InflationObservations(inflation), opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Кадр региона %d собран: %d строк из %d цен и %d наблюдений инфляции за %v",
		regionID, frame.Rows(), len(prices), len(inflation), time.Since(startTime))
	return frame, nil
}

// LatestInflation возвращает последнее фактическое наблюдение инфляции региона
func (s *DataService) LatestInflation(ctx context.Context, regionID int) (*models.InflationRow, error) {
	return s.repo.LatestInflation(ctx, regionID)
}

// PriceWindow возвращает цены пары регион/товар за последние years лет.
// Окно отсчитывается от последней сохраненной даты ряда, а не от текущего времени.
func (s *DataService) PriceWindow(ctx context.Context, daerahID, komoditasID, years int) ([]models.PriceRow, error) {
	const op = "forecast.PriceWindow"

	if years < 1 {
		return nil, models.InvalidInput(op, "timeRange должен быть >= 1, получено %d", years)
	}

	latest, err := s.repo.LatestPriceDate(ctx, daerahID, komoditasID)
	if err != nil {
		return nil, err
	}

	prices, err := s.repo.PricesSince(ctx, daerahID, komoditasID, latest.AddDate(-years, 0, 0))
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, models.NoData(op, "нет цен для daerah_id %d и komoditas_id %d", daerahID, komoditasID)
	}
	return prices, nil
}

// NormalPrices возвращает цены пары регион/товар вместе с "нормальной" ценой (тренд HP-фильтра)
func (s *DataService) NormalPrices(ctx context.Context, daerahID, komoditasID, years int, lambda float64) ([]models.NormalPrice, error) {
	ctx, span := tracing.StartSpan(ctx, "forecast.NormalPrices",
		tracing.AttrRegionID.Int(daerahID),
		tracing.AttrCommodityID.Int(komoditasID),
	)
	defer span.End()

	prices, err := s.PriceWindow(ctx, daerahID, komoditasID, years)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	normal, err := pipeline.NormalPrices(prices, lambda)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(tracing.AttrRows.Int(len(normal)))
	return normal, nil
}
