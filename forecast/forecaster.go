package forecast

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"

	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/models"
	"github.com/LilVoxy/harga_pangan/pipeline"
	"github.com/LilVoxy/harga_pangan/tracing"
	"github.com/LilVoxy/harga_pangan/utils"
)

// Trend направление прогноза относительно последней фактической инфляции
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Classify сравнивает прогноз с последним фактическим значением (строгое сравнение)
func Classify(predicted, latest float64) Trend {
	switch {
	case predicted > latest:
		return TrendIncreasing
	case predicted < latest:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Config конфигурация прогноза
type Config struct {
	// Параметры кадра обучения с учителем
	Supervised pipeline.SupervisedOptions
	// Количество знаков после запятой в отображаемом прогнозе
	DisplayPlaces int32
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		Supervised:    pipeline.DefaultSupervisedOptions(),
		DisplayPlaces: 2,
	}
}

// Result результат прогноза инфляции на следующий период.
// Value хранит прогноз без округления, Rounded - значение для отображения.
type Result struct {
	DaerahID     int       `json:"daerah_id"`
	Value        float64   `json:"predicted_inflation"`
	Rounded      float64   `json:"prediksi"`
	Latest       float64   `json:"inflasi_terakhir"`
	LatestDate   time.Time `json:"tanggal_inflasi_terakhir"`
	Trend        Trend     `json:"trend"`
	Description  string    `json:"description"`
	DataDate     time.Time `json:"tanggal_data"`
	GeneratedAt  time.Time `json:"generated_at"`
	TrainingRows int       `json:"jumlah_data"`
}

// Forecaster строит прогноз инфляции региона на один шаг вперед
type Forecaster struct {
	data    *DataService
	model   Model
	metrics *metrics.Metrics
	logger  *utils.AppLogger
	config  Config
}

// NewForecaster создает прогнозировщик. Модель загружается один раз и разделяется между запросами.
func NewForecaster(data *DataService, model Model, m *metrics.Metrics, logger *utils.AppLogger, config Config) *Forecaster {
	return &Forecaster{
		data:    data,
		model:   model,
		metrics: m,
		logger:  logger,
		config:  config,
	}
}

// Predict выполняет прогноз инфляции для региона
func (f *Forecaster) Predict(ctx context.Context, regionID int) (*Result, error) {
	const op = "forecast.Predict"

	startTime := time.Now()
	ctx, span := tracing.StartSpan(ctx, op, tracing.AttrRegionID.Int(regionID))
	defer span.End()

	result, err := f.predict(ctx, regionID)
	f.metrics.Forecasts.WithLabelValues(metrics.ForecastResult(err)).Inc()
	f.metrics.ForecastDuration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		tracing.RecordError(span, err)
		f.logger.Error("Прогноз для региона %d не построен: %v", regionID, err)
		return nil, err
	}

	f.metrics.PredictedValue.WithLabelValues(strconv.Itoa(regionID)).Set(result.Value)
	span.SetAttributes(
		tracing.AttrPrediction.Float64(result.Value),
		tracing.AttrTrend.String(string(result.Trend)),
	)
	f.logger.Info("Прогноз для региона %d: %.4f (%s), длительность %v", regionID, result.Value, result.Trend, time.Since(startTime))
	return result, nil
}

func (f *Forecaster) predict(ctx context.Context, regionID int) (*Result, error) {
	const op = "forecast.Predict"

	// 1. Выровненный кадр региона
	frame, err := f.data.AlignedFrame(ctx, regionID)
	if err != nil {
		return nil, err
	}

	// 2. Нормализация: признаки товаров и инфляция с раздельными состояниями
	scaledFeatures, _, err := pipeline.FitTransform(frame.CommodityMatrix())
	if err != nil {
		return nil, err
	}
	scaledInflation, inflationState, err := pipeline.FitTransform(frame.InflationMatrix())
	if err != nil {
		return nil, err
	}
	var combined mat.Dense
	combined.Augment(scaledFeatures, scaledInflation)

	// 3. Кадр "t-1 -> t"; цель хранится отдельным блоком и в модель не передается
	supervised, err := pipeline.BuildSupervised(&combined, frame.Columns, f.config.Supervised)
	if err != nil {
		return nil, err
	}

	// 4. Вход модели: последняя строка без пропусков во входном блоке, проверка формы до вызова
	row, missing := supervised.LastCompleteInput()
	if row < 0 {
		return nil, models.InsufficientData(op, "нет строки без пропусков во входных колонках %s", strings.Join(missing, ", "))
	}
	input, err := f.modelInput(op, mat.Row(nil, row, supervised.Input.Values))
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Вход модели для региона %d: %v", regionID, input)

	// 5. Прямой проход модели
	output, err := f.model.Predict(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка модели: %w", op, err)
	}
	if len(output) == 0 {
		return nil, &models.Error{Kind: models.KindModelInputShape, Op: op, Message: "модель вернула пустой результат"}
	}

	// 6. Обратное преобразование состоянием инфляции
	value, err := inflationState.InverseValue(0, output[0])
	if err != nil {
		return nil, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%s: модель вернула некорректное значение %v", op, output[0])
	}

	// 7. Сравнение с последней фактической инфляцией из хранилища
	latest, err := f.data.LatestInflation(ctx, regionID)
	if err != nil {
		return nil, err
	}
	trend := Classify(value, latest.TingkatInflasi)

	rounded := decimal.NewFromFloat(value).Round(f.config.DisplayPlaces)
	last := supervised.SourceRows[row]

	return &Result{
		DaerahID:     regionID,
		Value:        value,
		Rounded:      rounded.InexactFloat64(),
		Latest:       latest.TingkatInflasi,
		LatestDate:   latest.TanggalInflasi,
		Trend:        trend,
		Description:  Describe(rounded, decimal.NewFromFloat(latest.TingkatInflasi), trend),
		DataDate:     frame.Dates[last],
		GeneratedAt:  time.Now().UTC(),
		TrainingRows: supervised.Rows(),
	}, nil
}

// modelInput приводит строку входного блока к форме [timesteps][features]
func (f *Forecaster) modelInput(op string, row []float64) ([][]float64, error) {
	timesteps, features := f.model.InputShape()
	lagIn := f.config.Supervised.LagIn

	if lagIn != timesteps {
		return nil, models.ModelInputShape(op, timesteps*features, len(row))
	}
	width := len(row) / lagIn
	if width != features {
		return nil, models.ModelInputShape(op, features, width)
	}

	input := make([][]float64, timesteps)
	for t := range input {
		input[t] = row[t*width : (t+1)*width]
	}
	return input, nil
}

// Describe формирует описание прогноза для пользователя
func Describe(predicted, latest decimal.Decimal, trend Trend) string {
	var direction string
	switch trend {
	case TrendIncreasing:
		direction = "naik"
	case TrendDecreasing:
		direction = "turun"
	default:
		direction = "stabil"
	}
	return fmt.Sprintf(
		"Tingkat inflasi periode berikutnya diprediksi %s%%, %s dibandingkan inflasi terakhir %s%%",
		predicted.StringFixed(2), direction, latest.StringFixed(2),
	)
}
