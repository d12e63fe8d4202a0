package pipeline

import (
	"math"

	"github.com/LilVoxy/harga_pangan/models"
	"gonum.org/v1/gonum/mat"
)

// ScalerState границы min/max по каждой колонке, полученные при обучении нормализации.
// Прямое и обратное преобразование должны использовать одно и то же состояние.
type ScalerState struct {
	Min []float64
	Max []float64
}

// Width возвращает количество колонок, на которых обучено состояние
func (s *ScalerState) Width() int {
	return len(s.Min)
}

// FitTransform обучает min-max нормализацию по колонкам и приводит значения к [0, 1].
// Отсутствующие значения (NaN) не участвуют в расчете границ и остаются NaN.
func FitTransform(data mat.Matrix) (*mat.Dense, *ScalerState, error) {
	const op = "pipeline.FitTransform"

	if data == nil {
		return nil, nil, models.InsufficientData(op, "пустая матрица")
	}

	rows, cols := data.Dims()
	state := &ScalerState{
		Min: make([]float64, cols),
		Max: make([]float64, cols),
	}

	for j := 0; j < cols; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < rows; i++ {
			v := data.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if math.IsInf(lo, 1) {
			// В колонке нет ни одного значения
			lo, hi = 0, 0
		}
		state.Min[j] = lo
		state.Max[j] = hi
	}

	scaled, err := state.Transform(data)
	if err != nil {
		return nil, nil, err
	}
	return scaled, state, nil
}

// Transform применяет обученное состояние к матрице той же ширины
func (s *ScalerState) Transform(data mat.Matrix) (*mat.Dense, error) {
	rows, cols := data.Dims()
	if cols != s.Width() {
		return nil, models.InvalidInput("pipeline.Transform", "состояние обучено на %d колонках, передано %d", s.Width(), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		span := s.Max[j] - s.Min[j]
		for i := 0; i < rows; i++ {
			v := data.At(i, j)
			switch {
			case math.IsNaN(v):
				out.Set(i, j, v)
			case span == 0:
				// Постоянная колонка отображается в ноль
				out.Set(i, j, 0)
			default:
				out.Set(i, j, (v-s.Min[j])/span)
			}
		}
	}
	return out, nil
}

// InverseTransform возвращает нормализованные значения к исходному масштабу
func (s *ScalerState) InverseTransform(scaled mat.Matrix) (*mat.Dense, error) {
	rows, cols := scaled.Dims()
	if cols != s.Width() {
		return nil, models.InvalidInput("pipeline.InverseTransform", "состояние обучено на %d колонках, передано %d", s.Width(), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, s.inverse(j, scaled.At(i, j)))
		}
	}
	return out, nil
}

// InverseValue возвращает к исходному масштабу одно значение колонки col
func (s *ScalerState) InverseValue(col int, v float64) (float64, error) {
	if col < 0 || col >= s.Width() {
		return 0, models.InvalidInput("pipeline.InverseValue", "колонка %d вне диапазона [0, %d)", col, s.Width())
	}
	return s.inverse(col, v), nil
}

func (s *ScalerState) inverse(col int, v float64) float64 {
	return v*(s.Max[col]-s.Min[col]) + s.Min[col]
}
