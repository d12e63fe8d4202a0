package pipeline

import (
	"math"

	"github.com/LilVoxy/harga_pangan/models"
	"gonum.org/v1/gonum/mat"
)

// NormalPriceLambda параметр сглаживания HP-фильтра для ряда "нормальной цены".
// Подобран для дневных данных и длинного горизонта сглаживания.
const NormalPriceLambda = 24_414_062_500.0

// MinTrendPoints минимальная длина ряда, на которой фильтр считается определенным
const MinTrendPoints = 4

// TrendDecomposition результат разложения ряда: Cycle[i] + Trend[i] = исходный ряд
type TrendDecomposition struct {
	Trend []float64
	Cycle []float64
}

// secondDiff коэффициенты оператора вторых разностей
var secondDiff = [3]float64{1, -2, 1}

// HPFilter раскладывает ряд на тренд и циклическую компоненту фильтром Ходрика–Прескотта.
//
// Тренд τ минимизирует Σ(y−τ)² + λ·Σ(Δ²τ)², то есть решает (I + λ·DᵀD)·τ = y,
// где D есть оператор вторых разностей. Матрица системы симметричная положительно
// определенная с полушириной ленты 2, поэтому решается ленточным разложением Холецкого.
func HPFilter(series []float64, lambda float64) (*TrendDecomposition, error) {
	const op = "pipeline.HPFilter"

	n := len(series)
	if n == 0 {
		return nil, models.InsufficientData(op, "пустой ряд")
	}
	if n < MinTrendPoints {
		return nil, models.InsufficientData(op, "для HP-фильтра нужно минимум %d точек, получено %d", MinTrendPoints, n)
	}
	if lambda < 0 || math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return nil, models.InvalidInput(op, "некорректный параметр сглаживания %v", lambda)
	}
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, models.InsufficientData(op, "ряд содержит нечисловое значение в позиции %d", i)
		}
	}

	// 1. Собираем ленточную матрицу I + λ·DᵀD (верхний треугольник, k=2)
	a := mat.NewSymBandDense(n, 2, nil)
	for i := 0; i < n; i++ {
		a.SetSymBand(i, i, 1)
	}
	for r := 0; r+2 < n; r++ {
		for p := 0; p < 3; p++ {
			for q := p; q < 3; q++ {
				i, j := r+p, r+q
				a.SetSymBand(i, j, a.At(i, j)+lambda*secondDiff[p]*secondDiff[q])
			}
		}
	}

	// 2. Раскладываем и решаем систему
	var chol mat.BandCholesky
	if ok := chol.Factorize(a); !ok {
		return nil, models.InsufficientData(op, "матрица системы HP-фильтра не положительно определена (n=%d)", n)
	}

	var trend mat.VecDense
	if err := chol.SolveVecTo(&trend, mat.NewVecDense(n, append([]float64(nil), series...))); err != nil {
		return nil, models.InsufficientData(op, "ошибка решения системы HP-фильтра: %v", err)
	}

	// 3. Цикл как остаток, чтобы разложение было аддитивным
	result := &TrendDecomposition{
		Trend: make([]float64, n),
		Cycle: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		result.Trend[i] = trend.AtVec(i)
		result.Cycle[i] = series[i] - result.Trend[i]
	}

	return result, nil
}

// NormalPrices применяет HP-фильтр к ряду цен и возвращает "нормальную цену" в целых денежных единицах
func NormalPrices(rows []models.PriceRow, lambda float64) ([]models.NormalPrice, error) {
	series := make([]float64, len(rows))
	for i, row := range rows {
		series[i] = row.Harga
	}

	decomposition, err := HPFilter(series, lambda)
	if err != nil {
		return nil, err
	}

	prices := make([]models.NormalPrice, len(rows))
	for i, row := range rows {
		prices[i] = models.NormalPrice{
			Tanggal:     row.TanggalHarga,
			Harga:       row.Harga,
			HargaNormal: int64(math.Trunc(decomposition.Trend[i])),
		}
	}
	return prices, nil
}
