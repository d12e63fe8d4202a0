package pipeline

import (
	"fmt"
	"math"

	"github.com/LilVoxy/harga_pangan/models"
	"gonum.org/v1/gonum/mat"
)

// Block именованный блок колонок кадра обучения с учителем
type Block struct {
	Columns []string
	Values  *mat.Dense
}

// Width возвращает количество колонок блока
func (b Block) Width() int {
	return len(b.Columns)
}

// SupervisedFrame кадр "признаки (t−lagIn..t−1) → цель (t..t+lagOut−1)".
// Входной и целевой блоки хранятся раздельно, поэтому изменение числа рядов
// не может сдвинуть колонки одного блока в другой.
type SupervisedFrame struct {
	Input  Block
	Target Block
	// SourceRows индекс строки исходной матрицы, соответствующей моменту t
	SourceRows []int
}

// SupervisedOptions параметры построения кадра
type SupervisedOptions struct {
	LagIn  int
	LagOut int
}

// DefaultSupervisedOptions параметры конвейера прогноза: один шаг назад, один шаг вперед
func DefaultSupervisedOptions() SupervisedOptions {
	return SupervisedOptions{LagIn: 1, LagOut: 1}
}

// Rows возвращает количество строк кадра
func (f *SupervisedFrame) Rows() int {
	return len(f.SourceRows)
}

// LastInput возвращает входной вектор последней строки кадра
func (f *SupervisedFrame) LastInput() []float64 {
	if f.Rows() == 0 {
		return nil
	}
	return mat.Row(nil, f.Rows()-1, f.Input.Values)
}

// LastCompleteInput возвращает индекс последней строки, входной блок которой
// не содержит пропусков. Если такой строки нет, возвращает -1 и имена
// входных колонок с пропусками в последней строке.
func (f *SupervisedFrame) LastCompleteInput() (int, []string) {
	for r := f.Rows() - 1; r >= 0; r-- {
		if !hasNaN(mat.Row(nil, r, f.Input.Values)) {
			return r, nil
		}
	}

	var missing []string
	for j, v := range f.LastInput() {
		if math.IsNaN(v) {
			missing = append(missing, f.Input.Columns[j])
		}
	}
	return -1, missing
}

// TargetColumn возвращает значения целевой колонки по имени
func (f *SupervisedFrame) TargetColumn(name string) ([]float64, bool) {
	for j, c := range f.Target.Columns {
		if c == name {
			return mat.Col(nil, j, f.Target.Values), true
		}
	}
	return nil, false
}

// BuildSupervised перестраивает матрицу временного ряда (строки соответствуют шагам времени)
// в кадр для модели: для каждой строки t входной блок содержит значения
// строк t−lagIn..t−1, целевой блок содержит значения строк t..t+lagOut−1. Строки, для которых сдвиг
// выходит за границы ряда, отбрасываются целиком, поэтому кадр всегда содержит
// N − lagIn − (lagOut − 1) строк. Пропуски (NaN) переносятся в блоки как есть.
func BuildSupervised(data mat.Matrix, columns []string, opts SupervisedOptions) (*SupervisedFrame, error) {
	const op = "pipeline.BuildSupervised"

	if opts.LagIn < 1 || opts.LagOut < 1 {
		return nil, models.InvalidInput(op, "lagIn и lagOut должны быть >= 1, получено %d и %d", opts.LagIn, opts.LagOut)
	}
	if data == nil {
		return nil, models.InsufficientData(op, "пустая матрица")
	}

	n, width := data.Dims()
	if len(columns) != width {
		return nil, models.InvalidInput(op, "передано %d имен колонок для матрицы шириной %d", len(columns), width)
	}
	if n < opts.LagIn+opts.LagOut {
		return nil, models.InsufficientData(op, "нужно минимум %d строк, получено %d", opts.LagIn+opts.LagOut, n)
	}

	inputColumns := make([]string, 0, opts.LagIn*width)
	for k := opts.LagIn; k >= 1; k-- {
		for _, name := range columns {
			inputColumns = append(inputColumns, fmt.Sprintf("%s(t-%d)", name, k))
		}
	}
	targetColumns := make([]string, 0, opts.LagOut*width)
	for k := 0; k < opts.LagOut; k++ {
		for _, name := range columns {
			if k == 0 {
				targetColumns = append(targetColumns, name+"(t)")
			} else {
				targetColumns = append(targetColumns, fmt.Sprintf("%s(t+%d)", name, k))
			}
		}
	}

	// Допустимые моменты t: все сдвиги внутри ряда
	var inputRows, targetRows [][]float64
	var sourceRows []int
	for t := opts.LagIn; t+opts.LagOut-1 < n; t++ {
		in := make([]float64, 0, len(inputColumns))
		for k := opts.LagIn; k >= 1; k-- {
			in = append(in, mat.Row(nil, t-k, data)...)
		}
		out := make([]float64, 0, len(targetColumns))
		for k := 0; k < opts.LagOut; k++ {
			out = append(out, mat.Row(nil, t+k, data)...)
		}
		inputRows = append(inputRows, in)
		targetRows = append(targetRows, out)
		sourceRows = append(sourceRows, t)
	}

	return &SupervisedFrame{
		Input:      Block{Columns: inputColumns, Values: denseFromRows(inputRows)},
		Target:     Block{Columns: targetColumns, Values: denseFromRows(targetRows)},
		SourceRows: sourceRows,
	}, nil
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func denseFromRows(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}
	return m
}
