package pipeline

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/LilVoxy/harga_pangan/models"
	"gonum.org/v1/gonum/mat"
)

func sequentialMatrix(rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, float64(10*i+j))
		}
	}
	return m
}

func TestBuildSupervised_RowCount(t *testing.T) {
	columns := []string{"a", "b", "c"}
	for _, n := range []int{2, 3, 10, 24} {
		frame, err := BuildSupervised(sequentialMatrix(n, 3), columns, DefaultSupervisedOptions())
		if err != nil {
			t.Fatalf("BuildSupervised(n=%d) failed: %v", n, err)
		}
		if frame.Rows() != n-1 {
			t.Errorf("BuildSupervised(n=%d).Rows() = %d, want %d", n, frame.Rows(), n-1)
		}
	}
}

func TestBuildSupervised_BlocksAreShifted(t *testing.T) {
	frame, err := BuildSupervised(sequentialMatrix(4, 2), []string{"x", "y"}, DefaultSupervisedOptions())
	if err != nil {
		t.Fatalf("BuildSupervised failed: %v", err)
	}

	wantInput := []string{"x(t-1)", "y(t-1)"}
	wantTarget := []string{"x(t)", "y(t)"}
	for i := range wantInput {
		if frame.Input.Columns[i] != wantInput[i] {
			t.Errorf("Input.Columns[%d] = %q, want %q", i, frame.Input.Columns[i], wantInput[i])
		}
		if frame.Target.Columns[i] != wantTarget[i] {
			t.Errorf("Target.Columns[%d] = %q, want %q", i, frame.Target.Columns[i], wantTarget[i])
		}
	}

	// Строка r кадра: вход = исходная строка r, цель = исходная строка r+1
	for r := 0; r < frame.Rows(); r++ {
		for j := 0; j < 2; j++ {
			if got, want := frame.Input.Values.At(r, j), float64(10*r+j); got != want {
				t.Errorf("Input(%d,%d) = %v, want %v", r, j, got, want)
			}
			if got, want := frame.Target.Values.At(r, j), float64(10*(r+1)+j); got != want {
				t.Errorf("Target(%d,%d) = %v, want %v", r, j, got, want)
			}
		}
	}

	last := frame.LastInput()
	if len(last) != 2 || last[0] != 20 || last[1] != 21 {
		t.Errorf("LastInput() = %v, want [20 21]", last)
	}

	y, ok := frame.TargetColumn("y(t)")
	if !ok || len(y) != 3 || y[2] != 31 {
		t.Errorf("TargetColumn(y(t)) = (%v, %v), want [.. .. 31]", y, ok)
	}
}

func TestBuildSupervised_MultiStep(t *testing.T) {
	opts := SupervisedOptions{LagIn: 2, LagOut: 2}
	frame, err := BuildSupervised(sequentialMatrix(6, 1), []string{"v"}, opts)
	if err != nil {
		t.Fatalf("BuildSupervised failed: %v", err)
	}

	// t принимает значения 2..4
	if frame.Rows() != 3 {
		t.Fatalf("Rows() = %d, want 3", frame.Rows())
	}
	wantInput := []string{"v(t-2)", "v(t-1)"}
	wantTarget := []string{"v(t)", "v(t+1)"}
	for i := range wantInput {
		if frame.Input.Columns[i] != wantInput[i] || frame.Target.Columns[i] != wantTarget[i] {
			t.Fatalf("columns = %v / %v, want %v / %v", frame.Input.Columns, frame.Target.Columns, wantInput, wantTarget)
		}
	}
	if got := mat.Row(nil, 0, frame.Input.Values); got[0] != 0 || got[1] != 10 {
		t.Errorf("first input row = %v, want [0 10]", got)
	}
	if got := mat.Row(nil, 2, frame.Target.Values); got[0] != 40 || got[1] != 50 {
		t.Errorf("last target row = %v, want [40 50]", got)
	}
}

func TestBuildSupervised_KeepsMissingValues(t *testing.T) {
	data := sequentialMatrix(5, 2)
	data.Set(2, 1, math.NaN())

	frame, err := BuildSupervised(data, []string{"a", "b"}, DefaultSupervisedOptions())
	if err != nil {
		t.Fatalf("BuildSupervised failed: %v", err)
	}
	if frame.Rows() != 4 {
		t.Fatalf("Rows() = %d, want 4", frame.Rows())
	}
	// Пропуск строки 2 попадает в цель t=2 и во вход t=3
	if !math.IsNaN(frame.Target.Values.At(1, 1)) || !math.IsNaN(frame.Input.Values.At(2, 1)) {
		t.Errorf("NaN was not carried into blocks: input %v, target %v",
			mat.Formatted(frame.Input.Values), mat.Formatted(frame.Target.Values))
	}

	if row, missing := frame.LastCompleteInput(); row != 3 || missing != nil {
		t.Errorf("LastCompleteInput() = (%d, %v), want (3, nil)", row, missing)
	}
}

func TestBuildSupervised_AlignedFrameWithNullInflation(t *testing.T) {
	d1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)
	d4 := d1.AddDate(0, 0, 3)
	var prices []models.PriceObservation
	for i, d := range []time.Time{d1, d2, d3} {
		for _, k := range models.CanonicalCommodityIDs() {
			prices = append(prices, models.PriceObservation{Date: d, CommodityID: k, Price: float64(1000*k + i)})
		}
	}
	inflation := []models.InflationObservation{{Date: d1, Rate: 2.1}, {Date: d3, Rate: 2.3}, {Date: d4, Rate: 2.4}}

	frame, err := Align(prices, inflation, DefaultAlignOptions(1))
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	supervised, err := BuildSupervised(frame.Matrix(), frame.Columns, DefaultSupervisedOptions())
	if err != nil {
		t.Fatalf("BuildSupervised failed: %v", err)
	}
	if supervised.Rows() != 2 {
		t.Fatalf("Rows() = %d, want 2", supervised.Rows())
	}

	// Вход строки t=d3 взят из d2, где инфляции нет
	row, _ := supervised.LastCompleteInput()
	if row != 0 {
		t.Errorf("LastCompleteInput() row = %d, want 0", row)
	}
}

func TestSupervisedFrame_LastCompleteInputNamesMissingColumns(t *testing.T) {
	data := sequentialMatrix(3, 2)
	data.Set(0, 1, math.NaN())
	data.Set(1, 1, math.NaN())

	frame, err := BuildSupervised(data, []string{"a", "b"}, DefaultSupervisedOptions())
	if err != nil {
		t.Fatalf("BuildSupervised failed: %v", err)
	}
	row, missing := frame.LastCompleteInput()
	if row != -1 || len(missing) != 1 || missing[0] != "b(t-1)" {
		t.Errorf("LastCompleteInput() = (%d, %v), want (-1, [b(t-1)])", row, missing)
	}
}

func TestBuildSupervised_InsufficientData(t *testing.T) {
	_, err := BuildSupervised(sequentialMatrix(1, 3), []string{"a", "b", "c"}, DefaultSupervisedOptions())
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("one row: err = %v, want InsufficientData", err)
	}

	_, err = BuildSupervised(nil, nil, DefaultSupervisedOptions())
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("nil matrix: err = %v, want InsufficientData", err)
	}
}

func TestBuildSupervised_InvalidInput(t *testing.T) {
	_, err := BuildSupervised(sequentialMatrix(4, 2), []string{"only-one"}, DefaultSupervisedOptions())
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("column mismatch: err = %v, want InvalidInput", err)
	}

	_, err = BuildSupervised(sequentialMatrix(4, 1), []string{"a"}, SupervisedOptions{LagIn: 0, LagOut: 1})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("lagIn=0: err = %v, want InvalidInput", err)
	}
}
