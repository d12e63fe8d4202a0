package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/LilVoxy/harga_pangan/processor"
)

// Формат артефакта модели: JSON-экспорт весов обученной сети Keras.
// Веса хранятся в раскладке Keras: kernel [входы][4*units], recurrent_kernel [units][4*units],
// bias [4*units], порядок гейтов i, f, c, o. Файл с расширением .sz сжат snappy.
type modelArtifact struct {
	Name       string          `json:"name"`
	InputShape []int           `json:"input_shape"` // [timesteps, features]
	Layers     []layerArtifact `json:"layers"`
}

type layerArtifact struct {
	Type                string      `json:"type"` // lstm | dense | dropout
	Units               int         `json:"units"`
	Activation          string      `json:"activation"`
	RecurrentActivation string      `json:"recurrent_activation"`
	ReturnSequences     bool        `json:"return_sequences"`
	Kernel              [][]float64 `json:"kernel"`
	RecurrentKernel     [][]float64 `json:"recurrent_kernel"`
	Bias                []float64   `json:"bias"`
}

// layer слой сети; forward преобразует последовательность векторов
type layer interface {
	forward(seq []*mat.VecDense) []*mat.VecDense
}

// LSTMModel сеть из слоев LSTM и полносвязных слоев.
// После загрузки неизменяема, поэтому Predict можно вызывать конкурентно.
type LSTMModel struct {
	name      string
	timesteps int
	features  int
	layers    []layer
}

// LoadLSTMModel загружает модель из файла артефакта (.json или .json.sz)
func LoadLSTMModel(path string) (*LSTMModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения артефакта модели: %w", err)
	}

	data, err = processor.ReadArtifact(path, data)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки артефакта модели: %w", err)
	}

	model, err := ParseLSTMModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

// ParseLSTMModel строит модель из JSON-артефакта
func ParseLSTMModel(data []byte) (*LSTMModel, error) {
	var art modelArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("ошибка разбора артефакта модели: %w", err)
	}
	if len(art.InputShape) != 2 || art.InputShape[0] < 1 || art.InputShape[1] < 1 {
		return nil, fmt.Errorf("input_shape должен иметь вид [timesteps, features], получено %v", art.InputShape)
	}

	m := &LSTMModel{
		name:      art.Name,
		timesteps: art.InputShape[0],
		features:  art.InputShape[1],
	}

	width := m.features
	sequence := true
	for i, la := range art.Layers {
		switch strings.ToLower(la.Type) {
		case "lstm":
			if !sequence {
				return nil, fmt.Errorf("слой %d: LSTM после слоя, вернувшего один вектор", i)
			}
			l, err := newLSTMLayer(la, width)
			if err != nil {
				return nil, fmt.Errorf("слой %d: %w", i, err)
			}
			m.layers = append(m.layers, l)
			width = l.units
			sequence = la.ReturnSequences
		case "dense":
			l, err := newDenseLayer(la, width)
			if err != nil {
				return nil, fmt.Errorf("слой %d: %w", i, err)
			}
			m.layers = append(m.layers, l)
			width = l.units
		case "dropout":
			// На инференсе dropout тождественен
		default:
			return nil, fmt.Errorf("слой %d: неподдерживаемый тип %q", i, la.Type)
		}
	}
	if len(m.layers) == 0 {
		return nil, fmt.Errorf("артефакт не содержит слоев")
	}
	return m, nil
}

// Name возвращает имя модели из артефакта
func (m *LSTMModel) Name() string {
	return m.name
}

// InputShape возвращает ожидаемую форму входа
func (m *LSTMModel) InputShape() (int, int) {
	return m.timesteps, m.features
}

// Predict выполняет прямой проход; результат - выход последнего шага последнего слоя
func (m *LSTMModel) Predict(ctx context.Context, input [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkShape(input, m.timesteps, m.features); err != nil {
		return nil, err
	}

	seq := make([]*mat.VecDense, len(input))
	for t, row := range input {
		seq[t] = mat.NewVecDense(len(row), append([]float64(nil), row...))
	}
	for _, l := range m.layers {
		seq = l.forward(seq)
	}

	last := seq[len(seq)-1]
	out := make([]float64, last.Len())
	for i := range out {
		out[i] = last.AtVec(i)
	}
	return out, nil
}

// lstmLayer слой LSTM в раскладке Keras
type lstmLayer struct {
	units           int
	kernel          *mat.Dense // [in][4u]
	recurrent       *mat.Dense // [u][4u]
	bias            *mat.VecDense
	activation      func(float64) float64
	recurrentActive func(float64) float64
	returnSequences bool
}

func newLSTMLayer(la layerArtifact, in int) (*lstmLayer, error) {
	u := la.Units
	if u < 1 {
		return nil, fmt.Errorf("LSTM: units должно быть >= 1")
	}
	kernel, err := denseFromArtifact("kernel", la.Kernel, in, 4*u)
	if err != nil {
		return nil, err
	}
	recurrent, err := denseFromArtifact("recurrent_kernel", la.RecurrentKernel, u, 4*u)
	if err != nil {
		return nil, err
	}
	bias, err := biasFromArtifact(la.Bias, 4*u)
	if err != nil {
		return nil, err
	}
	act, err := activation(la.Activation, "tanh")
	if err != nil {
		return nil, err
	}
	recAct, err := activation(la.RecurrentActivation, "sigmoid")
	if err != nil {
		return nil, err
	}

	return &lstmLayer{
		units:           u,
		kernel:          kernel,
		recurrent:       recurrent,
		bias:            bias,
		activation:      act,
		recurrentActive: recAct,
		returnSequences: la.ReturnSequences,
	}, nil
}

func (l *lstmLayer) forward(seq []*mat.VecDense) []*mat.VecDense {
	u := l.units
	h := mat.NewVecDense(u, nil)
	c := make([]float64, u)

	var out []*mat.VecDense
	z := mat.NewVecDense(4*u, nil)
	rec := mat.NewVecDense(4*u, nil)
	for _, x := range seq {
		// z = x·W + h·U + b
		z.MulVec(l.kernel.T(), x)
		rec.MulVec(l.recurrent.T(), h)
		z.AddVec(z, rec)
		z.AddVec(z, l.bias)

		next := mat.NewVecDense(u, nil)
		for j := 0; j < u; j++ {
			i := l.recurrentActive(z.AtVec(j))
			f := l.recurrentActive(z.AtVec(u + j))
			g := l.activation(z.AtVec(2*u + j))
			o := l.recurrentActive(z.AtVec(3*u + j))
			c[j] = f*c[j] + i*g
			next.SetVec(j, o*l.activation(c[j]))
		}
		h = next
		if l.returnSequences {
			out = append(out, h)
		}
	}

	if !l.returnSequences {
		out = []*mat.VecDense{h}
	}
	return out
}

// denseLayer полносвязный слой, применяется к каждому шагу последовательности
type denseLayer struct {
	units      int
	kernel     *mat.Dense // [in][units]
	bias       *mat.VecDense
	activation func(float64) float64
}

func newDenseLayer(la layerArtifact, in int) (*denseLayer, error) {
	if la.Units < 1 {
		return nil, fmt.Errorf("Dense: units должно быть >= 1")
	}
	kernel, err := denseFromArtifact("kernel", la.Kernel, in, la.Units)
	if err != nil {
		return nil, err
	}
	bias, err := biasFromArtifact(la.Bias, la.Units)
	if err != nil {
		return nil, err
	}
	act, err := activation(la.Activation, "linear")
	if err != nil {
		return nil, err
	}
	return &denseLayer{units: la.Units, kernel: kernel, bias: bias, activation: act}, nil
}

func (l *denseLayer) forward(seq []*mat.VecDense) []*mat.VecDense {
	out := make([]*mat.VecDense, len(seq))
	for t, x := range seq {
		y := mat.NewVecDense(l.units, nil)
		y.MulVec(l.kernel.T(), x)
		y.AddVec(y, l.bias)
		for j := 0; j < l.units; j++ {
			y.SetVec(j, l.activation(y.AtVec(j)))
		}
		out[t] = y
	}
	return out
}

func denseFromArtifact(name string, rows [][]float64, r, c int) (*mat.Dense, error) {
	if len(rows) != r {
		return nil, fmt.Errorf("%s: ожидается %d строк, получено %d", name, r, len(rows))
	}
	m := mat.NewDense(r, c, nil)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("%s[%d]: ожидается %d значений, получено %d", name, i, c, len(row))
		}
		m.SetRow(i, row)
	}
	return m, nil
}

func biasFromArtifact(bias []float64, n int) (*mat.VecDense, error) {
	if bias == nil {
		return mat.NewVecDense(n, nil), nil
	}
	if len(bias) != n {
		return nil, fmt.Errorf("bias: ожидается %d значений, получено %d", n, len(bias))
	}
	return mat.NewVecDense(n, append([]float64(nil), bias...)), nil
}

func activation(name, fallback string) (func(float64) float64, error) {
	if name == "" {
		name = fallback
	}
	switch strings.ToLower(name) {
	case "linear":
		return func(x float64) float64 { return x }, nil
	case "tanh":
		return math.Tanh, nil
	case "sigmoid":
		return func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }, nil
	case "hard_sigmoid":
		return func(x float64) float64 { return math.Max(0, math.Min(1, 0.2*x+0.5)) }, nil
	case "relu":
		return func(x float64) float64 { return math.Max(0, x) }, nil
	default:
		return nil, fmt.Errorf("неподдерживаемая функция активации %q", name)
	}
}
