package forecast

import (
	"context"
	"fmt"
)

// Model предобученная модель прогноза: последовательность векторов признаков -> вектор.
// Реализации должны быть безопасны для конкурентного вызова Predict.
type Model interface {
	// InputShape возвращает ожидаемую форму входа без размерности батча
	InputShape() (timesteps, features int)

	// Predict выполняет прямой проход для одной последовательности [timesteps][features]
	Predict(ctx context.Context, input [][]float64) ([]float64, error)
}

// ModelFunc адаптер функции к интерфейсу Model
type ModelFunc struct {
	Timesteps int
	Features  int
	Fn        func(ctx context.Context, input [][]float64) ([]float64, error)
}

// InputShape возвращает заявленную форму входа
func (m ModelFunc) InputShape() (int, int) {
	return m.Timesteps, m.Features
}

// Predict проверяет форму входа и вызывает функцию
func (m ModelFunc) Predict(ctx context.Context, input [][]float64) ([]float64, error) {
	if err := checkShape(input, m.Timesteps, m.Features); err != nil {
		return nil, err
	}
	return m.Fn(ctx, input)
}

func checkShape(input [][]float64, timesteps, features int) error {
	if len(input) != timesteps {
		return fmt.Errorf("ожидается %d шагов времени, получено %d", timesteps, len(input))
	}
	for t, row := range input {
		if len(row) != features {
			return fmt.Errorf("шаг %d: ожидается %d признаков, получено %d", t, features, len(row))
		}
	}
	return nil
}
