package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// ErrNotTrained is returned by predictions before Fit succeeds.
var ErrNotTrained = errors.New("ml: model not trained")

// LogisticRegressionConfig controls batch gradient descent.
type LogisticRegressionConfig struct {
	LearningRate float64
	Epochs       int
	L2           float64
}

// DefaultLogisticRegressionConfig suits standardized inputs.
func DefaultLogisticRegressionConfig() LogisticRegressionConfig {
	return LogisticRegressionConfig{LearningRate: 0.1, Epochs: 500, L2: 1e-3}
}

// LogisticRegression is an L2-regularized binary classifier trained with
// full-batch gradient descent from zero weights, so training is deterministic.
type LogisticRegression struct {
	weights []float64
	cfg     LogisticRegressionConfig
	bias    float64
	mu      sync.RWMutex
}

// NewLogisticRegression returns an untrained model.
func NewLogisticRegression(cfg LogisticRegressionConfig) *LogisticRegression {
	return &LogisticRegression{cfg: cfg}
}

// Fit trains on rows and binary labels, replacing any previous weights.
func (m *LogisticRegression) Fit(ctx context.Context, rows [][]float64, labels []int) error {
	if len(rows) == 0 {
		return errors.New("ml: no training rows")
	}
	if len(rows) != len(labels) {
		return fmt.Errorf("ml: %d rows but %d labels", len(rows), len(labels))
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("ml: row %d has %d features, want %d", i, len(row), width)
		}
	}

	weights := make([]float64, width)
	grad := make([]float64, width)
	var bias float64
	n := float64(len(rows))

	for epoch := range m.cfg.Epochs {
		if epoch%50 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64
		for i, row := range rows {
			residual := sigmoid(floats.Dot(weights, row)+bias) - float64(labels[i])
			floats.AddScaled(grad, residual, row)
			gradBias += residual
		}
		floats.Scale(1/n, grad)
		floats.AddScaled(grad, m.cfg.L2, weights)
		floats.AddScaled(weights, -m.cfg.LearningRate, grad)
		bias -= m.cfg.LearningRate * gradBias / n
	}

	m.mu.Lock()
	m.weights = weights
	m.bias = bias
	m.mu.Unlock()
	return nil
}

// PredictProba returns P(default) for every row.
func (m *LogisticRegression) PredictProba(ctx context.Context, rows [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.weights == nil {
		return nil, ErrNotTrained
	}

	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(m.weights) {
			return nil, fmt.Errorf("ml: row %d has %d features, want %d", i, len(row), len(m.weights))
		}
		out[i] = sigmoid(floats.Dot(m.weights, row) + m.bias)
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
