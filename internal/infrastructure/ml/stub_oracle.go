package ml

import (
	"context"
	"log/slog"
)

// StubOracle answers every row with the same probability. It lets the
// service run without a trained model in development.
type StubOracle struct {
	logger      *slog.Logger
	probability float64
}

// NewStubOracle returns an oracle that always predicts probability.
func NewStubOracle(probability float64, logger *slog.Logger) *StubOracle {
	return &StubOracle{probability: probability, logger: logger}
}

// PredictProba implements port.ProbabilityOracle.
func (o *StubOracle) PredictProba(_ context.Context, rows [][]float64) ([]float64, error) {
	o.logger.Debug("stub oracle prediction", slog.Int("rows", len(rows)))

	out := make([]float64, len(rows))
	for i := range out {
		out[i] = o.probability
	}
	return out, nil
}

// Fit is a no-op so the stub can stand in for a trainable classifier.
func (o *StubOracle) Fit(context.Context, [][]float64, []int) error { return nil }
