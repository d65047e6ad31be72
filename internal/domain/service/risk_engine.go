package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// VectorTransformer scales one engineered vector with fitted parameters.
type VectorTransformer interface {
	TransformVector(v model.FeatureVector) ([]float64, error)
}

// RiskEngine turns a probability of default into a tier and an expected
// loss, and composes the full single-profile scoring path.
type RiskEngine struct {
	transformer VectorTransformer
	oracle      port.ProbabilityOracle
	config      valueobject.RiskConfig
	engineer    FeatureEngineer
}

// NewRiskEngine wires the engine. transformer and oracle are only needed by Assess.
func NewRiskEngine(cfg valueobject.RiskConfig, transformer VectorTransformer, oracle port.ProbabilityOracle) *RiskEngine {
	return &RiskEngine{
		config:      cfg,
		transformer: transformer,
		oracle:      oracle,
	}
}

// Config returns the thresholds and recovery rate in use.
func (e *RiskEngine) Config() valueobject.RiskConfig { return e.config }

// Score classifies pd and computes pd * loan * (1 - recovery rate). A missing
// loan amount counts as zero exposure. pd outside [0, 1] is an OracleError.
func (e *RiskEngine) Score(profile model.CustomerProfile, pd float64) (model.RiskResult, error) {
	if math.IsNaN(pd) || pd < 0 || pd > 1 {
		return model.RiskResult{}, &model.OracleError{Reason: fmt.Sprintf("probability %v outside [0, 1]", pd)}
	}

	loan, ok := profile.LoanAmount()
	if !ok {
		loan = 0
	}
	if math.IsNaN(loan) || math.IsInf(loan, 0) {
		return model.RiskResult{}, &model.InputError{Field: model.FieldLoanAmount, Reason: "is not finite"}
	}
	if loan < 0 {
		return model.RiskResult{}, &model.InputError{Field: model.FieldLoanAmount, Reason: "must not be negative"}
	}

	return model.RiskResult{
		ProbabilityOfDefault: pd,
		RiskLevel:            e.config.Classify(pd),
		ExpectedLoss:         e.config.ExpectedLoss(pd, loan),
	}, nil
}

// Assess engineers, scales and scores a single profile.
func (e *RiskEngine) Assess(ctx context.Context, profile model.CustomerProfile) (model.RiskResult, error) {
	if e.transformer == nil || e.oracle == nil {
		return model.RiskResult{}, model.ErrNotFitted
	}

	features, err := e.engineer.Engineer(profile)
	if err != nil {
		return model.RiskResult{}, err
	}
	row, err := e.transformer.TransformVector(features)
	if err != nil {
		return model.RiskResult{}, err
	}

	probs, err := e.oracle.PredictProba(ctx, [][]float64{row})
	if err != nil {
		var oe *model.OracleError
		if errors.As(err, &oe) {
			return model.RiskResult{}, err
		}
		return model.RiskResult{}, &model.OracleError{Reason: "predict_proba", Err: err}
	}
	if len(probs) != 1 {
		return model.RiskResult{}, &model.OracleError{Reason: fmt.Sprintf("expected 1 probability, got %d", len(probs))}
	}

	return e.Score(profile, probs[0])
}
