package model

import "github.com/bibbank/creditrisk/internal/domain/valueobject"

// RiskResult is the outcome of scoring one profile.
type RiskResult struct {
	RiskLevel            valueobject.RiskLevel
	ProbabilityOfDefault float64
	ExpectedLoss         float64
}
