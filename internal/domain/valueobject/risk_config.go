package valueobject

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when no overrides are configured.
const (
	DefaultLowThreshold    = 0.2
	DefaultMediumThreshold = 0.5
	DefaultRecoveryRate    = 0.10
)

// ErrInvalidRiskConfig is returned for thresholds or recovery rates out of range.
var ErrInvalidRiskConfig = errors.New("invalid risk config")

var validate = validator.New(validator.WithRequiredStructEnabled())

type riskConfigFields struct {
	LowThreshold    float64 `validate:"gte=0,ltfield=MediumThreshold"`
	MediumThreshold float64 `validate:"lte=1"`
	RecoveryRate    float64 `validate:"gte=0,lte=1"`
}

// RiskConfig holds the tier thresholds and recovery rate. The zero value is
// not usable; construct it with NewRiskConfig.
type RiskConfig struct {
	lowThreshold    float64
	mediumThreshold float64
	recoveryRate    float64
}

// NewRiskConfig enforces 0 <= low < medium <= 1 and 0 <= recovery <= 1.
func NewRiskConfig(lowThreshold, mediumThreshold, recoveryRate float64) (RiskConfig, error) {
	for name, v := range map[string]float64{
		"low threshold":    lowThreshold,
		"medium threshold": mediumThreshold,
		"recovery rate":    recoveryRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return RiskConfig{}, fmt.Errorf("%w: %s is not finite", ErrInvalidRiskConfig, name)
		}
	}

	fields := riskConfigFields{
		LowThreshold:    lowThreshold,
		MediumThreshold: mediumThreshold,
		RecoveryRate:    recoveryRate,
	}
	if err := validate.Struct(fields); err != nil {
		return RiskConfig{}, fmt.Errorf("%w: %w", ErrInvalidRiskConfig, err)
	}

	return RiskConfig{
		lowThreshold:    lowThreshold,
		mediumThreshold: mediumThreshold,
		recoveryRate:    recoveryRate,
	}, nil
}

// DefaultRiskConfig returns thresholds 0.2 / 0.5 and a 10% recovery rate.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		lowThreshold:    DefaultLowThreshold,
		mediumThreshold: DefaultMediumThreshold,
		recoveryRate:    DefaultRecoveryRate,
	}
}

func (c RiskConfig) LowThreshold() float64    { return c.lowThreshold }
func (c RiskConfig) MediumThreshold() float64 { return c.mediumThreshold }
func (c RiskConfig) RecoveryRate() float64    { return c.recoveryRate }

// LossGivenDefault is the unrecovered share of exposure.
func (c RiskConfig) LossGivenDefault() float64 { return 1 - c.recoveryRate }

// Classify buckets pd into [0,low), [low,medium), [medium,1]. A value equal
// to a threshold lands in the higher tier.
func (c RiskConfig) Classify(pd float64) RiskLevel {
	switch {
	case pd >= c.mediumThreshold:
		return RiskLevelHigh
	case pd >= c.lowThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// ExpectedLoss returns pd * exposure * (1 - recovery rate).
func (c RiskConfig) ExpectedLoss(pd, exposure float64) float64 {
	return pd * exposure * c.LossGivenDefault()
}
