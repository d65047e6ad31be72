package service

import (
	"fmt"
	"math"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// FeatureEngineer derives model features from a raw profile. It holds no
// state, so the zero value is ready to use and safe for concurrent calls.
type FeatureEngineer struct{}

// NewFeatureEngineer returns a FeatureEngineer.
func NewFeatureEngineer() FeatureEngineer { return FeatureEngineer{} }

// Engineer copies profile, drops the customer identifier and adds
// debt_to_income_ratio. Income must be present, finite and positive; a zero
// income is rejected rather than producing an infinite ratio.
func (FeatureEngineer) Engineer(profile model.CustomerProfile) (model.FeatureVector, error) {
	income, ok := profile[model.FieldIncome]
	if !ok {
		return nil, &model.InputError{Field: model.FieldIncome, Reason: "is missing"}
	}
	debt, ok := profile[model.FieldTotalDebt]
	if !ok {
		return nil, &model.InputError{Field: model.FieldTotalDebt, Reason: "is missing"}
	}

	out := make(model.FeatureVector, len(profile)+1)
	for name, v := range profile {
		if name == model.FieldCustomerID {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &model.InputError{Field: name, Reason: "is not finite"}
		}
		out[name] = v
	}
	if income <= 0 {
		return nil, &model.InputError{Field: model.FieldIncome, Reason: "must be positive"}
	}

	out[model.FieldDebtToIncome] = debt / income
	return out, nil
}

// EngineerBatch applies Engineer to every profile. The first failure aborts
// the batch and names the offending row.
func (fe FeatureEngineer) EngineerBatch(profiles []model.CustomerProfile) ([]model.FeatureVector, error) {
	out := make([]model.FeatureVector, len(profiles))
	for i, p := range profiles {
		v, err := fe.Engineer(p)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
