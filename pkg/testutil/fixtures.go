package testutil

import (
	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// Fixed UUIDs for deterministic testing
var (
	TestTenantID  = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	OtherTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000011")
)

// LowRiskProfile is a borrower with a small loan and long employment.
func LowRiskProfile() model.CustomerProfile {
	return model.CustomerProfile{
		model.FieldIncome:        85000,
		model.FieldTotalDebt:     4000,
		model.FieldFICOScore:     760,
		model.FieldCreditLines:   1,
		model.FieldLoanAmount:    5000,
		model.FieldYearsEmployed: 9,
	}
}
