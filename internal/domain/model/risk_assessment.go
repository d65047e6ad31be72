package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	"github.com/bibbank/creditrisk/pkg/events"
)

// RiskAssessment is the persisted record of one scored profile.
type RiskAssessment struct {
	events.EventCollector
	assessedAt           time.Time
	profile              CustomerProfile
	customerRef          string
	schemaVersion        string
	riskLevel            valueobject.RiskLevel
	loanAmount           decimal.Decimal
	expectedLoss         decimal.Decimal
	probabilityOfDefault float64
	id                   uuid.UUID
	tenantID             uuid.UUID
}

// NewRiskAssessment records result for profile under a fresh ID and raises
// AssessmentCompleted, plus HighRiskDetected for the High tier.
func NewRiskAssessment(
	tenantID uuid.UUID,
	customerRef string,
	profile CustomerProfile,
	result RiskResult,
	schemaVersion string,
) (*RiskAssessment, error) {
	return NewRiskAssessmentWithID(uuid.New(), tenantID, customerRef, profile, result, schemaVersion)
}

// NewRiskAssessmentWithID is NewRiskAssessment with a caller-chosen ID, used
// when a redelivered request must map to the same stored assessment.
func NewRiskAssessmentWithID(
	id, tenantID uuid.UUID,
	customerRef string,
	profile CustomerProfile,
	result RiskResult,
	schemaVersion string,
) (*RiskAssessment, error) {
	if id == uuid.Nil {
		return nil, errors.New("assessment ID is required")
	}
	if tenantID == uuid.Nil {
		return nil, errors.New("tenant ID is required")
	}
	if result.RiskLevel.IsZero() {
		return nil, errors.New("risk level is required")
	}

	loan, _ := profile.LoanAmount()
	a := &RiskAssessment{
		id:                   id,
		tenantID:             tenantID,
		customerRef:          customerRef,
		profile:              profile.Clone(),
		probabilityOfDefault: result.ProbabilityOfDefault,
		riskLevel:            result.RiskLevel,
		loanAmount:           decimal.NewFromFloat(loan),
		expectedLoss:         decimal.NewFromFloat(result.ExpectedLoss).Round(2),
		schemaVersion:        schemaVersion,
		assessedAt:           time.Now().UTC(),
	}

	a.Record(event.NewAssessmentCompleted(
		a.id, a.tenantID, a.customerRef, a.riskLevel.String(), a.schemaVersion,
		a.probabilityOfDefault, a.loanAmount, a.expectedLoss,
	))
	if a.riskLevel.Equal(valueobject.RiskLevelHigh) {
		a.Record(event.NewHighRiskDetected(a.id, a.tenantID, a.customerRef, a.probabilityOfDefault, a.expectedLoss))
	}
	return a, nil
}

// ReconstructRiskAssessment rebuilds an assessment from storage without raising events.
func ReconstructRiskAssessment(
	id, tenantID uuid.UUID,
	customerRef string,
	profile CustomerProfile,
	pd float64,
	riskLevel valueobject.RiskLevel,
	loanAmount, expectedLoss decimal.Decimal,
	schemaVersion string,
	assessedAt time.Time,
) *RiskAssessment {
	return &RiskAssessment{
		id:                   id,
		tenantID:             tenantID,
		customerRef:          customerRef,
		profile:              profile,
		probabilityOfDefault: pd,
		riskLevel:            riskLevel,
		loanAmount:           loanAmount,
		expectedLoss:         expectedLoss,
		schemaVersion:        schemaVersion,
		assessedAt:           assessedAt,
	}
}

func (a *RiskAssessment) ID() uuid.UUID                    { return a.id }
func (a *RiskAssessment) TenantID() uuid.UUID              { return a.tenantID }
func (a *RiskAssessment) CustomerRef() string              { return a.customerRef }
func (a *RiskAssessment) Profile() CustomerProfile         { return a.profile.Clone() }
func (a *RiskAssessment) ProbabilityOfDefault() float64    { return a.probabilityOfDefault }
func (a *RiskAssessment) RiskLevel() valueobject.RiskLevel { return a.riskLevel }
func (a *RiskAssessment) LoanAmount() decimal.Decimal      { return a.loanAmount }
func (a *RiskAssessment) ExpectedLoss() decimal.Decimal    { return a.expectedLoss }
func (a *RiskAssessment) SchemaVersion() string            { return a.schemaVersion }
func (a *RiskAssessment) AssessedAt() time.Time            { return a.assessedAt }
