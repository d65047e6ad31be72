package event

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/pkg/events"
)

const (
	// EventTypeAssessmentCompleted is emitted for every scored profile.
	EventTypeAssessmentCompleted = "creditrisk.assessment.completed"

	// EventTypeHighRiskDetected is emitted when a profile lands in the High tier.
	EventTypeHighRiskDetected = "creditrisk.high_risk.detected"

	aggregateType = "RiskAssessment"
)

// AssessmentCompleted carries the full scoring outcome.
type AssessmentCompleted struct {
	events.BaseEvent
	CustomerRef          string          `json:"customer_ref"`
	RiskLevel            string          `json:"risk_level"`
	SchemaVersion        string          `json:"schema_version"`
	LoanAmount           decimal.Decimal `json:"loan_amount"`
	ExpectedLoss         decimal.Decimal `json:"expected_loss"`
	ProbabilityOfDefault float64         `json:"probability_of_default"`
}

// NewAssessmentCompleted builds the event for assessmentID.
func NewAssessmentCompleted(
	assessmentID, tenantID uuid.UUID,
	customerRef, riskLevel, schemaVersion string,
	pd float64,
	loanAmount, expectedLoss decimal.Decimal,
) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:            events.NewBaseEvent(EventTypeAssessmentCompleted, assessmentID, aggregateType, tenantID),
		CustomerRef:          customerRef,
		RiskLevel:            riskLevel,
		SchemaVersion:        schemaVersion,
		ProbabilityOfDefault: pd,
		LoanAmount:           loanAmount,
		ExpectedLoss:         expectedLoss,
	}
}

// HighRiskDetected flags a borrower for manual review.
type HighRiskDetected struct {
	events.BaseEvent
	CustomerRef          string          `json:"customer_ref"`
	ExpectedLoss         decimal.Decimal `json:"expected_loss"`
	ProbabilityOfDefault float64         `json:"probability_of_default"`
}

// NewHighRiskDetected builds the event for assessmentID.
func NewHighRiskDetected(assessmentID, tenantID uuid.UUID, customerRef string, pd float64, expectedLoss decimal.Decimal) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:            events.NewBaseEvent(EventTypeHighRiskDetected, assessmentID, aggregateType, tenantID),
		CustomerRef:          customerRef,
		ProbabilityOfDefault: pd,
		ExpectedLoss:         expectedLoss,
	}
}
