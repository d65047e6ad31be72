package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// AssessCustomerRequest is the input DTO for the AssessCustomer use case.
// Requests sharing a RequestID within a tenant resolve to the same assessment.
type AssessCustomerRequest struct {
	Profile     map[string]float64 `json:"profile" validate:"required,min=1"`
	CustomerRef string             `json:"customer_ref" validate:"max=128"`
	RequestID   string             `json:"request_id,omitempty" validate:"max=256"`
	TenantID    uuid.UUID          `json:"tenant_id" validate:"required"`
}

// AssessmentResponse is the output DTO for a stored assessment.
type AssessmentResponse struct {
	AssessedAt           time.Time       `json:"assessed_at"`
	LoanAmount           decimal.Decimal `json:"loan_amount"`
	ExpectedLoss         decimal.Decimal `json:"expected_loss"`
	CustomerRef          string          `json:"customer_ref"`
	RiskLevel            string          `json:"risk_level"`
	SchemaVersion        string          `json:"schema_version"`
	ProbabilityOfDefault float64         `json:"probability_of_default"`
	ID                   uuid.UUID       `json:"id"`
	TenantID             uuid.UUID       `json:"tenant_id"`
}

// GetAssessmentRequest is the input DTO for retrieving an assessment.
type GetAssessmentRequest struct {
	TenantID     uuid.UUID `json:"tenant_id" validate:"required"`
	AssessmentID uuid.UUID `json:"assessment_id" validate:"required"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(a *model.RiskAssessment) AssessmentResponse {
	return AssessmentResponse{
		ID:                   a.ID(),
		TenantID:             a.TenantID(),
		CustomerRef:          a.CustomerRef(),
		ProbabilityOfDefault: a.ProbabilityOfDefault(),
		RiskLevel:            a.RiskLevel().String(),
		LoanAmount:           a.LoanAmount(),
		ExpectedLoss:         a.ExpectedLoss(),
		SchemaVersion:        a.SchemaVersion(),
		AssessedAt:           a.AssessedAt(),
	}
}

// ScoreRequest is the input DTO for stateless scoring.
type ScoreRequest struct {
	Profile map[string]float64 `json:"profile" validate:"required,min=1"`
}

// ScoreResponse carries a risk result without persistence.
type ScoreResponse struct {
	RiskLevel            string  `json:"risk_level"`
	SchemaVersion        string  `json:"schema_version"`
	ProbabilityOfDefault float64 `json:"probability_of_default"`
	ExpectedLoss         float64 `json:"expected_loss"`
}
