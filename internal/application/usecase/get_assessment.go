package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
)

// GetAssessment is the use case for retrieving an existing assessment.
type GetAssessment struct {
	repo port.AssessmentRepository
}

// NewGetAssessment creates a new GetAssessment use case.
func NewGetAssessment(repo port.AssessmentRepository) *GetAssessment {
	return &GetAssessment{repo: repo}
}

// Execute retrieves a risk assessment by ID.
func (uc *GetAssessment) Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	assessment, err := uc.repo.FindByID(ctx, req.TenantID, req.AssessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to find assessment: %w", err)
	}
	if assessment == nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: %s", model.ErrAssessmentNotFound, req.AssessmentID)
	}

	return dto.FromModel(assessment), nil
}
