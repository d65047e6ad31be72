package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
)

// ScoreProfile runs the active model on a profile without storing anything.
type ScoreProfile struct {
	models *ModelRegistry
}

// NewScoreProfile creates a new ScoreProfile use case.
func NewScoreProfile(models *ModelRegistry) *ScoreProfile {
	return &ScoreProfile{models: models}
}

// Execute scores req.Profile.
func (uc *ScoreProfile) Execute(ctx context.Context, req dto.ScoreRequest) (dto.ScoreResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	active, err := uc.models.Current()
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	result, err := active.Engine.Assess(ctx, model.CustomerProfile(req.Profile))
	if err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("failed to score profile: %w", err)
	}

	return dto.ScoreResponse{
		RiskLevel:            result.RiskLevel.String(),
		ProbabilityOfDefault: result.ProbabilityOfDefault,
		ExpectedLoss:         result.ExpectedLoss,
		SchemaVersion:        active.Info.SchemaVersion,
	}, nil
}
