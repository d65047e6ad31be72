package usecase

import (
	"github.com/bibbank/creditrisk/internal/application/dto"
)

// GetModelInfo reports the active model's schema and hold-out quality.
type GetModelInfo struct {
	models *ModelRegistry
}

func NewGetModelInfo(models *ModelRegistry) *GetModelInfo {
	return &GetModelInfo{models: models}
}

// Execute returns model.ErrNotFitted before the first training run completes.
func (uc *GetModelInfo) Execute() (dto.ModelInfoResponse, error) {
	active, err := uc.models.Current()
	if err != nil {
		return dto.ModelInfoResponse{}, err
	}
	return active.Info, nil
}
