package usecase

import (
	"sync/atomic"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/service"
)

// TrainedModel is a fitted preprocessor and the engine that scores with it.
type TrainedModel struct {
	Engine       *service.RiskEngine
	Preprocessor *service.Preprocessor
	Info         dto.ModelInfoResponse
}

// ModelRegistry holds the model currently used for scoring. A retrain swaps
// the whole TrainedModel so readers never see a half-built one.
type ModelRegistry struct {
	current atomic.Pointer[TrainedModel]
}

func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{}
}

// Activate makes m the model used by subsequent assessments.
func (r *ModelRegistry) Activate(m *TrainedModel) {
	r.current.Store(m)
}

// Current returns the active model or model.ErrNotFitted.
func (r *ModelRegistry) Current() (*TrainedModel, error) {
	m := r.current.Load()
	if m == nil {
		return nil, model.ErrNotFitted
	}
	return m, nil
}

// Ready reports whether a model has been activated.
func (r *ModelRegistry) Ready() bool {
	return r.current.Load() != nil
}
