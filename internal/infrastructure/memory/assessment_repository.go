// Package memory holds process-local adapters used when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

type assessmentKey struct {
	tenantID uuid.UUID
	id       uuid.UUID
}

// AssessmentRepository implements port.AssessmentRepository in memory.
// Contents are lost on restart.
type AssessmentRepository struct {
	mu          sync.RWMutex
	assessments map[assessmentKey]*model.RiskAssessment
}

func NewAssessmentRepository() *AssessmentRepository {
	return &AssessmentRepository{assessments: make(map[assessmentKey]*model.RiskAssessment)}
}

// Save stores a new assessment. An existing entry with the same ID is kept.
func (r *AssessmentRepository) Save(_ context.Context, a *model.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := assessmentKey{tenantID: a.TenantID(), id: a.ID()}
	if _, ok := r.assessments[key]; !ok {
		r.assessments[key] = a
	}
	return nil
}

// FindByID returns model.ErrAssessmentNotFound when nothing matches.
func (r *AssessmentRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assessments[assessmentKey{tenantID: tenantID, id: id}]
	if !ok {
		return nil, model.ErrAssessmentNotFound
	}
	return a, nil
}
