package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/pkg/events"
)

// ProbabilityOracle returns the positive-class probability for each row of a
// feature matrix laid out in the fitted schema's column order. A single-row
// call must behave exactly like the same row inside a batch.
type ProbabilityOracle interface {
	PredictProba(ctx context.Context, rows [][]float64) ([]float64, error)
}

// AssessmentRepository persists risk assessments.
type AssessmentRepository interface {
	// Save stores a new assessment. Saving an ID that already exists is a
	// no-op that returns nil.
	Save(ctx context.Context, assessment *model.RiskAssessment) error

	// FindByID returns model.ErrAssessmentNotFound when no row matches.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error)
}

// EventPublisher ships domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// Classifier is a ProbabilityOracle that can be trained in-process.
type Classifier interface {
	ProbabilityOracle
	Fit(ctx context.Context, rows [][]float64, labels []int) error
}

// DatasetSource yields labelled training records.
type DatasetSource interface {
	Load(ctx context.Context) ([]model.Record, error)
}
