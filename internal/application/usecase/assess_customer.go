package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/pkg/observability"
)

// requestNamespace derives assessment IDs from request IDs.
var requestNamespace = uuid.MustParse("6f1d3c2e-8a4b-5c7d-9e0f-1a2b3c4d5e6f")

// AssessmentID returns the stored ID for a request. Without a RequestID every
// call gets a fresh ID.
func AssessmentID(req dto.AssessCustomerRequest) uuid.UUID {
	if req.RequestID == "" {
		return uuid.New()
	}
	return uuid.NewSHA1(requestNamespace, []byte(req.TenantID.String()+"/"+req.RequestID))
}

// AssessCustomer scores a profile with the active model, persists the
// assessment and publishes its domain events.
type AssessCustomer struct {
	models    *ModelRegistry
	repo      port.AssessmentRepository
	publisher port.EventPublisher
	metrics   *observability.Metrics
}

// NewAssessCustomer creates a new AssessCustomer use case. metrics may be nil.
func NewAssessCustomer(
	models *ModelRegistry,
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	metrics *observability.Metrics,
) *AssessCustomer {
	return &AssessCustomer{
		models:    models,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Execute assesses req.Profile.
func (uc *AssessCustomer) Execute(ctx context.Context, req dto.AssessCustomerRequest) (dto.AssessmentResponse, error) {
	ctx, span := tracer.Start(ctx, "AssessCustomer.Execute")
	defer span.End()

	start := time.Now()
	resp, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if uc.metrics != nil {
			uc.metrics.AssessmentErrors.WithLabelValues(model.ErrorKind(err)).Inc()
		}
		return dto.AssessmentResponse{}, err
	}

	span.SetAttributes(
		attribute.String("assessment.id", resp.ID.String()),
		attribute.String("risk.level", resp.RiskLevel),
	)
	if uc.metrics != nil {
		uc.metrics.AssessmentsTotal.WithLabelValues(resp.RiskLevel).Inc()
		uc.metrics.ExpectedLossTotal.Add(resp.ExpectedLoss.InexactFloat64())
	}
	return resp, nil
}

func (uc *AssessCustomer) execute(ctx context.Context, req dto.AssessCustomerRequest) (dto.AssessmentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	active, err := uc.models.Current()
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	profile := model.CustomerProfile(req.Profile)
	result, err := active.Engine.Assess(ctx, profile)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to assess customer: %w", err)
	}

	assessment, err := model.NewRiskAssessmentWithID(AssessmentID(req), req.TenantID, req.CustomerRef, profile, result, active.Info.SchemaVersion)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to create assessment: %w", err)
	}

	// Save is idempotent on the ID, so a retried request that failed to
	// publish re-saves nothing and publishes again.
	if err := uc.repo.Save(ctx, assessment); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to save assessment: %w", err)
	}

	if evts := assessment.ClearEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}

	return dto.FromModel(assessment), nil
}
