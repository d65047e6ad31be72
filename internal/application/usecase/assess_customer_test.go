package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/pkg/events"
	"github.com/bibbank/creditrisk/pkg/observability"
)

func validAssessRequest() dto.AssessCustomerRequest {
	return dto.AssessCustomerRequest{
		TenantID:    uuid.New(),
		CustomerRef: "CUST-0042",
		Profile:     validProfile(),
	}
}

func eventTypes(evts []events.DomainEvent) []string {
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.EventType()
	}
	return out
}

func TestAssessCustomer_Execute(t *testing.T) {
	t.Run("medium risk assessment is saved and published", func(t *testing.T) {
		repo := &mockAssessmentRepository{}
		publisher := &mockEventPublisher{}
		uc := usecase.NewAssessCustomer(activeRegistry(t, 0.3), repo, publisher, nil)

		req := validAssessRequest()
		resp, err := uc.Execute(context.Background(), req)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		assert.Equal(t, req.TenantID, resp.TenantID)
		assert.Equal(t, "CUST-0042", resp.CustomerRef)
		assert.Equal(t, "Medium Risk", resp.RiskLevel)
		assert.InDelta(t, 0.3, resp.ProbabilityOfDefault, 1e-12)
		assert.True(t, resp.LoanAmount.Equal(decimal.NewFromInt(10000)))
		assert.True(t, resp.ExpectedLoss.Equal(decimal.NewFromInt(2700)), resp.ExpectedLoss.String())
		assert.NotEmpty(t, resp.SchemaVersion)

		require.Len(t, repo.saved, 1)
		assert.Equal(t, resp.ID, repo.saved[0].ID())
		assert.Empty(t, repo.saved[0].Events())
		assert.Equal(t, []string{event.EventTypeAssessmentCompleted}, eventTypes(publisher.published))
	})

	t.Run("high risk raises a high risk event", func(t *testing.T) {
		publisher := &mockEventPublisher{}
		uc := usecase.NewAssessCustomer(activeRegistry(t, 0.8), &mockAssessmentRepository{}, publisher, nil)

		resp, err := uc.Execute(context.Background(), validAssessRequest())

		require.NoError(t, err)
		assert.Equal(t, "High Risk", resp.RiskLevel)
		assert.Equal(t,
			[]string{event.EventTypeAssessmentCompleted, event.EventTypeHighRiskDetected},
			eventTypes(publisher.published))
	})

	t.Run("profile without a fitted column is a schema mismatch", func(t *testing.T) {
		uc := usecase.NewAssessCustomer(activeRegistry(t, 0.1), &mockAssessmentRepository{}, &mockEventPublisher{}, nil)

		req := validAssessRequest()
		delete(req.Profile, model.FieldLoanAmount)
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrSchemaMismatch)
	})

	t.Run("records metrics", func(t *testing.T) {
		metrics := observability.NewMetrics(prometheus.NewRegistry())
		uc := usecase.NewAssessCustomer(activeRegistry(t, 0.1), &mockAssessmentRepository{}, &mockEventPublisher{}, metrics)

		_, err := uc.Execute(context.Background(), validAssessRequest())
		require.NoError(t, err)

		req := validAssessRequest()
		req.Profile[model.FieldIncome] = 0
		_, err = uc.Execute(context.Background(), req)
		require.Error(t, err)

		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AssessmentsTotal.WithLabelValues("Low Risk")))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AssessmentErrors.WithLabelValues("invalid_input")))
		assert.InDelta(t, 900.0, testutil.ToFloat64(metrics.ExpectedLossTotal), 1e-9)
	})
}

func TestAssessCustomer_RequestID(t *testing.T) {
	t.Run("same request id maps to the same assessment", func(t *testing.T) {
		repo := &mockAssessmentRepository{}
		uc := usecase.NewAssessCustomer(activeRegistry(t, 0.3), repo, &mockEventPublisher{}, nil)

		req := validAssessRequest()
		req.RequestID = "creditrisk.score.requests/0/10"
		first, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		second, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, usecase.AssessmentID(req), first.ID)
	})

	t.Run("request ids are scoped by tenant", func(t *testing.T) {
		a := validAssessRequest()
		a.RequestID = "r-1"
		b := a
		b.TenantID = uuid.New()
		assert.NotEqual(t, usecase.AssessmentID(a), usecase.AssessmentID(b))
	})

	t.Run("no request id gets a fresh id", func(t *testing.T) {
		req := validAssessRequest()
		assert.NotEqual(t, usecase.AssessmentID(req), usecase.AssessmentID(req))
	})

	t.Run("publish retry after a saved assessment reuses the id", func(t *testing.T) {
		repo := &mockAssessmentRepository{}
		publisher := &mockEventPublisher{}
		calls := 0
		publisher.publishFunc = func(context.Context, ...events.DomainEvent) error {
			calls++
			if calls == 1 {
				return errors.New("broker down")
			}
			return nil
		}
		uc := usecase.NewAssessCustomer(activeRegistry(t, 0.3), repo, publisher, nil)

		req := validAssessRequest()
		req.RequestID = "r-2"
		_, err := uc.Execute(context.Background(), req)
		require.Error(t, err)
		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		require.Len(t, repo.saved, 2)
		assert.Equal(t, repo.saved[0].ID(), repo.saved[1].ID())
		assert.Equal(t, resp.ID, repo.saved[0].ID())
	})
}

func TestAssessCustomer_Errors(t *testing.T) {
	saveErr := errors.New("connection reset")
	publishErr := errors.New("broker down")

	tests := []struct {
		name        string
		registry    func(t *testing.T) *usecase.ModelRegistry
		mutate      func(req *dto.AssessCustomerRequest)
		saveErr     error
		publishErr  error
		wantIs      error
		wantSaved   int
		wantPublish bool
	}{
		{
			name:     "no active model",
			registry: func(*testing.T) *usecase.ModelRegistry { return usecase.NewModelRegistry() },
			wantIs:   model.ErrNotFitted,
		},
		{
			name:   "missing tenant",
			mutate: func(req *dto.AssessCustomerRequest) { req.TenantID = uuid.Nil },
			wantIs: model.ErrInvalidInput,
		},
		{
			name:   "empty profile",
			mutate: func(req *dto.AssessCustomerRequest) { req.Profile = map[string]float64{} },
			wantIs: model.ErrInvalidInput,
		},
		{
			name:   "missing debt",
			mutate: func(req *dto.AssessCustomerRequest) { delete(req.Profile, model.FieldTotalDebt) },
			wantIs: model.ErrInvalidInput,
		},
		{
			name:   "negative loan",
			mutate: func(req *dto.AssessCustomerRequest) { req.Profile[model.FieldLoanAmount] = -5 },
			wantIs: model.ErrInvalidInput,
		},
		{
			name:    "save failure",
			saveErr: saveErr,
			wantIs:  saveErr,
		},
		{
			name:        "publish failure",
			publishErr:  publishErr,
			wantIs:      publishErr,
			wantSaved:   1,
			wantPublish: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := activeRegistry(t, 0.3)
			if tt.registry != nil {
				registry = tt.registry(t)
			}

			repo := &mockAssessmentRepository{}
			if tt.saveErr != nil {
				repo.saveFunc = func(context.Context, *model.RiskAssessment) error { return tt.saveErr }
			}
			var published bool
			publisher := &mockEventPublisher{publishFunc: func(context.Context, ...events.DomainEvent) error {
				published = true
				return tt.publishErr
			}}

			req := validAssessRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			_, err := usecase.NewAssessCustomer(registry, repo, publisher, nil).Execute(context.Background(), req)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Len(t, repo.saved, tt.wantSaved)
			assert.Equal(t, tt.wantPublish, published)
		})
	}
}
