package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	"github.com/bibbank/creditrisk/pkg/events"
)

// --- Mock implementations ---

type mockDatasetSource struct {
	records []model.Record
	err     error
}

func (m *mockDatasetSource) Load(context.Context) ([]model.Record, error) {
	return m.records, m.err
}

type mockClassifier struct {
	probability float64
	fitErr      error
	predictErr  error
	fitRows     [][]float64
	fitLabels   []int
}

func (m *mockClassifier) Fit(_ context.Context, rows [][]float64, labels []int) error {
	m.fitRows = rows
	m.fitLabels = labels
	return m.fitErr
}

func (m *mockClassifier) PredictProba(_ context.Context, rows [][]float64) ([]float64, error) {
	if m.predictErr != nil {
		return nil, m.predictErr
	}
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = m.probability
	}
	return out, nil
}

type mockAssessmentRepository struct {
	mu           sync.Mutex
	saved        []*model.RiskAssessment
	saveFunc     func(ctx context.Context, assessment *model.RiskAssessment) error
	findByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error)
}

func (m *mockAssessmentRepository) Save(ctx context.Context, assessment *model.RiskAssessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, assessment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, assessment)
	return nil
}

func (m *mockAssessmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return nil, model.ErrAssessmentNotFound
}

type mockEventPublisher struct {
	mu          sync.Mutex
	published   []events.DomainEvent
	publishFunc func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, evts...)
	return nil
}

// --- Fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loanRecords returns 40 records, one in four defaulted.
func loanRecords() []model.Record {
	records := make([]model.Record, 40)
	for i := range records {
		defaulted := i%4 == 0
		debt := 4000 + 250*float64(i)
		if defaulted {
			debt *= 3
		}
		records[i] = model.Record{
			CustomerID: uuid.NewString(),
			Defaulted:  defaulted,
			Profile: model.CustomerProfile{
				model.FieldIncome:        30000 + 1500*float64(i),
				model.FieldTotalDebt:     debt,
				model.FieldFICOScore:     580 + float64(i*5),
				model.FieldCreditLines:   float64(i % 6),
				model.FieldLoanAmount:    2000 + 100*float64(i),
				model.FieldYearsEmployed: float64(i % 9),
			},
		}
	}
	return records
}

func trainConfig() usecase.TrainModelConfig {
	return usecase.TrainModelConfig{
		Risk:       valueobject.DefaultRiskConfig(),
		Classifier: "mock",
		TestSize:   0.25,
		Seed:       42,
	}
}

// activeRegistry trains on loanRecords with a classifier that always predicts
// probability and returns a registry serving that model.
func activeRegistry(t *testing.T, probability float64) *usecase.ModelRegistry {
	t.Helper()
	uc := usecase.NewTrainModel(
		&mockDatasetSource{records: loanRecords()},
		&mockClassifier{probability: probability},
		trainConfig(),
		discardLogger(),
	)
	trained, err := uc.Execute(context.Background())
	require.NoError(t, err)

	registry := usecase.NewModelRegistry()
	registry.Activate(trained)
	return registry
}

func validProfile() map[string]float64 {
	return map[string]float64{
		model.FieldIncome:        60000,
		model.FieldTotalDebt:     12000,
		model.FieldFICOScore:     690,
		model.FieldCreditLines:   2,
		model.FieldLoanAmount:    10000,
		model.FieldYearsEmployed: 4,
	}
}
