package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	"github.com/bibbank/creditrisk/pkg/observability"
)

const calibrationBins = 10

var tracer = otel.Tracer("github.com/bibbank/creditrisk/internal/application/usecase")

// TrainModelConfig controls a training run.
type TrainModelConfig struct {
	Risk       valueobject.RiskConfig
	Classifier string
	TestSize   float64
	Seed       int64
}

// TrainModel loads the labelled dataset, fits the preprocessor and the
// classifier on the training split, evaluates on the hold-out split and
// returns a model ready for scoring.
type TrainModel struct {
	source     port.DatasetSource
	classifier port.Classifier
	serving    port.ProbabilityOracle
	metrics    *observability.Metrics
	logger     *slog.Logger
	engineer   service.FeatureEngineer
	cfg        TrainModelConfig
}

// TrainOption customizes TrainModel.
type TrainOption func(*TrainModel)

// WithServingOracle scores with o instead of the freshly trained classifier.
func WithServingOracle(o port.ProbabilityOracle) TrainOption {
	return func(uc *TrainModel) { uc.serving = o }
}

// WithTrainingMetrics records run outcomes and hold-out accuracy.
func WithTrainingMetrics(m *observability.Metrics) TrainOption {
	return func(uc *TrainModel) { uc.metrics = m }
}

// NewTrainModel creates a new TrainModel use case.
func NewTrainModel(
	source port.DatasetSource,
	classifier port.Classifier,
	cfg TrainModelConfig,
	logger *slog.Logger,
	opts ...TrainOption,
) *TrainModel {
	uc := &TrainModel{
		source:     source,
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
		engineer:   service.NewFeatureEngineer(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs one training pass.
func (uc *TrainModel) Execute(ctx context.Context) (*TrainedModel, error) {
	ctx, span := tracer.Start(ctx, "TrainModel.Execute")
	defer span.End()

	trained, err := uc.train(ctx, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if uc.metrics != nil {
			uc.metrics.TrainingRuns.WithLabelValues("failure").Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TrainingRuns.WithLabelValues("success").Inc()
		uc.metrics.ModelAccuracy.Set(trained.Info.Evaluation.Accuracy)
	}
	return trained, nil
}

func (uc *TrainModel) train(ctx context.Context, span trace.Span) (*TrainedModel, error) {
	records, err := uc.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("dataset has no records")
	}

	profiles := make([]model.CustomerProfile, len(records))
	labels := make([]int, len(records))
	for i, r := range records {
		profiles[i] = r.Profile
		labels[i] = r.Label()
	}

	vectors, err := uc.engineer.EngineerBatch(profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to engineer features: %w", err)
	}
	matrix, err := model.NewFeatureMatrix(vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to build feature matrix: %w", err)
	}

	trainIdx, testIdx, err := service.TrainTestSplit(matrix.Len(), uc.cfg.TestSize, uc.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split dataset: %w", err)
	}
	trainX, trainY := matrix.Subset(trainIdx), pick(labels, trainIdx)
	testX, testY := matrix.Subset(testIdx), pick(labels, testIdx)

	pre := service.NewPreprocessor(uc.cfg.Seed)
	resampledX, resampledY, err := pre.FitResample(trainX, trainY)
	if err != nil {
		return nil, fmt.Errorf("failed to fit preprocessor: %w", err)
	}

	if err := uc.classifier.Fit(ctx, resampledX.Rows, resampledY); err != nil {
		return nil, fmt.Errorf("failed to fit classifier: %w", err)
	}

	scaledTest, err := pre.Transform(testX)
	if err != nil {
		return nil, fmt.Errorf("failed to transform hold-out set: %w", err)
	}
	probs, err := uc.classifier.PredictProba(ctx, scaledTest.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to score hold-out set: %w", err)
	}

	evaluation, err := service.Evaluate(testY, service.Labels(probs, service.DecisionCut))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate model: %w", err)
	}
	calibration, err := service.CalibrationCurve(testY, probs, calibrationBins)
	if err != nil {
		return nil, fmt.Errorf("failed to compute calibration: %w", err)
	}

	state := pre.State()
	schema := state.Schema()
	span.SetAttributes(
		attribute.String("schema.version", schema.Version()),
		attribute.Int("rows.train", len(trainIdx)),
		attribute.Int("rows.test", len(testIdx)),
		attribute.Float64("accuracy", evaluation.Accuracy),
	)

	uc.logger.Info("model trained",
		slog.String("schema_version", schema.Version()),
		slog.Int("training_rows", len(trainIdx)),
		slog.Int("resampled_rows", state.ResampledRows()),
		slog.Int("test_rows", len(testIdx)),
		slog.Float64("accuracy", evaluation.Accuracy),
	)
	uc.logger.Debug("classification report\n" + evaluation.Report())

	oracle := port.ProbabilityOracle(uc.classifier)
	if uc.serving != nil {
		oracle = uc.serving
	}

	return &TrainedModel{
		Engine:       service.NewRiskEngine(uc.cfg.Risk, pre, oracle),
		Preprocessor: pre,
		Info: dto.ModelInfoResponse{
			TrainedAt:       state.FittedAt().Truncate(time.Millisecond),
			SchemaVersion:   schema.Version(),
			Classifier:      uc.cfg.Classifier,
			Columns:         schema.Columns(),
			Calibration:     calibration,
			Evaluation:      evaluation,
			LowThreshold:    uc.cfg.Risk.LowThreshold(),
			MediumThreshold: uc.cfg.Risk.MediumThreshold(),
			RecoveryRate:    uc.cfg.Risk.RecoveryRate(),
			TrainingRows:    len(trainIdx),
			ResampledRows:   state.ResampledRows(),
			TestRows:        len(testIdx),
		},
	}, nil
}

func pick(labels []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
