package service

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// FitState is what a fit leaves behind: the column schema and the scaling
// parameters estimated on the resampled training set. It never changes once
// published.
type FitState struct {
	fittedAt time.Time
	schema   valueobject.FeatureSchema
	scaling  ScalingParams
	rows     int
}

func (s *FitState) Schema() valueobject.FeatureSchema { return s.schema }
func (s *FitState) FittedAt() time.Time                { return s.fittedAt }

// ResampledRows is the training row count after oversampling.
func (s *FitState) ResampledRows() int { return s.rows }

// Preprocessor balances and standardizes training data once, then replays the
// fitted scaling on new data. FitResample may run only once; Transform is safe
// for any number of concurrent callers after that.
type Preprocessor struct {
	state    atomic.Pointer[FitState]
	resample SMOTE
	mu       sync.Mutex
}

// NewPreprocessor returns an unfitted Preprocessor whose oversampling is seeded with seed.
func NewPreprocessor(seed int64) *Preprocessor {
	return &Preprocessor{resample: SMOTE{K: DefaultNeighbors, Seed: seed}}
}

// FitResample oversamples the minority class, fits scaling on the result and
// returns the scaled, resampled matrix with its labels.
func (p *Preprocessor) FitResample(features model.FeatureMatrix, labels []int) (model.FeatureMatrix, []int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Load() != nil {
		return model.FeatureMatrix{}, nil, model.ErrAlreadyFitted
	}
	if features.Len() == 0 {
		return model.FeatureMatrix{}, nil, &model.InputError{Field: "features", Reason: "is empty"}
	}
	if err := features.Validate(); err != nil {
		return model.FeatureMatrix{}, nil, err
	}
	schema, err := valueobject.NewFeatureSchema(features.Columns)
	if err != nil {
		return model.FeatureMatrix{}, nil, &model.InputError{Field: "columns", Reason: err.Error()}
	}

	rows, y, err := p.resample.Resample(features.Rows, labels)
	if err != nil {
		return model.FeatureMatrix{}, nil, fmt.Errorf("resample: %w", err)
	}

	scaling := FitScaler(rows, schema.Len())
	for i, row := range rows {
		rows[i] = scaling.Apply(row)
	}

	p.state.Store(&FitState{
		schema:   schema,
		scaling:  scaling,
		rows:     len(rows),
		fittedAt: time.Now().UTC(),
	})
	return model.FeatureMatrix{Columns: schema.Columns(), Rows: rows}, y, nil
}

// Transform reorders features to the fitted column order and scales them.
// Columns unknown to the schema are ignored; missing ones are a SchemaError.
func (p *Preprocessor) Transform(features model.FeatureMatrix) (model.FeatureMatrix, error) {
	state := p.state.Load()
	if state == nil {
		return model.FeatureMatrix{}, model.ErrNotFitted
	}
	if missing := state.schema.Missing(features.Columns); len(missing) > 0 {
		return model.FeatureMatrix{}, &model.SchemaError{SchemaVersion: state.schema.Version(), Missing: missing}
	}
	if err := features.Validate(); err != nil {
		return model.FeatureMatrix{}, err
	}

	src := make([]int, state.schema.Len())
	for j, name := range state.schema.Columns() {
		src[j] = slices.Index(features.Columns, name)
	}

	out := make([][]float64, len(features.Rows))
	for i, row := range features.Rows {
		ordered := make([]float64, len(src))
		for j, k := range src {
			ordered[j] = row[k]
		}
		out[i] = state.scaling.Apply(ordered)
	}
	return model.FeatureMatrix{Columns: state.schema.Columns(), Rows: out}, nil
}

// TransformVector scales a single engineered vector.
func (p *Preprocessor) TransformVector(v model.FeatureVector) ([]float64, error) {
	state := p.state.Load()
	if state == nil {
		return nil, model.ErrNotFitted
	}

	row := make([]float64, state.schema.Len())
	var missing []string
	for j, name := range state.schema.Columns() {
		val, ok := v[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, &model.InputError{Field: name, Reason: "is not finite"}
		}
		row[j] = val
	}
	if len(missing) > 0 {
		return nil, &model.SchemaError{SchemaVersion: state.schema.Version(), Missing: missing}
	}
	return state.scaling.Apply(row), nil
}

// State returns the published fit state, or nil before the first fit.
func (p *Preprocessor) State() *FitState {
	return p.state.Load()
}
