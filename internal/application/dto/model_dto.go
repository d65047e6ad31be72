package dto

import (
	"time"

	"github.com/bibbank/creditrisk/internal/domain/service"
)

// ModelInfoResponse describes the active model and its hold-out quality.
type ModelInfoResponse struct {
	TrainedAt       time.Time                `json:"trained_at"`
	SchemaVersion   string                   `json:"schema_version"`
	Classifier      string                   `json:"classifier"`
	Columns         []string                 `json:"columns"`
	Calibration     []service.CalibrationBin `json:"calibration"`
	Evaluation      service.Evaluation       `json:"evaluation"`
	LowThreshold    float64                  `json:"low_threshold"`
	MediumThreshold float64                  `json:"medium_threshold"`
	RecoveryRate    float64                  `json:"recovery_rate"`
	TrainingRows    int                      `json:"training_rows"`
	ResampledRows   int                      `json:"resampled_rows"`
	TestRows        int                      `json:"test_rows"`
}
