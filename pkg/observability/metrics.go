package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the scoring pipeline's Prometheus collectors.
type Metrics struct {
	AssessmentsTotal   *prometheus.CounterVec
	AssessmentErrors   *prometheus.CounterVec
	AssessmentDuration prometheus.Histogram
	ExpectedLossTotal  prometheus.Counter
	TrainingRuns       *prometheus.CounterVec
	ModelAccuracy      prometheus.Gauge
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AssessmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditrisk",
			Name:      "assessments_total",
			Help:      "Completed assessments by risk level.",
		}, []string{"risk_level"}),
		AssessmentErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditrisk",
			Name:      "assessment_errors_total",
			Help:      "Failed assessments by error kind.",
		}, []string{"kind"}),
		AssessmentDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "creditrisk",
			Name:      "assessment_duration_seconds",
			Help:      "End-to-end assessment latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		ExpectedLossTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "creditrisk",
			Name:      "expected_loss_total",
			Help:      "Sum of expected loss over all assessments.",
		}),
		TrainingRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditrisk",
			Name:      "training_runs_total",
			Help:      "Model training runs by outcome.",
		}, []string{"outcome"}),
		ModelAccuracy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "creditrisk",
			Name:      "model_accuracy",
			Help:      "Hold-out accuracy of the active model.",
		}),
	}
}

// InitMeterProvider wires an OpenTelemetry meter provider to the Prometheus
// registry and returns the provider plus a /metrics handler for reg.
func InitMeterProvider(reg *prometheus.Registry) (*metric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, fmt.Errorf("observability: prometheus exporter: %w", err)
	}
	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return provider, handler, nil
}
