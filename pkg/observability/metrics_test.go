package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.AssessmentsTotal.WithLabelValues("High Risk").Inc()
	m.AssessmentsTotal.WithLabelValues("High Risk").Inc()
	m.AssessmentErrors.WithLabelValues("invalid_input").Inc()
	m.ExpectedLossTotal.Add(1250.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AssessmentsTotal.WithLabelValues("High Risk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AssessmentErrors.WithLabelValues("invalid_input")))
	assert.Equal(t, 1250.5, testutil.ToFloat64(m.ExpectedLossTotal))
}

func TestNewMetricsTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestInitMeterProviderServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ModelAccuracy.Set(0.93)

	provider, handler, err := InitMeterProvider(reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "creditrisk_model_accuracy 0.93")
}

func TestInitTracerWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{ServiceName: "credit-risk"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
