package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "credit-risk-service", cfg.ServiceName)
	assert.Equal(t, 0.2, cfg.Risk.LowThreshold)
	assert.Equal(t, 0.5, cfg.Risk.MediumThreshold)
	assert.Equal(t, 0.10, cfg.Risk.RecoveryRate)
	assert.Equal(t, int64(42), cfg.Risk.Seed)
	assert.Equal(t, 0.2, cfg.Risk.TestSize)
	assert.Equal(t, OracleLocal, cfg.Oracle.Mode)
	assert.Equal(t, 2*time.Second, cfg.Oracle.Timeout)
	assert.False(t, cfg.DB.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.TLS.Enabled())
	assert.Equal(t, ":9090", cfg.GRPCAddr())
	assert.Equal(t, ":8080", cfg.HTTPAddr())

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOW_RISK_THRESHOLD", "0.1")
	t.Setenv("MEDIUM_RISK_THRESHOLD", "0.4")
	t.Setenv("DEFAULT_RECOVERY_RATE", "0.35")
	t.Setenv("MODEL_RANDOM_STATE", "7")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ORACLE_TIMEOUT", "750ms")

	cfg := Load()
	assert.Equal(t, 0.1, cfg.Risk.LowThreshold)
	assert.Equal(t, 0.4, cfg.Risk.MediumThreshold)
	assert.Equal(t, 0.35, cfg.Risk.RecoveryRate)
	assert.Equal(t, int64(7), cfg.Risk.Seed)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.Oracle.Timeout)
	require.NoError(t, cfg.Validate())

	rc, err := cfg.RiskConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.35, rc.RecoveryRate())
}

func TestLoadReportsMalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"LOW_RISK_THRESHOLD", "0,3"},
		{"MEDIUM_RISK_THRESHOLD", "half"},
		{"DEFAULT_RECOVERY_RATE", "10%"},
		{"TEST_SIZE", "0.2.1"},
		{"MODEL_RANDOM_STATE", "seven"},
		{"GRPC_PORT", "not-a-number"},
		{"ORACLE_TIMEOUT", "2"},
		{"KAFKA_TLS_ENABLED", "yes please"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			err := Load().Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}

func TestLoadKeepsDefaultOnMalformedValue(t *testing.T) {
	t.Setenv("LOW_RISK_THRESHOLD", "0,3")
	t.Setenv("TEST_SIZE", "x")

	cfg := Load()
	assert.Equal(t, 0.2, cfg.Risk.LowThreshold)
	assert.Equal(t, 0.2, cfg.Risk.TestSize)
	assert.Len(t, cfg.loadErrs, 2)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"thresholds out of order", func(c *Config) { c.Risk.LowThreshold = 0.6 }},
		{"recovery above one", func(c *Config) { c.Risk.RecoveryRate = 1.2 }},
		{"test size one", func(c *Config) { c.Risk.TestSize = 1 }},
		{"missing data path", func(c *Config) { c.Risk.DataPath = "" }},
		{"unknown oracle", func(c *Config) { c.Oracle.Mode = "sagemaker" }},
		{"http oracle without url", func(c *Config) { c.Oracle.Mode = OracleHTTP }},
		{"zero oracle timeout", func(c *Config) { c.Oracle.Timeout = 0 }},
		{"cert without key", func(c *Config) { c.TLS.CertFile = "server.pem" }},
		{"bad log format", func(c *Config) { c.Observability.LogFormat = "xml" }},
		{"bad sasl mechanism", func(c *Config) { c.Kafka.SASLMechanism = "GSSAPI" }},
		{"auth without key", func(c *Config) { c.Auth.Enabled = true }},
		{"port out of range", func(c *Config) { c.HTTPPort = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Load()
	cfg.Oracle.Mode = OracleHTTP
	cfg.Oracle.URL = "http://model:8500"
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}
