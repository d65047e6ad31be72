package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// Oracle modes.
const (
	OracleLocal = "local"
	OracleHTTP  = "http"
	OracleStub  = "stub"
)

type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	SSLMode  string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	Port     int    `validate:"min=1,max=65535"`
	MaxConns int    `validate:"min=1"`
}

// Enabled reports whether a database has been configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != "" || d.Host != ""
}

type KafkaConfig struct {
	ClientID          string
	ConsumerGroup     string `validate:"required_with=ScoreRequestTopic"`
	ScoreRequestTopic string
	SASLMechanism     string `validate:"omitempty,oneof=PLAIN SCRAM-SHA-256 SCRAM-SHA-512"`
	SASLUsername      string
	SASLPassword      string
	Brokers           []string
	SASLEnabled       bool
	TLSEnabled        bool
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type RiskConfig struct {
	DataPath        string  `validate:"required"`
	LowThreshold    float64
	MediumThreshold float64
	RecoveryRate    float64
	TestSize        float64 `validate:"gt=0,lt=1"`
	Seed            int64
}

type OracleConfig struct {
	Mode            string `validate:"oneof=local http stub"`
	URL             string `validate:"required_if=Mode http"`
	CAFile          string
	Timeout         time.Duration `validate:"gt=0"`
	StubProbability float64       `validate:"gte=0,lte=1"`
}

type AuthConfig struct {
	JWTSecret     string
	PublicKeyFile string
	Issuer        string
	Enabled       bool
}

type TLSConfig struct {
	CertFile string `validate:"required_with=KeyFile"`
	KeyFile  string `validate:"required_with=CertFile"`
}

// Enabled reports whether listener TLS is configured.
func (t TLSConfig) Enabled() bool { return t.CertFile != "" }

type ObservabilityConfig struct {
	LogLevel     string `validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat    string `validate:"omitempty,oneof=json text"`
	OTLPEndpoint string
	OTLPInsecure bool
}

type RateLimitConfig struct {
	RPS   float64 `validate:"gte=0"`
	Burst int     `validate:"gte=0"`
}

// Config holds all configuration for the credit risk service.
type Config struct {
	ServiceName   string
	Environment   string
	DB            DatabaseConfig
	Kafka         KafkaConfig
	Risk          RiskConfig
	Oracle        OracleConfig
	Auth          AuthConfig
	TLS           TLSConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig
	loadErrs      []error
	GRPCPort      int `validate:"min=1,max=65535"`
	HTTPPort      int `validate:"min=1,max=65535"`
}

// Load reads configuration from environment variables. Unset variables take
// their defaults; malformed ones are reported by Validate.
func Load() Config {
	e := &envLoader{}
	cfg := Config{
		ServiceName: getEnv("SERVICE_NAME", "credit-risk-service"),
		Environment: getEnv("ENVIRONMENT", "development"),
		GRPCPort:    e.int("GRPC_PORT", 9090),
		HTTPPort:    e.int("HTTP_PORT", 8080),
		DB: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     e.int("DB_PORT", 5432),
			User:     getEnv("DB_USER", "creditrisk"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "creditrisk"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: e.int("DB_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:           getEnvList("KAFKA_BROKERS"),
			ClientID:          getEnv("KAFKA_CLIENT_ID", "credit-risk-service"),
			ConsumerGroup:     getEnv("KAFKA_CONSUMER_GROUP", "credit-risk-service"),
			ScoreRequestTopic: getEnv("KAFKA_SCORE_REQUEST_TOPIC", ""),
			SASLEnabled:       e.bool("KAFKA_SASL_ENABLED", false),
			SASLMechanism:     getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:      getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:      getEnv("KAFKA_SASL_PASSWORD", ""),
			TLSEnabled:        e.bool("KAFKA_TLS_ENABLED", false),
		},
		Risk: RiskConfig{
			DataPath:        getEnv("DATA_PATH", "data/loan_data.csv"),
			LowThreshold:    e.float("LOW_RISK_THRESHOLD", valueobject.DefaultLowThreshold),
			MediumThreshold: e.float("MEDIUM_RISK_THRESHOLD", valueobject.DefaultMediumThreshold),
			RecoveryRate:    e.float("DEFAULT_RECOVERY_RATE", valueobject.DefaultRecoveryRate),
			Seed:            int64(e.int("MODEL_RANDOM_STATE", 42)),
			TestSize:        e.float("TEST_SIZE", 0.2),
		},
		Oracle: OracleConfig{
			Mode:            getEnv("ORACLE_MODE", OracleLocal),
			URL:             getEnv("ORACLE_URL", ""),
			CAFile:          getEnv("ORACLE_CA_FILE", ""),
			Timeout:         e.duration("ORACLE_TIMEOUT", 2*time.Second),
			StubProbability: e.float("ORACLE_STUB_PROBABILITY", 0.5),
		},
		Auth: AuthConfig{
			Enabled:       e.bool("AUTH_ENABLED", false),
			JWTSecret:     getEnv("JWT_SECRET", ""),
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			Issuer:        getEnv("JWT_ISSUER", ""),
		},
		TLS: TLSConfig{
			CertFile: getEnv("TLS_CERT_FILE", ""),
			KeyFile:  getEnv("TLS_KEY_FILE", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			LogFormat:    getEnv("LOG_FORMAT", "json"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure: e.bool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		RateLimit: RateLimitConfig{
			RPS:   e.float("RATE_LIMIT_RPS", 50),
			Burst: e.int("RATE_LIMIT_BURST", 100),
		},
	}
	cfg.loadErrs = e.errs
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every variable parsed, then field constraints and the
// risk thresholds.
func (c Config) Validate() error {
	if err := c.LoadError(); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.RiskConfig(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" && c.Auth.PublicKeyFile == "" {
		return errors.New("config: AUTH_ENABLED requires JWT_SECRET or JWT_PUBLIC_KEY_FILE")
	}
	return nil
}

// LoadError reports every variable Load could not parse.
func (c Config) LoadError() error {
	if len(c.loadErrs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(c.loadErrs...))
}

// RiskConfig builds the immutable scoring configuration.
func (c Config) RiskConfig() (valueobject.RiskConfig, error) {
	return valueobject.NewRiskConfig(c.Risk.LowThreshold, c.Risk.MediumThreshold, c.Risk.RecoveryRate)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envLoader reads typed variables and records the ones that fail to parse.
type envLoader struct {
	errs []error
}

func (e *envLoader) lookup(key string, parse func(string) error) {
	if v := os.Getenv(key); v != "" {
		if err := parse(v); err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", key, v, err))
		}
	}
}

func (e *envLoader) int(key string, fallback int) int {
	out := fallback
	e.lookup(key, func(v string) error {
		parsed, err := strconv.Atoi(v)
		if err == nil {
			out = parsed
		}
		return err
	})
	return out
}

func (e *envLoader) float(key string, fallback float64) float64 {
	out := fallback
	e.lookup(key, func(v string) error {
		parsed, err := strconv.ParseFloat(v, 64)
		if err == nil {
			out = parsed
		}
		return err
	})
	return out
}

func (e *envLoader) bool(key string, fallback bool) bool {
	out := fallback
	e.lookup(key, func(v string) error {
		parsed, err := strconv.ParseBool(v)
		if err == nil {
			out = parsed
		}
		return err
	})
	return out
}

func (e *envLoader) duration(key string, fallback time.Duration) time.Duration {
	out := fallback
	e.lookup(key, func(v string) error {
		parsed, err := time.ParseDuration(v)
		if err == nil {
			out = parsed
		}
		return err
	})
	return out
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
