package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"

	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
	"github.com/bibbank/creditrisk/pkg/auth"
	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
	"github.com/bibbank/creditrisk/pkg/tlsutil"
)

const classifierName = "logistic_regression"

// oracleSetup is the classifier trained at startup plus the oracle that
// serves predictions, which differs from the classifier in http mode.
type oracleSetup struct {
	classifier port.Classifier
	serving    port.ProbabilityOracle
	name       string
}

func (o oracleSetup) trainOptions() []usecase.TrainOption {
	if o.serving == nil {
		return nil
	}
	return []usecase.TrainOption{usecase.WithServingOracle(o.serving)}
}

func buildOracle(cfg config.OracleConfig, logger *slog.Logger) (oracleSetup, error) {
	switch cfg.Mode {
	case config.OracleStub:
		logger.Warn("using stub oracle", slog.Float64("probability", cfg.StubProbability))
		return oracleSetup{classifier: ml.NewStubOracle(cfg.StubProbability, logger), name: "stub"}, nil

	case config.OracleHTTP:
		var tlsCfg *tls.Config
		if cfg.CAFile != "" {
			c, err := tlsutil.ClientConfig(cfg.CAFile)
			if err != nil {
				return oracleSetup{}, fmt.Errorf("oracle TLS: %w", err)
			}
			tlsCfg = c
		}
		return oracleSetup{
			classifier: ml.NewLogisticRegression(ml.DefaultLogisticRegressionConfig()),
			serving:    ml.NewHTTPOracle(cfg.URL, cfg.Timeout, tlsCfg),
			name:       "http",
		}, nil

	default:
		return oracleSetup{
			classifier: ml.NewLogisticRegression(ml.DefaultLogisticRegressionConfig()),
			name:       classifierName,
		}, nil
	}
}

func kafkaConfig(cfg config.KafkaConfig) pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       cfg.Brokers,
		ClientID:      cfg.ClientID,
		ConsumerGroup: cfg.ConsumerGroup,
		SASLEnabled:   cfg.SASLEnabled,
		SASLMechanism: cfg.SASLMechanism,
		SASLUsername:  cfg.SASLUsername,
		SASLPassword:  cfg.SASLPassword,
		TLS:           cfg.TLSEnabled,
	}
}

func postgresConfig(cfg config.DatabaseConfig) pgutil.Config {
	return pgutil.Config{
		URL:      cfg.URL,
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Name,
		SSLMode:  cfg.SSLMode,
		MaxConns: int32(cfg.MaxConns),
	}
}

// buildValidator returns nil when auth is disabled.
func buildValidator(cfg config.AuthConfig) (auth.Validator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	jwtCfg := auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.Issuer}
	if cfg.PublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read JWT public key: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// modelReady adapts the registry to a readiness check.
func modelReady(models *usecase.ModelRegistry) func(context.Context) error {
	return func(context.Context) error {
		_, err := models.Current()
		return err
	}
}
