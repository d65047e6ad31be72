package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/internal/infrastructure/dataset"
	infrakafka "github.com/bibbank/creditrisk/internal/infrastructure/kafka"
	"github.com/bibbank/creditrisk/internal/infrastructure/memory"
	"github.com/bibbank/creditrisk/internal/infrastructure/postgres"
	grpcpresentation "github.com/bibbank/creditrisk/internal/presentation/grpc"
	"github.com/bibbank/creditrisk/internal/presentation/rest"
	"github.com/bibbank/creditrisk/migrations"
	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
	"github.com/bibbank/creditrisk/pkg/observability"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
	"github.com/bibbank/creditrisk/pkg/tlsutil"
)

func main() {
	if err := run(); err != nil {
		slog.Error("credit-risk-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	riskCfg, err := cfg.RiskConfig()
	if err != nil {
		return err
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})

	logger.Info("starting credit-risk-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"oracle_mode", cfg.Oracle.Mode,
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		Insecure:    cfg.Observability.OTLPInsecure,
		SampleRatio: 1,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	// Metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	meterProvider, metricsHandler, err := observability.InitMeterProvider(registry)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(meterProvider)
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	readiness := map[string]rest.ReadinessCheck{}

	// Persistence.
	var repo port.AssessmentRepository
	if cfg.DB.Enabled() {
		pgCfg := postgresConfig(cfg.DB)

		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pgutil.NewPool(dbCtx, pgCfg)
		dbCancel()
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("connected to database")

		if err := pgutil.Migrate(pgCfg.DSN(), migrations.FS, "."); err != nil {
			return err
		}
		logger.Info("database migrations applied")

		repo = postgres.NewAssessmentRepository(pool)
		readiness["database"] = func(ctx context.Context) error { return pgutil.HealthCheck(ctx, pool) }
	} else {
		logger.Warn("no database configured, assessments are kept in memory")
		repo = memory.NewAssessmentRepository()
	}

	// Messaging.
	var publisher port.EventPublisher
	kafkaCfg := kafkaConfig(cfg.Kafka)
	if cfg.Kafka.Enabled() {
		producer, err := pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error("kafka producer close error", "error", err)
			}
		}()
		publisher = infrakafka.NewPublisher(producer, logger)
	} else {
		logger.Warn("no kafka brokers configured, domain events are logged only")
		publisher = infrakafka.NewLogPublisher(logger)
	}

	// Model.
	oracle, err := buildOracle(cfg.Oracle, logger)
	if err != nil {
		return err
	}
	opts := append(oracle.trainOptions(), usecase.WithTrainingMetrics(metrics))
	trainModelUC := usecase.NewTrainModel(
		dataset.NewCSVLoader(cfg.Risk.DataPath),
		oracle.classifier,
		usecase.TrainModelConfig{
			Risk:       riskCfg,
			Classifier: oracle.name,
			TestSize:   cfg.Risk.TestSize,
			Seed:       cfg.Risk.Seed,
		},
		logger,
		opts...,
	)
	models := usecase.NewModelRegistry()
	readiness["model"] = modelReady(models)

	// Wire use cases.
	assessCustomerUC := usecase.NewAssessCustomer(models, repo, publisher, metrics)
	scoreProfileUC := usecase.NewScoreProfile(models)
	getAssessmentUC := usecase.NewGetAssessment(repo)
	getModelInfoUC := usecase.NewGetModelInfo(models)

	validator, err := buildValidator(cfg.Auth)
	if err != nil {
		return err
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewCreditRiskHandler(assessCustomerUC, scoreProfileUC, getAssessmentUC, getModelInfoUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, cfg.GRPCAddr(), logger, grpcpresentation.ServerOptions{
		Validator:   validator,
		TLSCertFile: cfg.TLS.CertFile,
		TLSKeyFile:  cfg.TLS.KeyFile,
		Reflection:  cfg.Environment == "development",
	})
	if err != nil {
		return err
	}

	// HTTP server.
	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Health:      rest.NewHealthHandler(cfg.ServiceName, readiness, logger),
			Assessments: rest.NewAssessmentHandler(assessCustomerUC, scoreProfileUC, getAssessmentUC, getModelInfoUC, logger),
			Metrics:     metricsHandler,
			Validator:   validator,
			Limiter:     limiter,
			Logger:      logger,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if cfg.TLS.Enabled() {
		tlsCfg, err := tlsutil.ServerConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return err
		}
		httpServer.TLSConfig = tlsCfg
	}

	// Start servers.
	errCh := make(chan error, 4)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddr())
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Train before accepting score requests from Kafka.
	go func() {
		trained, err := trainModelUC.Execute(ctx)
		if err != nil {
			errCh <- fmt.Errorf("model training failed: %w", err)
			return
		}
		models.Activate(trained)
		grpcServer.SetServing(true)
		logger.Info("model activated",
			"schema_version", trained.Info.SchemaVersion,
			"accuracy", trained.Info.Evaluation.Accuracy,
		)

		if !cfg.Kafka.Enabled() || cfg.Kafka.ScoreRequestTopic == "" {
			return
		}
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.ScoreRequestTopic,
			infrakafka.NewScoreRequestHandler(assessCustomerUC, logger), logger)
		if err != nil {
			errCh <- err
			return
		}
		defer consumer.Close()
		if err := consumer.Run(ctx); err != nil {
			errCh <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	logger.Info("credit-risk-service started",
		"grpc_address", cfg.GRPCAddr(),
		"http_address", cfg.HTTPAddr(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down credit-risk-service")
	cancel()

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("credit-risk-service stopped")
	return runErr
}
