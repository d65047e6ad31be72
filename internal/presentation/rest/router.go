package rest

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/bibbank/creditrisk/pkg/auth"
)

// RouterConfig assembles the HTTP surface.
type RouterConfig struct {
	Health      *HealthHandler
	Assessments *AssessmentHandler
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Validator enables bearer-token auth on /api routes when set.
	Validator auth.Validator
	// Limiter throttles /api routes when set.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// NewRouter returns the service's HTTP handler. Health and metrics routes are
// always public.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	api := http.NewServeMux()
	a := cfg.Assessments
	api.Handle("POST /api/v1/assessments", guard(cfg, http.HandlerFunc(a.CreateAssessment), auth.RoleAnalyst, auth.RoleAPIClient))
	api.Handle("GET /api/v1/assessments/{id}", guard(cfg, http.HandlerFunc(a.GetAssessment), auth.RoleAnalyst, auth.RoleAuditor, auth.RoleAPIClient))
	api.Handle("POST /api/v1/score", guard(cfg, http.HandlerFunc(a.Score), auth.RoleAnalyst, auth.RoleAPIClient))
	api.Handle("GET /api/v1/model", guard(cfg, http.HandlerFunc(a.ModelInfo), auth.RoleAnalyst, auth.RoleAuditor, auth.RoleModelAdmin))

	var apiHandler http.Handler = api
	if cfg.Validator != nil {
		apiHandler = auth.HTTPMiddleware(cfg.Validator, apiHandler)
	}
	if cfg.Limiter != nil {
		apiHandler = RateLimitMiddleware(cfg.Limiter)(apiHandler)
	}
	mux.Handle("/api/", apiHandler)

	return LoggingMiddleware(cfg.Logger)(mux)
}

func guard(cfg RouterConfig, h http.Handler, roles ...string) http.Handler {
	if cfg.Validator == nil {
		return h
	}
	return auth.RequireRole(h, roles...)
}
