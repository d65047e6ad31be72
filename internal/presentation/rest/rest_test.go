package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/pkg/auth"
)

// --- Mock implementations ---

type fakeAssessor struct {
	got  dto.AssessCustomerRequest
	resp dto.AssessmentResponse
	err  error
}

func (f *fakeAssessor) Execute(_ context.Context, req dto.AssessCustomerRequest) (dto.AssessmentResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeScorer struct {
	resp dto.ScoreResponse
	err  error
}

func (f *fakeScorer) Execute(context.Context, dto.ScoreRequest) (dto.ScoreResponse, error) {
	return f.resp, f.err
}

type fakeFinder struct {
	got  dto.GetAssessmentRequest
	resp dto.AssessmentResponse
	err  error
}

func (f *fakeFinder) Execute(_ context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeModelInfo struct {
	info dto.ModelInfoResponse
	err  error
}

func (f *fakeModelInfo) Execute() (dto.ModelInfoResponse, error) { return f.info, f.err }

// --- Helpers ---

type fixture struct {
	assess *fakeAssessor
	score  *fakeScorer
	find   *fakeFinder
	info   *fakeModelInfo
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(f *fixture, mutate func(*RouterConfig)) http.Handler {
	cfg := RouterConfig{
		Health:      NewHealthHandler("credit-risk-service", nil, testLogger()),
		Assessments: NewAssessmentHandler(f.assess, f.score, f.find, f.info, testLogger()),
		Logger:      testLogger(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(cfg)
}

func newFixture() *fixture {
	return &fixture{assess: &fakeAssessor{}, score: &fakeScorer{}, find: &fakeFinder{}, info: &fakeModelInfo{}}
}

func do(h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// --- Tests ---

func TestCreateAssessment(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.assess.resp = dto.AssessmentResponse{
		ID:           uuid.New(),
		TenantID:     tenantID,
		RiskLevel:    "Low Risk",
		ExpectedLoss: decimal.RequireFromString("45.00"),
	}
	h := newRouter(f, nil)

	body := `{"tenant_id":"` + tenantID.String() + `","customer_ref":"CUST-3","profile":{"income":70000,"total_debt_outstanding":5000}}`
	rec := do(h, http.MethodPost, "/api/v1/assessments", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, tenantID, f.assess.got.TenantID)
	assert.Equal(t, 70000.0, f.assess.got.Profile["income"])

	var resp dto.AssessmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Low Risk", resp.RiskLevel)
	assert.True(t, resp.ExpectedLoss.Equal(decimal.NewFromInt(45)))
}

func TestCreateAssessment_MalformedBody(t *testing.T) {
	h := newRouter(newFixture(), nil)

	for _, body := range []string{`{`, `{"unknown":1}`, `{"profile":{"income":"lots"}}`} {
		rec := do(h, http.MethodPost, "/api/v1/assessments", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "invalid_input", decodeError(t, rec).Kind)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{name: "invalid input", err: &model.InputError{Field: "income", Reason: "is missing"}, wantCode: http.StatusBadRequest, wantKind: "invalid_input"},
		{name: "schema mismatch", err: &model.SchemaError{SchemaVersion: "fs1-abc", Missing: []string{"fico_score"}}, wantCode: http.StatusUnprocessableEntity, wantKind: "schema_mismatch"},
		{name: "not fitted", err: model.ErrNotFitted, wantCode: http.StatusServiceUnavailable, wantKind: "not_fitted"},
		{name: "oracle", err: &model.OracleError{Reason: "predict_proba", Err: errors.New("timeout")}, wantCode: http.StatusBadGateway, wantKind: "oracle"},
		{name: "internal", err: errors.New("disk full"), wantCode: http.StatusInternalServerError, wantKind: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.score.err = tt.err
			rec := do(newRouter(f, nil), http.MethodPost, "/api/v1/score", `{"profile":{"income":1}}`)

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantKind, body.Kind)
			if tt.wantCode == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body.Error)
			}
		})
	}
}

func TestGetAssessment(t *testing.T) {
	f := newFixture()
	tenantID, id := uuid.New(), uuid.New()
	f.find.resp = dto.AssessmentResponse{ID: id, TenantID: tenantID, RiskLevel: "High Risk"}
	h := newRouter(f, nil)

	rec := do(h, http.MethodGet, "/api/v1/assessments/"+id.String()+"?tenant_id="+tenantID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, f.find.got.AssessmentID)
	assert.Equal(t, tenantID, f.find.got.TenantID)

	rec = do(h, http.MethodGet, "/api/v1/assessments/not-a-uuid?tenant_id="+tenantID.String(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/assessments/"+id.String(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.find.err = model.ErrAssessmentNotFound
	rec = do(h, http.MethodGet, "/api/v1/assessments/"+id.String()+"?tenant_id="+tenantID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModelInfo(t *testing.T) {
	f := newFixture()
	f.info.info = dto.ModelInfoResponse{SchemaVersion: "fs1-abc", Columns: []string{"income"}}
	rec := do(newRouter(f, nil), http.MethodGet, "/api/v1/model", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var info dto.ModelInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, "fs1-abc", info.SchemaVersion)
}

func TestHealth(t *testing.T) {
	ready := true
	f := newFixture()
	h := newRouter(f, func(cfg *RouterConfig) {
		cfg.Health = NewHealthHandler("credit-risk-service", map[string]ReadinessCheck{
			"model": func(context.Context) error {
				if !ready {
					return model.ErrNotFitted
				}
				return nil
			},
		}, testLogger())
	})

	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = do(h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	ready = false
	rec = do(h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, model.ErrNotFitted.Error(), body.Checks["model"])
}

func TestRouter_Auth(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "rest-test-secret", Issuer: "creditrisk-test"})
	require.NoError(t, err)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "ok") })
	h := newRouter(newFixture(), func(cfg *RouterConfig) {
		cfg.Validator = jwtSvc
		cfg.Metrics = metrics
	})

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/v1/model", "").Code)

	apiClient, err := jwtSvc.Issue("svc-1", auth.RoleAPIClient)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden,
		do(h, http.MethodGet, "/api/v1/model", "", "Authorization", "Bearer "+apiClient).Code)
	assert.Equal(t, http.StatusOK,
		do(h, http.MethodPost, "/api/v1/score", `{"profile":{"income":1}}`, "Authorization", "Bearer "+apiClient).Code)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/metrics", "").Code)
}

func TestRouter_RateLimit(t *testing.T) {
	h := newRouter(newFixture(), func(cfg *RouterConfig) {
		cfg.Limiter = rate.NewLimiter(rate.Limit(0.001), 2)
	})

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/model", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/model", "").Code)
	rec := do(h, http.MethodGet, "/api/v1/model", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", decodeError(t, rec).Error)

	// Health is never throttled.
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "").Code)
}
