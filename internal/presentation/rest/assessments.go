package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/pkg/auth"
)

const maxBodyBytes = 1 << 20

// Use case contracts consumed by the REST handlers.
type (
	CustomerAssessor interface {
		Execute(ctx context.Context, req dto.AssessCustomerRequest) (dto.AssessmentResponse, error)
	}
	ProfileScorer interface {
		Execute(ctx context.Context, req dto.ScoreRequest) (dto.ScoreResponse, error)
	}
	AssessmentFinder interface {
		Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error)
	}
	ModelInfoReader interface {
		Execute() (dto.ModelInfoResponse, error)
	}
)

// AssessmentHandler serves the /api/v1 scoring routes.
type AssessmentHandler struct {
	assess CustomerAssessor
	score  ProfileScorer
	find   AssessmentFinder
	info   ModelInfoReader
	logger *slog.Logger
}

func NewAssessmentHandler(
	assess CustomerAssessor,
	score ProfileScorer,
	find AssessmentFinder,
	info ModelInfoReader,
	logger *slog.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{assess: assess, score: score, find: find, info: info, logger: logger}
}

// ErrorResponse is the JSON body of every non-2xx API answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// CreateAssessment handles POST /api/v1/assessments.
func (h *AssessmentHandler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req dto.AssessCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.logger.InfoContext(r.Context(), "assessing customer",
		slog.String("tenant_id", req.TenantID.String()),
		slog.String("customer_ref", req.CustomerRef),
		slog.String("caller", auth.Subject(r.Context())),
	)

	resp, err := h.assess.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetAssessment handles GET /api/v1/assessments/{id}?tenant_id=.
func (h *AssessmentHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid assessment id", Kind: "invalid_input"})
		return
	}
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid tenant_id", Kind: "invalid_input"})
		return
	}

	resp, err := h.find.Execute(r.Context(), dto.GetAssessmentRequest{TenantID: tenantID, AssessmentID: id})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Score handles POST /api/v1/score.
func (h *AssessmentHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.score.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ModelInfo handles GET /api/v1/model.
func (h *AssessmentHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := h.info.Execute()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AssessmentHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed request body: " + err.Error(), Kind: "invalid_input"})
		return false
	}
	return true
}

// writeError maps pipeline error kinds onto HTTP status codes.
func (h *AssessmentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := model.ErrorKind(err)
	var code int
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, model.ErrSchemaMismatch):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNotFitted):
		code = http.StatusServiceUnavailable
	case errors.Is(err, model.ErrOracle):
		code = http.StatusBadGateway
	case errors.Is(err, model.ErrAssessmentNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "assessment not found", Kind: kind})
		return
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: kind})
		return
	}
	writeJSON(w, code, ErrorResponse{Error: err.Error(), Kind: kind})
}
