package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/pkg/auth"
)

// Use case contracts consumed by the handler. The usecase package types
// satisfy them.
type (
	customerAssessor interface {
		Execute(ctx context.Context, req dto.AssessCustomerRequest) (dto.AssessmentResponse, error)
	}
	profileScorer interface {
		Execute(ctx context.Context, req dto.ScoreRequest) (dto.ScoreResponse, error)
	}
	assessmentFinder interface {
		Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error)
	}
	modelInfoReader interface {
		Execute() (dto.ModelInfoResponse, error)
	}
)

// Compile-time assertion that CreditRiskHandler implements CreditRiskServiceServer.
var _ CreditRiskServiceServer = (*CreditRiskHandler)(nil)

// CreditRiskHandler implements the gRPC CreditRiskServiceServer interface.
type CreditRiskHandler struct {
	UnimplementedCreditRiskServiceServer
	assessCustomer customerAssessor
	scoreProfile   profileScorer
	getAssessment  assessmentFinder
	getModelInfo   modelInfoReader
	logger         *slog.Logger
}

// NewCreditRiskHandler creates a new gRPC handler.
func NewCreditRiskHandler(
	assessCustomer customerAssessor,
	scoreProfile profileScorer,
	getAssessment assessmentFinder,
	getModelInfo modelInfoReader,
	logger *slog.Logger,
) *CreditRiskHandler {
	return &CreditRiskHandler{
		assessCustomer: assessCustomer,
		scoreProfile:   scoreProfile,
		getAssessment:  getAssessment,
		getModelInfo:   getModelInfo,
		logger:         logger,
	}
}

// Proto-aligned request/response message types.

// AssessCustomerRequest represents the proto AssessCustomerRequest message.
type AssessCustomerRequest struct {
	TenantID    string             `json:"tenant_id"`
	CustomerRef string             `json:"customer_ref"`
	Profile     map[string]float64 `json:"profile"`
}

// RiskAssessmentMsg represents the proto RiskAssessment message.
type RiskAssessmentMsg struct {
	ID                   string  `json:"id"`
	TenantID             string  `json:"tenant_id"`
	CustomerRef          string  `json:"customer_ref"`
	RiskLevel            string  `json:"risk_level"`
	LoanAmount           string  `json:"loan_amount"`
	ExpectedLoss         string  `json:"expected_loss"`
	SchemaVersion        string  `json:"schema_version"`
	AssessedAt           string  `json:"assessed_at"`
	ProbabilityOfDefault float64 `json:"probability_of_default"`
}

// AssessCustomerResponse represents the proto AssessCustomerResponse message.
type AssessCustomerResponse struct {
	Assessment *RiskAssessmentMsg `json:"assessment"`
}

// ScoreProfileRequest represents the proto ScoreProfileRequest message.
type ScoreProfileRequest struct {
	Profile map[string]float64 `json:"profile"`
}

// ScoreProfileResponse represents the proto ScoreProfileResponse message.
type ScoreProfileResponse struct {
	RiskLevel            string  `json:"risk_level"`
	SchemaVersion        string  `json:"schema_version"`
	ProbabilityOfDefault float64 `json:"probability_of_default"`
	ExpectedLoss         float64 `json:"expected_loss"`
}

// GetAssessmentRequest represents the proto GetAssessmentRequest message.
type GetAssessmentRequest struct {
	TenantID string `json:"tenant_id"`
	ID       string `json:"id"`
}

// GetAssessmentResponse represents the proto GetAssessmentResponse message.
type GetAssessmentResponse struct {
	Assessment *RiskAssessmentMsg `json:"assessment"`
}

// GetModelInfoRequest represents the proto GetModelInfoRequest message.
type GetModelInfoRequest struct{}

// GetModelInfoResponse represents the proto GetModelInfoResponse message.
type GetModelInfoResponse struct {
	SchemaVersion string   `json:"schema_version"`
	Classifier    string   `json:"classifier"`
	TrainedAt     string   `json:"trained_at"`
	Columns       []string `json:"columns"`
	Accuracy      float64  `json:"accuracy"`
	TrainingRows  int32    `json:"training_rows"`
	TestRows      int32    `json:"test_rows"`
}

// AssessCustomer scores, stores and publishes an assessment.
func (h *CreditRiskHandler) AssessCustomer(ctx context.Context, req *AssessCustomerRequest) (*AssessCustomerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid tenant_id: %v", err)
	}

	h.logger.InfoContext(ctx, "assessing customer",
		slog.String("tenant_id", tenantID.String()),
		slog.String("customer_ref", req.CustomerRef),
		slog.String("caller", auth.Subject(ctx)),
	)

	result, err := h.assessCustomer.Execute(ctx, dto.AssessCustomerRequest{
		TenantID:    tenantID,
		CustomerRef: req.CustomerRef,
		Profile:     req.Profile,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "assess customer", err)
	}

	return &AssessCustomerResponse{Assessment: toAssessmentMsg(result)}, nil
}

// ScoreProfile scores a profile without storing it.
func (h *CreditRiskHandler) ScoreProfile(ctx context.Context, req *ScoreProfileRequest) (*ScoreProfileResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.scoreProfile.Execute(ctx, dto.ScoreRequest{Profile: req.Profile})
	if err != nil {
		return nil, h.toStatus(ctx, "score profile", err)
	}

	return &ScoreProfileResponse{
		RiskLevel:            result.RiskLevel,
		SchemaVersion:        result.SchemaVersion,
		ProbabilityOfDefault: result.ProbabilityOfDefault,
		ExpectedLoss:         result.ExpectedLoss,
	}, nil
}

// GetAssessment handles a get assessment request.
func (h *CreditRiskHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid tenant_id: %v", err)
	}
	assessmentID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getAssessment.Execute(ctx, dto.GetAssessmentRequest{
		TenantID:     tenantID,
		AssessmentID: assessmentID,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "get assessment", err)
	}

	return &GetAssessmentResponse{Assessment: toAssessmentMsg(result)}, nil
}

// GetModelInfo describes the active model.
func (h *CreditRiskHandler) GetModelInfo(ctx context.Context, _ *GetModelInfoRequest) (*GetModelInfoResponse, error) {
	info, err := h.getModelInfo.Execute()
	if err != nil {
		return nil, h.toStatus(ctx, "get model info", err)
	}

	return &GetModelInfoResponse{
		SchemaVersion: info.SchemaVersion,
		Classifier:    info.Classifier,
		TrainedAt:     info.TrainedAt.Format(time.RFC3339),
		Columns:       info.Columns,
		Accuracy:      info.Evaluation.Accuracy,
		TrainingRows:  int32(info.TrainingRows),
		TestRows:      int32(info.TestRows),
	}, nil
}

// toStatus maps pipeline error kinds onto gRPC codes. Unclassified errors are
// logged and hidden behind codes.Internal.
func (h *CreditRiskHandler) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrSchemaMismatch), errors.Is(err, model.ErrNotFitted):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, model.ErrAssessmentNotFound):
		return status.Error(codes.NotFound, "assessment not found")
	case errors.Is(err, model.ErrOracle):
		h.logger.WarnContext(ctx, "oracle unavailable", slog.String("op", op), slog.String("error", err.Error()))
		return status.Error(codes.Unavailable, "probability oracle unavailable")
	default:
		h.logger.ErrorContext(ctx, "failed to "+op, slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}

func toAssessmentMsg(r dto.AssessmentResponse) *RiskAssessmentMsg {
	return &RiskAssessmentMsg{
		ID:                   r.ID.String(),
		TenantID:             r.TenantID.String(),
		CustomerRef:          r.CustomerRef,
		RiskLevel:            r.RiskLevel,
		LoanAmount:           r.LoanAmount.String(),
		ExpectedLoss:         r.ExpectedLoss.StringFixed(2),
		SchemaVersion:        r.SchemaVersion,
		AssessedAt:           r.AssessedAt.Format(time.RFC3339),
		ProbabilityOfDefault: r.ProbabilityOfDefault,
	}
}
