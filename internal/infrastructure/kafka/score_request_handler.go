package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
)

// Assessor is satisfied by *usecase.AssessCustomer.
type Assessor interface {
	Execute(ctx context.Context, req dto.AssessCustomerRequest) (dto.AssessmentResponse, error)
}

// NewScoreRequestHandler returns a consumer handler that assesses each
// JSON-encoded dto.AssessCustomerRequest. Messages that can never succeed
// (malformed JSON, invalid profiles, schema mismatches) are logged and
// acknowledged. Any other failure is returned and the consumer retries the
// same message. A request without request_id is keyed by its topic, partition
// and offset so a redelivery maps to the same assessment.
func NewScoreRequestHandler(assessor Assessor, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		var req dto.AssessCustomerRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			logger.WarnContext(ctx, "dropping malformed score request",
				slog.String("key", string(msg.Key)),
				slog.String("error", err.Error()),
			)
			return nil
		}

		if req.RequestID == "" {
			req.RequestID = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
		}

		resp, err := assessor.Execute(ctx, req)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "score request assessed",
				slog.String("assessment_id", resp.ID.String()),
				slog.String("customer_ref", resp.CustomerRef),
				slog.String("risk_level", resp.RiskLevel),
			)
			return nil
		case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrSchemaMismatch):
			logger.WarnContext(ctx, "rejecting score request",
				slog.String("customer_ref", req.CustomerRef),
				slog.String("kind", model.ErrorKind(err)),
				slog.String("error", err.Error()),
			)
			return nil
		default:
			return fmt.Errorf("assess score request %q: %w", req.CustomerRef, err)
		}
	}
}
