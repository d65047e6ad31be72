package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pgutil.Querier
	pgutil.TxBeginner
}

// AssessmentRepository implements port.AssessmentRepository on PostgreSQL.
type AssessmentRepository struct {
	db DB
}

// NewAssessmentRepository creates a PostgreSQL-backed repository.
func NewAssessmentRepository(db DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const insertAssessment = `
	INSERT INTO risk_assessments (
		id, tenant_id, customer_ref, profile,
		probability_of_default, risk_level,
		loan_amount, expected_loss,
		schema_version, assessed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO NOTHING
`

const selectAssessment = `
	SELECT id, tenant_id, customer_ref, profile,
		probability_of_default, risk_level,
		loan_amount, expected_loss,
		schema_version, assessed_at
	FROM risk_assessments
	WHERE tenant_id = $1 AND id = $2
`

// Save inserts the assessment in its own transaction. A row with the same ID
// is left untouched.
func (r *AssessmentRepository) Save(ctx context.Context, a *model.RiskAssessment) error {
	profile, err := json.Marshal(a.Profile())
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	return pgutil.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertAssessment,
			a.ID(),
			a.TenantID(),
			a.CustomerRef(),
			profile,
			a.ProbabilityOfDefault(),
			a.RiskLevel().String(),
			a.LoanAmount(),
			a.ExpectedLoss(),
			a.SchemaVersion(),
			a.AssessedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}
		return nil
	})
}

// FindByID returns model.ErrAssessmentNotFound when no row matches.
func (r *AssessmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	a, err := scanAssessment(r.db.QueryRow(ctx, selectAssessment, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrAssessmentNotFound, id)
	}
	return a, err
}

func scanAssessment(row pgx.Row) (*model.RiskAssessment, error) {
	var (
		id            uuid.UUID
		tenantID      uuid.UUID
		customerRef   string
		profileJSON   []byte
		pd            float64
		riskLevelStr  string
		loanAmount    decimal.Decimal
		expectedLoss  decimal.Decimal
		schemaVersion string
		assessedAt    time.Time
	)

	err := row.Scan(
		&id, &tenantID, &customerRef, &profileJSON,
		&pd, &riskLevelStr,
		&loanAmount, &expectedLoss,
		&schemaVersion, &assessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}

	riskLevel, err := valueobject.RiskLevelFromString(riskLevelStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk level: %w", err)
	}

	var profile model.CustomerProfile
	if err := json.Unmarshal(profileJSON, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return model.ReconstructRiskAssessment(
		id, tenantID, customerRef, profile,
		pd, riskLevel, loanAmount, expectedLoss,
		schemaVersion, assessedAt,
	), nil
}
