package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

type fakeRow struct {
	err    error
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.values[i].(uuid.UUID)
		case *string:
			*p = r.values[i].(string)
		case *[]byte:
			*p = r.values[i].([]byte)
		case *float64:
			*p = r.values[i].(float64)
		case *decimal.Decimal:
			*p = r.values[i].(decimal.Decimal)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return errors.New("unexpected scan target")
		}
	}
	return nil
}

type fakeTx struct {
	pgx.Tx
	execErr    error
	execSQL    string
	execArgs   []any
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execSQL = sql
	t.execArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), t.execErr
}

func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

type fakeDB struct {
	tx  *fakeTx
	row pgx.Row
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) { return d.tx, nil }

func (d *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (d *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return d.row }

func (d *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func newAssessment(t *testing.T) *model.RiskAssessment {
	t.Helper()
	a, err := model.NewRiskAssessment(uuid.New(), "cust-9",
		model.CustomerProfile{model.FieldIncome: 50000, model.FieldLoanAmount: 10000},
		model.RiskResult{ProbabilityOfDefault: 0.1, RiskLevel: valueobject.RiskLevelLow, ExpectedLoss: 900},
		"fs1-abc",
	)
	require.NoError(t, err)
	return a
}

func TestSaveCommits(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	repo := NewAssessmentRepository(db)
	a := newAssessment(t)

	require.NoError(t, repo.Save(context.Background(), a))
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)

	assert.Contains(t, db.tx.execSQL, "ON CONFLICT (id) DO NOTHING")
	require.Len(t, db.tx.execArgs, 10)
	assert.Equal(t, a.ID(), db.tx.execArgs[0])
	assert.Equal(t, "Low Risk", db.tx.execArgs[5])

	var profile map[string]float64
	require.NoError(t, json.Unmarshal(db.tx.execArgs[3].([]byte), &profile))
	assert.Equal(t, 50000.0, profile[model.FieldIncome])
}

func TestSaveRollsBackOnError(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{execErr: errors.New("connection reset")}}
	err := NewAssessmentRepository(db).Save(context.Background(), newAssessment(t))

	require.Error(t, err)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestFindByID(t *testing.T) {
	id, tenantID := uuid.New(), uuid.New()
	assessedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{
		id, tenantID, "cust-1", []byte(`{"income":50000,"loan_amt_outstanding":10000}`),
		0.62, "High Risk",
		decimal.NewFromInt(10000), decimal.RequireFromString("5580.00"),
		"fs1-abc", assessedAt,
	}}}

	a, err := NewAssessmentRepository(db).FindByID(context.Background(), tenantID, id)
	require.NoError(t, err)

	assert.Equal(t, id, a.ID())
	assert.Equal(t, "cust-1", a.CustomerRef())
	assert.True(t, a.RiskLevel().Equal(valueobject.RiskLevelHigh))
	assert.Equal(t, 50000.0, a.Profile()[model.FieldIncome])
	assert.Equal(t, "5580", a.ExpectedLoss().String())
	assert.Equal(t, assessedAt, a.AssessedAt())
	assert.Empty(t, a.Events())
}

func TestFindByIDNotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	_, err := NewAssessmentRepository(db).FindByID(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, model.ErrAssessmentNotFound)
}

func TestFindByIDCorruptRow(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{
		uuid.New(), uuid.New(), "c", []byte(`{}`), 0.1, "Severe",
		decimal.Zero, decimal.Zero, "v", time.Now(),
	}}}
	_, err := NewAssessmentRepository(db).FindByID(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrAssessmentNotFound)
}
