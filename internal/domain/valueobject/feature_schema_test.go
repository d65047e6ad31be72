package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func TestNewFeatureSchema(t *testing.T) {
	s, err := valueobject.NewFeatureSchema([]string{"income", "fico_score", "debt_to_income_ratio"})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"income", "fico_score", "debt_to_income_ratio"}, s.Columns())
	assert.Equal(t, valueobject.Float64, s.Fields()[1].Kind)

	pos, ok := s.Position("fico_score")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = s.Position("customer_id")
	assert.False(t, ok)
}

func TestFeatureSchema_VersionTracksOrder(t *testing.T) {
	a, err := valueobject.NewFeatureSchema([]string{"income", "fico_score"})
	require.NoError(t, err)
	b, err := valueobject.NewFeatureSchema([]string{"income", "fico_score"})
	require.NoError(t, err)
	c, err := valueobject.NewFeatureSchema([]string{"fico_score", "income"})
	require.NoError(t, err)

	assert.Equal(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), c.Version())
	assert.Contains(t, a.Version(), "fs1-")
}

func TestNewFeatureSchema_Invalid(t *testing.T) {
	_, err := valueobject.NewFeatureSchema(nil)
	require.Error(t, err)

	_, err = valueobject.NewFeatureSchema([]string{"income", ""})
	require.Error(t, err)

	_, err = valueobject.NewFeatureSchema([]string{"income", "income"})
	require.Error(t, err)
}

func TestFeatureSchema_Missing(t *testing.T) {
	s, err := valueobject.NewFeatureSchema([]string{"income", "fico_score", "years_employed"})
	require.NoError(t, err)

	assert.Empty(t, s.Missing([]string{"years_employed", "income", "fico_score", "extra"}))
	assert.Equal(t, []string{"fico_score", "years_employed"}, s.Missing([]string{"income"}))
}
