package model

import (
	"maps"
	"slices"
)

// Profile and feature field names.
const (
	FieldCustomerID    = "customer_id"
	FieldIncome        = "income"
	FieldTotalDebt     = "total_debt_outstanding"
	FieldFICOScore     = "fico_score"
	FieldCreditLines   = "credit_lines_outstanding"
	FieldLoanAmount    = "loan_amt_outstanding"
	FieldYearsEmployed = "years_employed"
	FieldDebtToIncome  = "debt_to_income_ratio"
)

// ProfileFields lists the raw attributes every training record carries.
var ProfileFields = []string{
	FieldIncome,
	FieldTotalDebt,
	FieldFICOScore,
	FieldCreditLines,
	FieldLoanAmount,
	FieldYearsEmployed,
}

// CustomerProfile maps attribute names to raw numeric values.
type CustomerProfile map[string]float64

// Clone returns an independent copy.
func (p CustomerProfile) Clone() CustomerProfile {
	return maps.Clone(p)
}

// LoanAmount returns the outstanding loan amount and whether it was supplied.
func (p CustomerProfile) LoanAmount() (float64, bool) {
	v, ok := p[FieldLoanAmount]
	return v, ok
}

// Record is one labelled training row.
type Record struct {
	CustomerID string
	Profile    CustomerProfile
	Defaulted  bool
}

// Label returns 1 for a defaulted borrower and 0 otherwise.
func (r Record) Label() int {
	if r.Defaulted {
		return 1
	}
	return 0
}

// FeatureVector is an engineered profile ready for preprocessing.
type FeatureVector map[string]float64

// Columns returns the vector's keys in canonical order.
func (v FeatureVector) Columns() []string {
	return CanonicalColumns(slices.Collect(maps.Keys(v)))
}

var canonicalRank = func() map[string]int {
	order := append(slices.Clone(ProfileFields), FieldDebtToIncome)
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}
	return rank
}()

// CanonicalColumns orders names with known attributes first, in ProfileFields
// order followed by the derived ratio, then any other names alphabetically.
func CanonicalColumns(names []string) []string {
	out := slices.Clone(names)
	slices.SortFunc(out, func(a, b string) int {
		ra, aKnown := canonicalRank[a]
		rb, bKnown := canonicalRank[b]
		switch {
		case aKnown && bKnown:
			return ra - rb
		case aKnown:
			return -1
		case bKnown:
			return 1
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	})
	return out
}
