package model

import (
	"fmt"
	"math"
	"slices"
)

// FeatureMatrix is a dense, column-labelled batch of feature rows.
type FeatureMatrix struct {
	Columns []string
	Rows    [][]float64
}

// NewFeatureMatrix lays vectors out in canonical column order. Every vector
// must carry the same column set as the first one.
func NewFeatureMatrix(vectors []FeatureVector) (FeatureMatrix, error) {
	if len(vectors) == 0 {
		return FeatureMatrix{}, &InputError{Field: "features", Reason: "is empty"}
	}
	columns := vectors[0].Columns()
	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != len(columns) {
			return FeatureMatrix{}, fmt.Errorf("row %d: %w", i, &SchemaError{
				SchemaVersion: "batch",
				Missing:       missingColumns(columns, v),
			})
		}
		row := make([]float64, len(columns))
		for j, c := range columns {
			val, ok := v[c]
			if !ok {
				return FeatureMatrix{}, fmt.Errorf("row %d: %w", i, &SchemaError{
					SchemaVersion: "batch",
					Missing:       missingColumns(columns, v),
				})
			}
			row[j] = val
		}
		rows[i] = row
	}
	return FeatureMatrix{Columns: columns, Rows: rows}, nil
}

func missingColumns(columns []string, v FeatureVector) []string {
	var missing []string
	for _, c := range columns {
		if _, ok := v[c]; !ok {
			missing = append(missing, c)
		}
	}
	if missing == nil {
		missing = []string{"(column set differs)"}
	}
	return missing
}

// Len returns the number of rows.
func (m FeatureMatrix) Len() int { return len(m.Rows) }

// Subset returns the rows at idx. Row slices are shared with m.
func (m FeatureMatrix) Subset(idx []int) FeatureMatrix {
	rows := make([][]float64, len(idx))
	for i, j := range idx {
		rows[i] = m.Rows[j]
	}
	return FeatureMatrix{Columns: slices.Clone(m.Columns), Rows: rows}
}

// Validate checks row widths and rejects non-finite values.
func (m FeatureMatrix) Validate() error {
	for i, row := range m.Rows {
		if len(row) != len(m.Columns) {
			return &InputError{
				Field:  fmt.Sprintf("row %d", i),
				Reason: fmt.Sprintf("has %d values for %d columns", len(row), len(m.Columns)),
			}
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &InputError{Field: fmt.Sprintf("row %d %s", i, m.Columns[j]), Reason: "is not finite"}
			}
		}
	}
	return nil
}
