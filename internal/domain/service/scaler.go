package service

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ScalingParams are per-column standardization parameters.
type ScalingParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes the population mean and standard deviation of each
// column. A column with zero spread gets scale 1 so it maps to zero.
func FitScaler(rows [][]float64, width int) ScalingParams {
	params := ScalingParams{
		Mean:  make([]float64, width),
		Scale: make([]float64, width),
	}
	col := make([]float64, len(rows))
	for j := range width {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		params.Mean[j] = mean
		params.Scale[j] = std
	}
	return params
}

// Apply returns (row - mean) / scale without modifying row.
func (p ScalingParams) Apply(row []float64) []float64 {
	out := slices.Clone(row)
	for j := range out {
		out[j] = (out[j] - p.Mean[j]) / p.Scale[j]
	}
	return out
}
