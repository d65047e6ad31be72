package service

import (
	"cmp"
	"fmt"
	"maps"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// DefaultNeighbors is the k used when SMOTE.K is not set.
const DefaultNeighbors = 5

// SMOTE oversamples the minority class of a binary-labelled set until both
// classes have the same count. Synthetic rows are interpolated between a
// minority sample and one of its k nearest minority neighbours.
type SMOTE struct {
	K    int
	Seed int64
}

// Resample returns the original rows followed by the synthetic ones. Inputs
// are not modified. The same seed and input always produce the same output.
func (s SMOTE) Resample(x [][]float64, y []int) ([][]float64, []int, error) {
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("smote: %d rows but %d labels", len(x), len(y))
	}

	counts := map[int]int{}
	for _, label := range y {
		counts[label]++
	}
	if len(counts) != 2 {
		return nil, nil, &model.InputError{
			Field:  "labels",
			Reason: fmt.Sprintf("must contain exactly two classes, found %d", len(counts)),
		}
	}

	classes := slices.Sorted(maps.Keys(counts))
	minority, majority := classes[0], classes[1]
	if counts[minority] > counts[majority] {
		minority, majority = majority, minority
	}

	outX := make([][]float64, 0, len(x)+counts[majority]-counts[minority])
	for _, row := range x {
		outX = append(outX, slices.Clone(row))
	}
	outY := slices.Clone(y)

	deficit := counts[majority] - counts[minority]
	if deficit == 0 {
		return outX, outY, nil
	}
	if counts[minority] < 2 {
		return nil, nil, &model.InputError{
			Field:  "labels",
			Reason: "minority class needs at least two samples to oversample",
		}
	}

	var samples [][]float64
	for i, label := range y {
		if label == minority {
			samples = append(samples, x[i])
		}
	}

	k := s.K
	if k <= 0 {
		k = DefaultNeighbors
	}
	k = min(k, len(samples)-1)
	neighbors := nearestNeighbors(samples, k)

	rng := rand.New(rand.NewSource(s.Seed))
	for range deficit {
		i := rng.Intn(len(samples))
		nn := samples[neighbors[i][rng.Intn(k)]]
		gap := rng.Float64()

		base := samples[i]
		synthetic := make([]float64, len(base))
		for j := range base {
			synthetic[j] = base[j] + gap*(nn[j]-base[j])
		}
		outX = append(outX, synthetic)
		outY = append(outY, minority)
	}
	return outX, outY, nil
}

// nearestNeighbors returns, for each sample, the indices of its k closest
// other samples by Euclidean distance. Ties resolve to the lower index.
func nearestNeighbors(samples [][]float64, k int) [][]int {
	type candidate struct {
		dist  float64
		index int
	}
	out := make([][]int, len(samples))
	candidates := make([]candidate, 0, len(samples)-1)
	for i, a := range samples {
		candidates = candidates[:0]
		for j, b := range samples {
			if i == j {
				continue
			}
			candidates = append(candidates, candidate{dist: floats.Distance(a, b, 2), index: j})
		}
		slices.SortFunc(candidates, func(p, q candidate) int {
			if c := cmp.Compare(p.dist, q.dist); c != 0 {
				return c
			}
			return cmp.Compare(p.index, q.index)
		})
		idx := make([]int, k)
		for n := range k {
			idx[n] = candidates[n].index
		}
		out[i] = idx
	}
	return out
}
