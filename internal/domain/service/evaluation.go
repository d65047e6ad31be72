package service

import (
	"fmt"
	"math"
	"strings"
)

// ClassMetrics holds precision, recall and F1 for one label.
type ClassMetrics struct {
	Label     int     `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarizes hold-out classification quality.
type Evaluation struct {
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Accuracy    float64        `json:"accuracy"`
	Samples     int            `json:"samples"`
}

// DecisionCut is the probability at or above which a row is labelled as a default.
const DecisionCut = 0.5

// Labels turns default probabilities into hard labels at cut.
func Labels(probs []float64, cut float64) []int {
	out := make([]int, len(probs))
	for i, p := range probs {
		if p >= cut {
			out[i] = 1
		}
	}
	return out
}

// Evaluate compares binary predictions with the true labels.
func Evaluate(truth, predicted []int) (Evaluation, error) {
	if len(truth) != len(predicted) {
		return Evaluation{}, fmt.Errorf("evaluate: %d labels but %d predictions", len(truth), len(predicted))
	}
	if len(truth) == 0 {
		return Evaluation{}, fmt.Errorf("evaluate: no samples")
	}

	var correct int
	var tp, fp, fn, support [2]int
	for i, want := range truth {
		got := predicted[i]
		if want < 0 || want > 1 || got < 0 || got > 1 {
			return Evaluation{}, fmt.Errorf("evaluate: labels must be 0 or 1, got %d/%d at %d", want, got, i)
		}
		support[want]++
		if want == got {
			correct++
			tp[want]++
		} else {
			fp[got]++
			fn[want]++
		}
	}

	ev := Evaluation{
		Accuracy: float64(correct) / float64(len(truth)),
		Samples:  len(truth),
		MacroAvg: ClassMetrics{Label: -1, Support: len(truth)},
		WeightedAvg: ClassMetrics{
			Label:   -1,
			Support: len(truth),
		},
	}
	for label := range 2 {
		m := ClassMetrics{
			Label:     label,
			Precision: ratio(tp[label], tp[label]+fp[label]),
			Recall:    ratio(tp[label], tp[label]+fn[label]),
			Support:   support[label],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		ev.Classes = append(ev.Classes, m)

		w := float64(m.Support) / float64(len(truth))
		ev.MacroAvg.Precision += m.Precision / 2
		ev.MacroAvg.Recall += m.Recall / 2
		ev.MacroAvg.F1 += m.F1 / 2
		ev.WeightedAvg.Precision += m.Precision * w
		ev.WeightedAvg.Recall += m.Recall * w
		ev.WeightedAvg.F1 += m.F1 * w
	}
	return ev, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Report renders the evaluation as a fixed-width table.
func (e Evaluation) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%14s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range e.Classes {
		fmt.Fprintf(&b, "%14d %9.2f %9.2f %9.2f %9d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "\n%14s %9s %9s %9.2f %9d\n", "accuracy", "", "", e.Accuracy, e.Samples)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "macro avg", e.MacroAvg.Precision, e.MacroAvg.Recall, e.MacroAvg.F1, e.Samples)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "weighted avg", e.WeightedAvg.Precision, e.WeightedAvg.Recall, e.WeightedAvg.F1, e.Samples)
	return b.String()
}

// CalibrationBin is one populated bin of a reliability curve.
type CalibrationBin struct {
	MeanPredicted    float64 `json:"mean_predicted"`
	FractionPositive float64 `json:"fraction_positive"`
	Count            int     `json:"count"`
}

// CalibrationCurve groups probabilities into bins uniform bins over [0, 1]
// and reports, for each non-empty bin, the mean prediction and the observed
// positive rate.
func CalibrationCurve(truth []int, probs []float64, bins int) ([]CalibrationBin, error) {
	if len(truth) != len(probs) {
		return nil, fmt.Errorf("calibration: %d labels but %d probabilities", len(truth), len(probs))
	}
	if bins < 1 {
		return nil, fmt.Errorf("calibration: bins must be positive, got %d", bins)
	}

	sumPred := make([]float64, bins)
	positives := make([]int, bins)
	counts := make([]int, bins)
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("calibration: probability %v outside [0, 1]", p)
		}
		b := min(int(p*float64(bins)), bins-1)
		sumPred[b] += p
		positives[b] += truth[i]
		counts[b]++
	}

	var curve []CalibrationBin
	for b := range bins {
		if counts[b] == 0 {
			continue
		}
		curve = append(curve, CalibrationBin{
			MeanPredicted:    sumPred[b] / float64(counts[b]),
			FractionPositive: float64(positives[b]) / float64(counts[b]),
			Count:            counts[b],
		})
	}
	return curve, nil
}
