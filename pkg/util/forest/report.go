package forest

import (
	"fmt"
	"math"
	"strings"
)

// ClassMetrics holds precision, recall and F1 for a single class (or an average row)
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is a per-class classification summary of predictions against truth
type Report struct {
	Classes     []ClassMetrics `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	MacroAvg    ClassMetrics   `json:"macroAvg"`
	WeightedAvg ClassMetrics   `json:"weightedAvg"`
	Total       int            `json:"total"`
}

// Accuracy is the fraction of matching labels; 0 for empty input
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0
	}
	hit := 0
	for i := range truth {
		if truth[i] == pred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(truth))
}

// MeanStd returns the mean and population standard deviation of xs
func MeanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(v / float64(len(xs)))
}

// Classification builds a Report for classes 0..len(labels)-1. Undefined ratios
// (no predictions or no support for a class) are reported as zero.
func Classification(truth, pred []int, labels []string) Report {
	k := len(labels)
	tp := make([]int, k)
	predicted := make([]int, k)
	support := make([]int, k)
	for i := range truth {
		if truth[i] >= 0 && truth[i] < k {
			support[truth[i]]++
		}
		if pred[i] >= 0 && pred[i] < k {
			predicted[pred[i]]++
		}
		if truth[i] == pred[i] && truth[i] >= 0 && truth[i] < k {
			tp[truth[i]]++
		}
	}

	r := Report{Accuracy: Accuracy(truth, pred), Total: len(truth)}
	r.MacroAvg.Label = "macro avg"
	r.WeightedAvg.Label = "weighted avg"
	for c := 0; c < k; c++ {
		m := ClassMetrics{
			Label:     labels[c],
			Precision: ratio(tp[c], predicted[c]),
			Recall:    ratio(tp[c], support[c]),
			Support:   support[c],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)

		r.MacroAvg.Precision += m.Precision / float64(k)
		r.MacroAvg.Recall += m.Recall / float64(k)
		r.MacroAvg.F1 += m.F1 / float64(k)
		if r.Total > 0 {
			w := float64(m.Support) / float64(r.Total)
			r.WeightedAvg.Precision += m.Precision * w
			r.WeightedAvg.Recall += m.Recall * w
			r.WeightedAvg.F1 += m.F1 * w
		}
	}
	r.MacroAvg.Support = r.Total
	r.WeightedAvg.Support = r.Total
	return r
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// String renders the report as a fixed-width text table
func (r Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&sb, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Total)
	for _, c := range []ClassMetrics{r.MacroAvg, r.WeightedAvg} {
		fmt.Fprintf(&sb, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	return sb.String()
}
