// Package metrics computes per-case accuracy scores and aggregate
// statistics over evaluation results.
package metrics

import (
	"math"
	"sort"
	"strings"

	"github.com/signalnine/retrievalbench/internal/result"
)

// PrecisionRecall computes set precision and recall of retrieved
// against truth. Precision is 0 for an empty retrieved set.
func PrecisionRecall(retrieved, truth []string) (precision, recall float64) {
	r := toSet(retrieved)
	g := toSet(truth)
	if len(r) == 0 || len(g) == 0 {
		return 0, 0
	}
	correct := 0
	for f := range r {
		if g[f] {
			correct++
		}
	}
	return float64(correct) / float64(len(r)), float64(correct) / float64(len(g))
}

// F1Score is the harmonic mean of precision and recall. Two empty
// sets count as a perfect match.
func F1Score(retrieved, truth []string) float64 {
	r := toSet(retrieved)
	g := toSet(truth)
	if len(r) == 0 && len(g) == 0 {
		return 1.0
	}
	precision, recall := PrecisionRecall(retrieved, truth)
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// PartialScore grants directory-level credit, reported separately
// from F1: a retrieved entry earns 1.0 for an exact ground-truth
// match, a fixed 0.5 when it is only a path prefix of some
// ground-truth file, and 0 otherwise. The result is the mean credit
// over retrieved entries; 0 when nothing was retrieved.
func PartialScore(retrieved, truth []string) float64 {
	r := dedupe(retrieved)
	if len(r) == 0 {
		return 0
	}
	g := toSet(truth)
	var total float64
	for _, entry := range r {
		switch {
		case g[entry]:
			total += 1.0
		case prefixOfAny(entry, truth):
			total += 0.5
		}
	}
	return total / float64(len(r))
}

func prefixOfAny(entry string, truth []string) bool {
	for _, gt := range truth {
		if strings.HasPrefix(gt, entry) {
			return true
		}
	}
	return false
}

// Score fills per-case F1 and partial scores and the aggregate block
// of a run.
func Score(run *result.EvaluationRun) {
	f1s := make([]float64, 0, len(run.Results))
	latencies := make([]float64, 0, len(run.Results))
	failures := 0

	for i := range run.Results {
		r := &run.Results[i]
		r.F1 = F1Score(r.RetrievedFiles, r.GroundTruthFiles)
		r.PartialScore = PartialScore(r.RetrievedFiles, r.GroundTruthFiles)
		f1s = append(f1s, r.F1)
		latencies = append(latencies, r.LatencyMS)
		if r.Status != result.StatusOK {
			failures++
		}
	}

	run.Aggregate = result.AggregateMetrics{
		MeanF1:       Mean(f1s),
		MedianF1:     Median(f1s),
		StdDevF1:     StdDev(f1s),
		P50LatencyMS: Percentile(latencies, 0.50),
		P90LatencyMS: Percentile(latencies, 0.90),
		P99LatencyMS: Percentile(latencies, 0.99),
		Cases:        len(run.Results),
		Failures:     failures,
	}
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// StdDev is the sample standard deviation, 0 for fewer than 2 values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// Percentile uses nearest-rank on the sorted sample: index floor(p·n)
// clamped to the last element.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

func toSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
