package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/retrievalbench/internal/metrics"
	"github.com/signalnine/retrievalbench/internal/result"
)

func TestF1Score(t *testing.T) {
	tests := []struct {
		name      string
		retrieved []string
		truth     []string
		want      float64
	}{
		{"half overlap", []string{"a.py", "c.py"}, []string{"a.py", "b.py"}, 0.5},
		{"empty retrieved", nil, []string{"a.py"}, 0},
		{"both empty", nil, nil, 1.0},
		{"perfect", []string{"a.py", "b.py"}, []string{"a.py", "b.py"}, 1.0},
		{"no overlap", []string{"x.py"}, []string{"a.py"}, 0},
		{"duplicates collapse", []string{"a.py", "a.py"}, []string{"a.py"}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, metrics.F1Score(tt.retrieved, tt.truth), 1e-9)
		})
	}
}

func TestF1ScoreSymmetric(t *testing.T) {
	r := []string{"a.py", "c.py", "d.py"}
	g := []string{"a.py", "b.py"}
	assert.InDelta(t, metrics.F1Score(r, g), metrics.F1Score(g, r), 1e-9)
}

func TestPrecisionRecall(t *testing.T) {
	precision, recall := metrics.PrecisionRecall([]string{"a.py", "c.py"}, []string{"a.py", "b.py"})
	assert.InDelta(t, 0.5, precision, 1e-9)
	assert.InDelta(t, 0.5, recall, 1e-9)

	precision, recall = metrics.PrecisionRecall(nil, []string{"a.py"})
	assert.Zero(t, precision)
	assert.Zero(t, recall)
}

func TestPartialScore(t *testing.T) {
	truth := []string{"src/auth/login.go", "src/auth/token.go"}

	// Directory prefix with no exact match earns the fixed 0.5.
	assert.InDelta(t, 0.5, metrics.PartialScore([]string{"src/auth/"}, truth), 1e-9)

	// Exact match earns full credit.
	assert.InDelta(t, 1.0, metrics.PartialScore([]string{"src/auth/login.go"}, truth), 1e-9)

	// Mixed: one exact, one prefix, one miss.
	got := metrics.PartialScore([]string{"src/auth/login.go", "src/auth/", "README.md"}, truth)
	assert.InDelta(t, 0.5, got, 1e-9)

	assert.Zero(t, metrics.PartialScore(nil, truth))
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 30.0, metrics.Percentile([]float64{10, 20, 30, 40}, 0.50))
	assert.Equal(t, 100.0, metrics.Percentile([]float64{10, 12, 11, 100}, 0.99))
	assert.Equal(t, 12.0, metrics.Percentile([]float64{10, 12, 11, 100}, 0.50))
	assert.Equal(t, 7.0, metrics.Percentile([]float64{7}, 0.99))
	assert.Zero(t, metrics.Percentile(nil, 0.50))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 11.5, metrics.Median([]float64{10, 12, 11, 100}))
	assert.Equal(t, 11.0, metrics.Median([]float64{10, 11, 100}))
	assert.Zero(t, metrics.Median(nil))
}

func TestStdDev(t *testing.T) {
	assert.Zero(t, metrics.StdDev(nil))
	assert.Zero(t, metrics.StdDev([]float64{0.7}))
	// Sample stdev of {0,1} is sqrt(0.5).
	assert.InDelta(t, 0.7071067811865476, metrics.StdDev([]float64{0, 1}), 1e-9)
}

func TestScoreFillsRun(t *testing.T) {
	run := &result.EvaluationRun{
		Agent: "keyword",
		Results: []result.TestResult{
			{
				TestCaseID:       "aaaa1111",
				RetrievedFiles:   []string{"a.py", "c.py"},
				GroundTruthFiles: []string{"a.py", "b.py"},
				LatencyMS:        10,
				Status:           result.StatusOK,
			},
			{
				TestCaseID:       "bbbb2222",
				GroundTruthFiles: []string{"a.py"},
				LatencyMS:        30000,
				Status:           result.StatusTimedOut,
			},
		},
	}

	metrics.Score(run)

	assert.InDelta(t, 0.5, run.Results[0].F1, 1e-9)
	// Timed-out case scores with an empty retrieved set, never dropped.
	assert.Zero(t, run.Results[1].F1)
	assert.Equal(t, 2, run.Aggregate.Cases)
	assert.Equal(t, 1, run.Aggregate.Failures)
	assert.InDelta(t, 0.25, run.Aggregate.MeanF1, 1e-9)
	assert.InDelta(t, 0.25, run.Aggregate.MedianF1, 1e-9)
	assert.Equal(t, 30000.0, run.Aggregate.P99LatencyMS)
}
