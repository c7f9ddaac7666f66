package result

// Status is the terminal state of one evaluated test case. It fully
// determines the scoring input: timed-out and failed cases score with
// an empty retrieved set but stay in the aggregates.
type Status string

const (
	StatusOK       Status = "ok"
	StatusTimedOut Status = "timed_out"
	StatusFailed   Status = "failed"
)

// TestResult is one test case's outcome for one agent. F1 and
// PartialScore are filled in by the scorer after the run.
type TestResult struct {
	TestCaseID       string   `json:"test_case_id"`
	Agent            string   `json:"agent"`
	RetrievedFiles   []string `json:"retrieved_files"`
	GroundTruthFiles []string `json:"ground_truth_files"`
	F1               float64  `json:"f1"`
	PartialScore     float64  `json:"partial_score"`
	LatencyMS        float64  `json:"latency_ms"`
	Status           Status   `json:"status"`
}

// AggregateMetrics summarizes one agent's results.
type AggregateMetrics struct {
	MeanF1       float64 `json:"mean_f1"`
	MedianF1     float64 `json:"median_f1"`
	StdDevF1     float64 `json:"std_f1"`
	P50LatencyMS float64 `json:"p50_latency_ms"`
	P90LatencyMS float64 `json:"p90_latency_ms"`
	P99LatencyMS float64 `json:"p99_latency_ms"`
	Cases        int     `json:"cases"`
	Failures     int     `json:"failures"`
}

// EvaluationRun is one agent's complete pass over a gold set. Seed is
// the shuffle seed actually used, recorded so the case order can be
// reproduced.
type EvaluationRun struct {
	RunID     string           `json:"run_id"`
	Agent     string           `json:"agent"`
	GoldSet   string           `json:"gold_set"`
	Seed      int64            `json:"seed"`
	Timestamp string           `json:"timestamp"`
	Results   []TestResult     `json:"results"`
	Aggregate AggregateMetrics `json:"aggregate"`
}
