// Package eval drives one agent through a gold set with isolation,
// timed repeated trials, and failure containment.
package eval

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/agent"
	"github.com/signalnine/retrievalbench/internal/goldset"
	"github.com/signalnine/retrievalbench/internal/metrics"
	"github.com/signalnine/retrievalbench/internal/result"
)

var errTimeout = errors.New("retrieve timed out")

type Options struct {
	// Trials is the number of retrieve calls per case; the recorded
	// latency is the median of the successful ones.
	Trials int
	// Timeout bounds each individual retrieve call.
	Timeout time.Duration
	// Randomize shuffles case order; the seed used is recorded on the
	// run. Seed 0 means pick one.
	Randomize bool
	Seed      int64
	// RepoPath enables retrieved-path existence validation.
	RepoPath string
}

type Orchestrator struct {
	opts   Options
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Orchestrator {
	if opts.Trials < 1 {
		opts.Trials = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{opts: opts, logger: logger}
}

// Run evaluates every test case in gs against a. Initialize failure
// aborts the run; per-case failures and timeouts are contained and
// recorded as degraded results. Cases run strictly one at a time, and
// Reset happens before every Retrieve.
func (o *Orchestrator) Run(ctx context.Context, gs *goldset.GoldSet, a agent.Agent) (*result.EvaluationRun, error) {
	if err := a.Initialize(ctx, o.opts.RepoPath); err != nil {
		return nil, fmt.Errorf("initializing agent %s: %w", a.Name(), err)
	}

	seed := o.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	order := make([]int, len(gs.TestCases))
	for i := range order {
		order[i] = i
	}
	if o.opts.Randomize {
		rand.New(rand.NewSource(seed)).Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	o.logger.Info("starting evaluation",
		zap.String("agent", a.Name()),
		zap.Int("cases", len(gs.TestCases)),
		zap.Int("trials", o.opts.Trials),
		zap.Int64("seed", seed),
	)

	results := make([]result.TestResult, 0, len(gs.TestCases))
	for _, idx := range order {
		tc := gs.TestCases[idx]
		results = append(results, o.runCase(ctx, a, tc))
	}

	run := &result.EvaluationRun{
		RunID:     uuid.NewString(),
		Agent:     a.Name(),
		GoldSet:   gs.Metadata.Repository,
		Seed:      seed,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Results:   results,
	}
	metrics.Score(run)

	o.logger.Info("evaluation complete",
		zap.String("agent", a.Name()),
		zap.Int("cases", run.Aggregate.Cases),
		zap.Int("failures", run.Aggregate.Failures),
		zap.Float64("mean_f1", run.Aggregate.MeanF1),
	)
	return run, nil
}

func (o *Orchestrator) runCase(ctx context.Context, a agent.Agent, tc goldset.TestCase) result.TestResult {
	a.Reset()

	var latencies []float64
	var retrieved []string
	timedOut := false

	for trial := 0; trial < o.opts.Trials; trial++ {
		res, elapsed, err := o.attempt(ctx, a, tc.Query)
		switch {
		case errors.Is(err, errTimeout):
			timedOut = true
			o.logger.Warn("retrieve timed out",
				zap.String("agent", a.Name()), zap.String("case", tc.ID), zap.Int("trial", trial+1))
		case err != nil:
			o.logger.Warn("retrieve failed",
				zap.String("agent", a.Name()), zap.String("case", tc.ID), zap.Int("trial", trial+1), zap.Error(err))
		default:
			latencies = append(latencies, float64(elapsed.Microseconds())/1000.0)
			if retrieved == nil {
				retrieved = res.Files
			}
		}
	}

	tr := result.TestResult{
		TestCaseID:       tc.ID,
		Agent:            a.Name(),
		GroundTruthFiles: tc.GroundTruthFiles,
	}

	if len(latencies) == 0 {
		// Degraded but scored: empty set, latency pinned to the bound.
		tr.Status = result.StatusFailed
		if timedOut {
			tr.Status = result.StatusTimedOut
		}
		tr.LatencyMS = float64(o.opts.Timeout.Milliseconds())
		return tr
	}

	tr.Status = result.StatusOK
	tr.LatencyMS = metrics.Median(latencies)
	tr.RetrievedFiles = o.validatePaths(retrieved)
	return tr
}

// attempt runs one retrieve call under the per-call timeout. Panics
// inside the agent are contained and surfaced as errors. Agents are
// not required to honor cancellation, so a timed-out call may keep
// running in its goroutine; its late result is discarded.
func (o *Orchestrator) attempt(ctx context.Context, a agent.Agent, query string) (agent.RetrievalResult, time.Duration, error) {
	type outcome struct {
		res agent.RetrievalResult
		err error
	}
	done := make(chan outcome, 1)
	attemptCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("agent panic: %v", r)}
			}
		}()
		res, err := a.Retrieve(attemptCtx, query)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, time.Since(start), out.err
	case <-attemptCtx.Done():
		return agent.RetrievalResult{}, o.opts.Timeout, errTimeout
	}
}

// validatePaths normalizes retrieved paths and, when a repository is
// available, drops paths that do not exist in it. Order is preserved
// and duplicates removed.
func (o *Orchestrator) validatePaths(files []string) []string {
	seen := make(map[string]bool, len(files))
	var out []string
	for _, f := range files {
		f = strings.TrimLeft(strings.ReplaceAll(strings.TrimSpace(f), "\\", "/"), "/")
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		if o.opts.RepoPath != "" {
			if _, err := os.Stat(filepath.Join(o.opts.RepoPath, filepath.FromSlash(f))); err != nil {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
