package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/retrievalbench/internal/result"
)

type AgentSummary struct {
	Agent        string  `json:"agent"`
	Cases        int     `json:"cases"`
	Failures     int     `json:"failures"`
	MeanF1       float64 `json:"mean_f1"`
	MedianF1     float64 `json:"median_f1"`
	StdDevF1     float64 `json:"std_f1"`
	P50LatencyMS float64 `json:"p50_latency_ms"`
	P90LatencyMS float64 `json:"p90_latency_ms"`
	P99LatencyMS float64 `json:"p99_latency_ms"`
}

// Generate reads stored runs and writes a per-agent summary.
func Generate(runDir, format string, w io.Writer) error {
	runs, err := result.CollectRuns(runDir)
	if err != nil {
		return fmt.Errorf("collecting runs: %w", err)
	}
	if len(runs) == 0 {
		return fmt.Errorf("no runs found in %s", runDir)
	}

	summaries := summarize(runs)

	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func summarize(runs []*result.EvaluationRun) []AgentSummary {
	summaries := make([]AgentSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, AgentSummary{
			Agent:        run.Agent,
			Cases:        run.Aggregate.Cases,
			Failures:     run.Aggregate.Failures,
			MeanF1:       run.Aggregate.MeanF1,
			MedianF1:     run.Aggregate.MedianF1,
			StdDevF1:     run.Aggregate.StdDevF1,
			P50LatencyMS: run.Aggregate.P50LatencyMS,
			P90LatencyMS: run.Aggregate.P90LatencyMS,
			P99LatencyMS: run.Aggregate.P99LatencyMS,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Agent < summaries[j].Agent
	})
	return summaries
}

func writeTable(summaries []AgentSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGENT\tCASES\tFAILURES\tMEAN F1\tMEDIAN F1\tSTDEV\tP50 MS\tP90 MS\tP99 MS")
	fmt.Fprintln(tw, strings.Repeat("-", 90))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.1f\t%.1f\t%.1f\n",
			s.Agent, s.Cases, s.Failures, s.MeanF1, s.MedianF1, s.StdDevF1,
			s.P50LatencyMS, s.P90LatencyMS, s.P99LatencyMS)
	}
	return tw.Flush()
}

func writeMarkdown(summaries []AgentSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Agent | Cases | Failures | Mean F1 | Median F1 | Stdev | p50 ms | p90 ms | p99 ms |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|---|---|")
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %d | %d | %.3f | %.3f | %.3f | %.1f | %.1f | %.1f |\n",
			s.Agent, s.Cases, s.Failures, s.MeanF1, s.MedianF1, s.StdDevF1,
			s.P50LatencyMS, s.P90LatencyMS, s.P99LatencyMS)
	}
	return nil
}

func writeJSON(summaries []AgentSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
