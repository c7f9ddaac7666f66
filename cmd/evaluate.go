package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalnine/retrievalbench/internal/agent"
	"github.com/signalnine/retrievalbench/internal/config"
	"github.com/signalnine/retrievalbench/internal/eval"
	"github.com/signalnine/retrievalbench/internal/goldset"
	"github.com/signalnine/retrievalbench/internal/logger"
	"github.com/signalnine/retrievalbench/internal/report"
	"github.com/signalnine/retrievalbench/internal/result"
)

var (
	flagGoldSet  string
	flagAgent    string
	flagTrials   int
	flagParallel int
	flagEvalRepo string
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a gold set against the configured agents",
		RunE:  runEvaluate,
	}
	cmd.Flags().StringVar(&flagGoldSet, "goldset", "gold_set.json", "gold set file to evaluate")
	cmd.Flags().StringVar(&flagAgent, "agent", "", "filter to a single agent")
	cmd.Flags().IntVar(&flagTrials, "trials", 0, "override trial count per case")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent agent runs")
	cmd.Flags().StringVar(&flagEvalRepo, "repo", "", "repository path (overrides config)")
	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		return err
	}
	defer log.Sync()

	if flagTrials > 0 {
		cfg.Evaluation.Trials = flagTrials
	}
	parallel := cfg.Evaluation.Parallel
	if flagParallel > 0 {
		parallel = flagParallel
	}
	repo := cfg.Repository
	if flagEvalRepo != "" {
		repo = flagEvalRepo
	}

	gs, err := goldset.Load(flagGoldSet)
	if err != nil {
		return err
	}

	agentCfgs := filterAgents(cfg.Agents, flagAgent)
	if len(agentCfgs) == 0 {
		return fmt.Errorf("no agents to evaluate")
	}

	runDir, err := result.CreateRunDir(cfg.Output.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	opts := eval.Options{
		Trials:    cfg.Evaluation.Trials,
		Timeout:   time.Duration(cfg.Evaluation.TimeoutSeconds) * time.Second,
		Randomize: cfg.Evaluation.RandomizeOrder(),
		Seed:      cfg.Evaluation.Seed,
		RepoPath:  repo,
	}
	ctx := cmd.Context()

	jobs := make([]eval.Job, 0, len(agentCfgs))
	for _, ac := range agentCfgs {
		ac := ac
		jobs = append(jobs, func() error {
			a, err := agent.FromConfig(ac, log)
			if err != nil {
				return fmt.Errorf("agent %s: %w", ac.Name, err)
			}
			fmt.Printf("Evaluating %s (%d cases)...\n", ac.Name, len(gs.TestCases))
			run, err := eval.New(opts, log).Run(ctx, gs, a)
			if err != nil {
				return fmt.Errorf("agent %s: %w", ac.Name, err)
			}
			if err := result.WriteRun(runDir, run); err != nil {
				return fmt.Errorf("agent %s: writing run: %w", ac.Name, err)
			}
			return nil
		})
	}

	// Each agent run owns its instance and state, so runs are safe to
	// parallelize without coordination.
	for _, err := range eval.RunPool(parallel, jobs) {
		log.Error("agent run aborted", zap.Error(err))
		fmt.Printf("  ERROR: %v\n", err)
	}

	fmt.Println("\n--- Results ---")
	return report.Generate(runDir, cfg.Output.Format, os.Stdout)
}

func filterAgents(agents []config.Agent, name string) []config.Agent {
	if name == "" {
		return agents
	}
	var filtered []config.Agent
	for _, a := range agents {
		if a.Name == name {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
