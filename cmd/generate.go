package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/retrievalbench/internal/config"
	"github.com/signalnine/retrievalbench/internal/dataset"
	"github.com/signalnine/retrievalbench/internal/gitlog"
	"github.com/signalnine/retrievalbench/internal/goldset"
	"github.com/signalnine/retrievalbench/internal/logger"
)

var (
	flagRepo       string
	flagOutput     string
	flagMaxCommits int
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Mine a gold set from git history",
		RunE:  runGenerate,
	}
	cmd.Flags().StringVar(&flagRepo, "repo", "", "repository path (overrides config)")
	cmd.Flags().StringVar(&flagOutput, "output", "gold_set.json", "output path for the gold set")
	cmd.Flags().IntVar(&flagMaxCommits, "max-commits", 0, "override commit scan limit")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		return err
	}
	defer log.Sync()

	repo := cfg.Repository
	if flagRepo != "" {
		repo = flagRepo
	}
	if repo == "" {
		return fmt.Errorf("no repository configured; set repository in config or pass --repo")
	}
	if _, err := os.Stat(filepath.Join(repo, ".git")); err != nil {
		return fmt.Errorf("%s is not a git repository: %w", repo, err)
	}

	limit := cfg.Dataset.MaxCommits
	if flagMaxCommits > 0 {
		limit = flagMaxCommits
	}

	builder := &dataset.Builder{
		Reader:      gitlog.NewGitReader(repo, log),
		Classifier:  dataset.NewClassifier(cfg.Dataset, log),
		Synthesizer: dataset.NewSynthesizer(cfg.Synthesizer, log),
		Logger:      log,
	}
	gs, err := builder.Build(cmd.Context(), filepath.Base(repo), limit)
	if err != nil {
		return fmt.Errorf("building gold set: %w", err)
	}
	if err := goldset.Save(gs, flagOutput); err != nil {
		return fmt.Errorf("saving gold set: %w", err)
	}

	fmt.Printf("Analyzed %d commits, emitted %d test cases\n",
		gs.Metadata.CommitsAnalyzed, gs.Metadata.CasesEmitted)
	fmt.Printf("Gold set written to %s\n", flagOutput)
	return nil
}
