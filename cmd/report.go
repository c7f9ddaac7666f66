package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/retrievalbench/internal/config"
	"github.com/signalnine/retrievalbench/internal/report"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-dir]",
		Short: "Generate summary from stored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			runDir := filepath.Join(cfg.Output.Dir, "latest")
			if len(args) > 0 {
				runDir = args[0]
			}
			resolved, err := filepath.EvalSymlinks(runDir)
			if err != nil {
				return fmt.Errorf("resolving run dir: %w", err)
			}
			format := cfg.Output.Format
			if flagFormat != "" {
				format = flagFormat
			}
			return report.Generate(resolved, format, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "", "output format (table, markdown, json)")
	return cmd
}
