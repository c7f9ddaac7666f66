package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalnine/retrievalbench/internal/config"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured agents and dataset settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Println("Agents:")
			for _, a := range cfg.Agents {
				fmt.Printf("  - %s (kind: %s)\n", a.Name, a.Kind)
			}
			fmt.Println("\nDataset:")
			fmt.Printf("  repository: %s\n", cfg.Repository)
			fmt.Printf("  file window: %d-%d\n", cfg.Dataset.MinFiles, cfg.Dataset.MaxFiles)
			fmt.Printf("  exclude: %s\n", strings.Join(cfg.Dataset.ExcludePatterns, ", "))
			fmt.Printf("  include merges: %v\n", cfg.Dataset.IncludeMerges)
			return nil
		},
	}
}
