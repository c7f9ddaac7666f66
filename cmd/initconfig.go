package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/retrievalbench/internal/config"
)

var flagInitOutput string

func newInitConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a default configuration template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(flagInitOutput); err != nil {
				return err
			}
			fmt.Printf("Wrote default configuration to %s\n", flagInitOutput)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagInitOutput, "output", "retrievalbench.yaml", "output path")
	return cmd
}
