package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "retrievalbench",
		Short: "Benchmark harness for code-retrieval agents",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "retrievalbench.yaml", "config file path")
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newEvaluateCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newInitConfigCmd())
	return root
}
