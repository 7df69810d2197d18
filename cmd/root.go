package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "codesolver",
		Short: "Generate, sandbox-test and iterate on Python solutions with an LLM",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "codesolver.yaml", "config file path")
	root.AddCommand(newSolveCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newRunsCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newEvalCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newReportCmd())
	return root
}
