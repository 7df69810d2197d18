package cmd

import (
	"os"

	"github.com/codesolver/codesolver/internal/config"
	"github.com/codesolver/codesolver/internal/pricing"
	"github.com/codesolver/codesolver/internal/report"
	"github.com/spf13/cobra"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize stored runs by model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(cfgFile)
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			runs, err := store.LoadAll()
			if err != nil {
				return err
			}
			var table *pricing.Table
			if cfg.Pricing.File != "" {
				table, err = pricing.Load(cfg.Pricing.File)
				if err != nil {
					return err
				}
			}
			return report.Generate(runs, flagFormat, os.Stdout, table)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}
