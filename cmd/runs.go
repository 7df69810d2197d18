package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/codesolver/codesolver/internal/config"
	"github.com/codesolver/codesolver/internal/result"
	"github.com/spf13/cobra"
)

var flagLimit int

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			summaries, err := store.List(flagLimit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No runs stored yet.")
				return nil
			}
			for _, s := range summaries {
				fmt.Printf("%s  %s  score=%.2f  %s\n", s.RunID, s.Timestamp, s.Score, s.ProblemPreview)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", 20, "max runs to list")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			run, err := store.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		},
	}
}

// openStore loads just enough config to reach the results directory without
// requiring generator credentials.
func openStore() (*result.Store, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	return result.NewStore(cfg.Results.Dir)
}
