package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/codesolver/codesolver/internal/eval"
	"github.com/spf13/cobra"
)

var (
	flagSet      string
	flagFilter   []int
	flagParallel int
	flagHistory  string
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the solver over an eval set and summarize",
		RunE:  runEval,
	}
	cmd.Flags().StringVar(&flagSet, "set", "eval_set.json", "eval-set file path")
	cmd.Flags().IntSliceVar(&flagFilter, "filter", nil, "problem indexes to keep")
	cmd.Flags().IntVar(&flagParallel, "parallel", 1, "max problems solved concurrently")
	cmd.Flags().StringVar(&flagHistory, "history", "", "append the summary to this JSONL file")
	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	var filter []int
	if cmd.Flags().Changed("filter") {
		filter = flagFilter
	}
	set, err := eval.LoadSet(flagSet, filter)
	if err != nil {
		return err
	}

	comps, err := buildComponents()
	if err != nil {
		return err
	}
	evaluator := &eval.Evaluator{
		Solver:  comps.solver,
		Store:   comps.store,
		Workers: flagParallel,
		Options: comps.opts,
	}

	fmt.Printf("Evaluating %d problems (parallel: %d)...\n", len(set), flagParallel)
	summary, err := evaluator.Run(context.Background(), set)
	if err != nil {
		return err
	}

	for _, p := range summary.Problems {
		status := fmt.Sprintf("%d/%d", p.Passed, p.Total)
		if p.Error != "" {
			status = "error: " + p.Error
		}
		fmt.Printf("  %-50s %s\n", preview(p.Problem), status)
	}
	fmt.Printf("\nMean score: %.2f  Solve rate: %.0f%%  (%d/%d tests passed)\n",
		summary.MeanScore, summary.SolveRate*100, summary.TotalPassed, summary.TotalTests)

	if flagHistory != "" {
		if err := eval.AppendHistory(flagHistory, summary); err != nil {
			return err
		}
	}
	return nil
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 48 {
		return s[:48] + ".."
	}
	return s
}
