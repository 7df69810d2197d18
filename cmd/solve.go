package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/runner"
	"github.com/spf13/cobra"
)

var (
	flagProblem     string
	flagProblemFile string
	flagCases       string
	flagCasesFile   string
	flagReflection  bool
	flagRetries     int
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a single problem and store the run",
		RunE:  runSolve,
	}
	cmd.Flags().StringVar(&flagProblem, "problem", "", "problem statement text")
	cmd.Flags().StringVar(&flagProblemFile, "problem-file", "", "file containing the problem statement")
	cmd.Flags().StringVar(&flagCases, "test-cases", "", "test cases as a JSON array of [inputs, expected] pairs")
	cmd.Flags().StringVar(&flagCasesFile, "test-cases-file", "", "file containing the test-case JSON")
	cmd.Flags().BoolVar(&flagReflection, "reflection", false, "retry with failure feedback until the budget runs out")
	cmd.Flags().IntVar(&flagRetries, "retries", -1, "override the configured retry budget")
	return cmd
}

func runSolve(cmd *cobra.Command, args []string) error {
	problem := flagProblem
	if flagProblemFile != "" {
		data, err := os.ReadFile(flagProblemFile)
		if err != nil {
			return fmt.Errorf("reading problem file: %w", err)
		}
		problem = string(data)
	}
	if problem == "" {
		return fmt.Errorf("a problem statement is required (--problem or --problem-file)")
	}

	rawCases := []byte(flagCases)
	if flagCasesFile != "" {
		data, err := os.ReadFile(flagCasesFile)
		if err != nil {
			return fmt.Errorf("reading test-cases file: %w", err)
		}
		rawCases = data
	}
	cases, err := runner.ParseTestCases(rawCases)
	if err != nil {
		return fmt.Errorf("invalid test cases format: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("at least one test case is required")
	}

	comps, err := buildComponents()
	if err != nil {
		return err
	}
	opts := comps.opts
	if cmd.Flags().Changed("reflection") {
		opts.Reflection = flagReflection
	}
	if flagRetries >= 0 {
		opts.MaxRetries = flagRetries
	}

	run, err := comps.solver.Solve(context.Background(), problem, cases, opts)
	if err != nil {
		return err
	}
	run.CostUSD = comps.pricing.Cost(run.Model, run.Usage)
	if err := comps.store.Save(run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	printRun(run)
	if run.Score < 1.0 {
		os.Exit(1)
	}
	return nil
}

func printRun(run *result.Run) {
	fmt.Printf("Run %s (model: %s)\n\n", run.ID, run.Model)
	fmt.Println(run.SolutionCode)
	fmt.Println()
	for _, o := range run.Outcomes {
		status := "FAIL"
		if o.Passed {
			status = "ok"
		}
		line := fmt.Sprintf("  [%s] solve(*%s) -> ", status, o.Input)
		if o.Output != nil {
			line += *o.Output
		} else {
			line += "?"
		}
		line += fmt.Sprintf(" (want %s)", o.Expected)
		if o.Error != "" {
			line += " // " + o.Error
		}
		fmt.Println(line)
	}
	fmt.Printf("\nScore: %.2f (%d/%d passed)\n", run.Score, result.Passed(run.Outcomes), len(run.Outcomes))
	if run.Error != "" {
		fmt.Printf("Error: %s\n", run.Error)
	}
	if run.CostUSD > 0 {
		fmt.Printf("Cost: $%.4f\n", run.CostUSD)
	}
}
