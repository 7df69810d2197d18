package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/codesolver/codesolver/internal/config"
	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/runner"
	"github.com/codesolver/codesolver/internal/sandbox"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <code-file>",
		Short: "Safety-check a solution file, optionally running test cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading code file: %w", err)
			}
			cfg, err := config.LoadOrDefault(cfgFile)
			if err != nil {
				return err
			}

			validator := sandbox.NewValidator(cfg.Sandbox.AllowedImports, cfg.Sandbox.BlockedTokens)
			if err := validator.Validate(string(code)); err != nil {
				return fmt.Errorf("rejected: %w", err)
			}
			fmt.Println("Code passed the safety check.")

			if flagCases == "" && flagCasesFile == "" {
				return nil
			}
			rawCases := []byte(flagCases)
			if flagCasesFile != "" {
				rawCases, err = os.ReadFile(flagCasesFile)
				if err != nil {
					return fmt.Errorf("reading test-cases file: %w", err)
				}
			}
			cases, err := runner.ParseTestCases(rawCases)
			if err != nil {
				return fmt.Errorf("invalid test cases format: %w", err)
			}

			executor := sandbox.NewExecutor(
				cfg.Sandbox.PythonBin,
				time.Duration(cfg.Sandbox.TimeoutMS)*time.Millisecond,
				cfg.Sandbox.MaxOutputBytes,
			)
			attempt, err := runner.New(validator, executor, cfg.Solver.Parallel).
				Run(context.Background(), string(code), cases)
			if err != nil {
				return err
			}
			for _, o := range attempt.Outcomes {
				status := "FAIL"
				if o.Passed {
					status = "ok"
				}
				fmt.Printf("  [%s] solve(*%s) (want %s)\n", status, o.Input, o.Expected)
			}
			fmt.Printf("Score: %.2f (%d/%d passed)\n",
				attempt.Score, result.Passed(attempt.Outcomes), len(attempt.Outcomes))
			if attempt.Score < 1.0 {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagCases, "test-cases", "", "test cases as a JSON array of [inputs, expected] pairs")
	cmd.Flags().StringVar(&flagCasesFile, "test-cases-file", "", "file containing the test-case JSON")
	return cmd
}
