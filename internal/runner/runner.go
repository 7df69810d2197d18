// Package runner scores one generated solution against a batch of test
// cases, producing an ordered Attempt record.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/sandbox"
)

// Runner validates a candidate once, wraps it once, then executes every test
// case in its own process. Runners hold only immutable configuration and are
// safe to share across concurrent solve requests.
type Runner struct {
	validator *sandbox.Validator
	executor  *sandbox.Executor
	parallel  int
}

func New(validator *sandbox.Validator, executor *sandbox.Executor, parallel int) *Runner {
	if parallel < 1 {
		parallel = 1
	}
	return &Runner{validator: validator, executor: executor, parallel: parallel}
}

// Run produces one Attempt. A validator rejection yields score 0 with a
// populated error and zero executions; a non-nil error is returned only for
// structurally invalid input.
func (r *Runner) Run(ctx context.Context, code string, cases []TestCase) (*result.Attempt, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases supplied")
	}

	// Unsafe code never reaches a process. This ordering is load-bearing,
	// not an optimization.
	if err := r.validator.Validate(code); err != nil {
		return &result.Attempt{Code: code, Score: 0, Error: err.Error()}, nil
	}

	harness := sandbox.BuildHarness(code)
	outcomes := make([]result.TestOutcome, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, tc := range cases {
		g.Go(func() error {
			outcomes[i] = r.runCase(gctx, harness, tc)
			return nil
		})
	}
	g.Wait()

	passed := result.Passed(outcomes)
	return &result.Attempt{
		Code:     code,
		Outcomes: outcomes,
		Score:    float64(passed) / float64(len(cases)),
	}, nil
}

func (r *Runner) runCase(ctx context.Context, harness string, tc TestCase) result.TestOutcome {
	inputRepr, _ := json.Marshal(tc.Inputs)
	expectedRepr, _ := json.Marshal(tc.Expected)
	outcome := result.TestOutcome{
		Input:    string(inputRepr),
		Expected: string(expectedRepr),
	}

	res, err := r.executor.Execute(ctx, harness, tc.Inputs)
	if err != nil {
		// Infrastructure failure: the process never launched.
		outcome.Error = fmt.Sprintf("executor: %v", err)
		return outcome
	}
	outcome.RuntimeMS = res.RuntimeMS

	if res.TimedOut {
		outcome.Error = "timeout"
		return outcome
	}

	output, harnessErr, parseOK := parseHarnessOutput(res.Stdout)
	switch {
	case harnessErr != "":
		outcome.Error = harnessErr
	case res.ExitCode != 0:
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			outcome.Error = msg
		} else {
			outcome.Error = "execution failed"
		}
	case !parseOK:
		// The harness guarantees a single JSON value; anything else means
		// the contract was broken.
		outcome.Error = fmt.Sprintf("unparseable output: %s", strings.TrimSpace(res.Stdout))
	default:
		repr, _ := json.Marshal(output)
		s := string(repr)
		outcome.Output = &s
		outcome.Passed = Equal(output, tc.Expected)
	}
	return outcome
}

// parseHarnessOutput decodes the single JSON value the harness prints.
// A top-level object with an "error" key is the harness's structured
// failure report, distinguishable from a successful result.
func parseHarnessOutput(stdout string) (output any, harnessErr string, ok bool) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil, "", false
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, "", false
	}
	if obj, isObj := v.(map[string]any); isObj {
		if msg, hasErr := obj["error"]; hasErr {
			return nil, fmt.Sprintf("%v", msg), true
		}
	}
	return v, "", true
}
