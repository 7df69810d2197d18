// Package eval benchmarks the solver against a fixed problem set.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/runner"
	"github.com/codesolver/codesolver/internal/solver"
)

// Problem is one entry of an eval-set file:
// [{"problem": "...", "test_cases": [[[args], expected], ...]}, ...]
type Problem struct {
	Problem   string          `json:"problem"`
	TestCases json.RawMessage `json:"test_cases"`
}

// ProblemResult summarizes one solved problem.
type ProblemResult struct {
	Problem string  `json:"problem"`
	Score   float64 `json:"score"`
	Passed  int     `json:"passed"`
	Total   int     `json:"total"`
	RunID   string  `json:"run_id,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Summary aggregates an evaluation over the whole set.
type Summary struct {
	Timestamp   string          `json:"timestamp"`
	Problems    []ProblemResult `json:"problems"`
	TotalTests  int             `json:"total_tests"`
	TotalPassed int             `json:"total_passed"`
	MeanScore   float64         `json:"mean_score"`
	SolveRate   float64         `json:"solve_rate"`
}

// ProblemSolver is the subset of the solve orchestrator the evaluator needs.
type ProblemSolver interface {
	Solve(ctx context.Context, problemText string, cases []runner.TestCase, opts solver.Options) (*result.Run, error)
}

// LoadSet reads an eval-set file, optionally keeping only the problems at
// the given indexes. Out-of-range indexes are ignored.
func LoadSet(path string, filter []int) ([]Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading eval set %s: %w", path, err)
	}
	var set []Problem
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing eval set %s: %w", path, err)
	}
	if filter == nil {
		return set, nil
	}
	var filtered []Problem
	for _, i := range filter {
		if i >= 0 && i < len(set) {
			filtered = append(filtered, set[i])
		}
	}
	return filtered, nil
}

// Evaluator runs every problem of a set through the solver and saves each
// run. A nil store skips persistence.
type Evaluator struct {
	Solver  ProblemSolver
	Store   *result.Store
	Workers int
	Options solver.Options
}

// Run evaluates the set. Per-problem failures are recorded in the summary,
// never propagated: one bad problem must not sink the batch.
func (e *Evaluator) Run(ctx context.Context, set []Problem) (*Summary, error) {
	if len(set) == 0 {
		return nil, fmt.Errorf("eval set is empty")
	}
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]ProblemResult, len(set))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range set {
		g.Go(func() error {
			results[i] = e.solveOne(gctx, p)
			return nil
		})
	}
	g.Wait()

	summary := &Summary{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Problems:  results,
	}
	var scoreSum float64
	solved := 0
	for _, r := range results {
		summary.TotalTests += r.Total
		summary.TotalPassed += r.Passed
		scoreSum += r.Score
		if r.Score == 1.0 {
			solved++
		}
	}
	summary.MeanScore = scoreSum / float64(len(results))
	summary.SolveRate = float64(solved) / float64(len(results))
	return summary, nil
}

func (e *Evaluator) solveOne(ctx context.Context, p Problem) ProblemResult {
	res := ProblemResult{Problem: p.Problem}

	cases, err := runner.ParseTestCases(p.TestCases)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Total = len(cases)

	run, err := e.Solver.Solve(ctx, p.Problem, cases, e.Options)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Score = run.Score
	res.Passed = result.Passed(run.Outcomes)
	res.Error = run.Error

	if e.Store != nil {
		if err := e.Store.Save(run); err != nil {
			log.Printf("warning: saving run: %v", err)
		} else {
			res.RunID = run.ID
		}
	}
	return res
}

// AppendHistory appends the summary to a JSON history file holding an array
// of past evaluations.
func AppendHistory(path string, summary *Summary) error {
	var history []*Summary
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &history); err != nil {
			return fmt.Errorf("parsing eval history %s: %w", path, err)
		}
	}
	history = append(history, summary)
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling eval history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing eval history %s: %w", path, err)
	}
	return nil
}
