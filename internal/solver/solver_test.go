package solver_test

import (
	"context"
	"strings"
	"testing"

	"github.com/codesolver/codesolver/internal/llm"
	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/runner"
	"github.com/codesolver/codesolver/internal/solver"
)

// scriptedGenerator returns canned completions in order.
type scriptedGenerator struct {
	codes []string
	errs  []error
	calls int
}

func (g *scriptedGenerator) Generate(ctx context.Context, trajectory []llm.Message) (string, llm.Usage, error) {
	i := g.calls
	g.calls++
	usage := llm.Usage{InputTokens: 10, OutputTokens: 5}
	if i < len(g.errs) && g.errs[i] != nil {
		return "", usage, g.errs[i]
	}
	if i < len(g.codes) {
		return g.codes[i], usage, nil
	}
	return "", usage, &llm.GenerationError{Reason: "script exhausted"}
}

// scoreByCode maps candidate code to a canned attempt.
type scoreByCode map[string]*result.Attempt

func (s scoreByCode) Run(ctx context.Context, code string, cases []runner.TestCase) (*result.Attempt, error) {
	a := *s[code]
	a.Code = code
	return &a, nil
}

var twoCases = []runner.TestCase{
	{Inputs: []any{1.0, 2.0}, Expected: 3.0},
	{Inputs: []any{10.0, 20.0}, Expected: 30.0},
}

func TestSolveFirstAttemptPerfect(t *testing.T) {
	gen := &scriptedGenerator{codes: []string{"good"}}
	runs := scoreByCode{"good": {Score: 1.0, Outcomes: []result.TestOutcome{{Passed: true}, {Passed: true}}}}

	run, err := solver.New(gen, runs, "test-model").Solve(context.Background(), "add", twoCases, solver.Options{Reflection: true, MaxRetries: 3})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if run.Score != 1.0 || run.SolutionCode != "good" {
		t.Errorf("run: %+v", run)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if run.Usage.InputTokens != 10 {
		t.Errorf("usage: %+v", run.Usage)
	}
}

func TestSolveReflectionImproves(t *testing.T) {
	gen := &scriptedGenerator{codes: []string{"half", "good"}}
	runs := scoreByCode{
		"half": {Score: 0.5, Outcomes: []result.TestOutcome{{Passed: true}, {Passed: false, Input: "[10,20]"}}},
		"good": {Score: 1.0, Outcomes: []result.TestOutcome{{Passed: true}, {Passed: true}}},
	}

	run, err := solver.New(gen, runs, "m").Solve(context.Background(), "add", twoCases, solver.Options{Reflection: true, MaxRetries: 1})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if run.Score != 1.0 || run.SolutionCode != "good" {
		t.Errorf("selected wrong attempt: score=%v code=%q", run.Score, run.SolutionCode)
	}
	// system + user + assistant + reflection user + assistant
	if len(run.Trajectory) != 5 {
		t.Errorf("trajectory length: got %d, want 5", len(run.Trajectory))
	}
	reflection := run.Trajectory[3]
	if reflection.Role != "user" || !strings.Contains(reflection.Content, "[10,20]") {
		t.Errorf("reflection turn should carry the failing case: %+v", reflection)
	}
	if run.Usage.InputTokens != 20 {
		t.Errorf("usage should sum across attempts: %+v", run.Usage)
	}
}

func TestSolveKeepsBestWhenRetryRegresses(t *testing.T) {
	gen := &scriptedGenerator{codes: []string{"half", "worse"}}
	runs := scoreByCode{
		"half":  {Score: 0.5, Outcomes: []result.TestOutcome{{Passed: true}, {Passed: false}}},
		"worse": {Score: 0.0, Outcomes: []result.TestOutcome{{Passed: false}, {Passed: false}}},
	}

	run, err := solver.New(gen, runs, "m").Solve(context.Background(), "add", twoCases, solver.Options{Reflection: true, MaxRetries: 1})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if run.Score != 0.5 || run.SolutionCode != "half" {
		t.Errorf("should keep the best attempt: score=%v code=%q", run.Score, run.SolutionCode)
	}
	// The losing attempt still appears in the trajectory.
	if len(run.Trajectory) != 5 {
		t.Errorf("trajectory length: got %d, want 5", len(run.Trajectory))
	}
}

func TestSolveRetryBudgetExhausted(t *testing.T) {
	gen := &scriptedGenerator{codes: []string{"half", "half", "half", "half"}}
	runs := scoreByCode{
		"half": {Score: 0.5, Outcomes: []result.TestOutcome{{Passed: true}, {Passed: false}}},
	}

	run, err := solver.New(gen, runs, "m").Solve(context.Background(), "add", twoCases, solver.Options{Reflection: true, MaxRetries: 2})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if gen.calls != 3 {
		t.Errorf("generator called %d times, want 3 (initial + 2 retries)", gen.calls)
	}
	if run.Score != 0.5 {
		t.Errorf("score: %v", run.Score)
	}
}

func TestSolveReflectionDisabled(t *testing.T) {
	gen := &scriptedGenerator{codes: []string{"half"}}
	runs := scoreByCode{
		"half": {Score: 0.5, Outcomes: []result.TestOutcome{{Passed: true}, {Passed: false}}},
	}

	run, err := solver.New(gen, runs, "m").Solve(context.Background(), "add", twoCases, solver.Options{Reflection: false, MaxRetries: 5})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if run.Score != 0.5 {
		t.Errorf("score: %v", run.Score)
	}
}

func TestSolveGenerationError(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{&llm.GenerationError{Reason: "empty completion"}}}

	run, err := solver.New(gen, scoreByCode{}, "m").Solve(context.Background(), "add", twoCases, solver.Options{})
	if err != nil {
		t.Fatalf("generation failure must not abort the request: %v", err)
	}
	if run.Score != 0 {
		t.Errorf("score: %v", run.Score)
	}
	if !strings.Contains(run.Error, "empty completion") {
		t.Errorf("run error: %q", run.Error)
	}
	if len(run.Trajectory) == 0 {
		t.Error("trajectory must survive failure paths")
	}
}

func TestSolveGenerationErrorThenRecovery(t *testing.T) {
	gen := &scriptedGenerator{
		errs:  []error{&llm.GenerationError{Reason: "flaky"}, nil},
		codes: []string{"", "good"},
	}
	runs := scoreByCode{"good": {Score: 1.0, Outcomes: []result.TestOutcome{{Passed: true}, {Passed: true}}}}

	run, err := solver.New(gen, runs, "m").Solve(context.Background(), "add", twoCases, solver.Options{Reflection: true, MaxRetries: 1})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if run.Score != 1.0 {
		t.Errorf("score: %v (error %q)", run.Score, run.Error)
	}
}

func TestSolveValidatorRejectionStopsReflection(t *testing.T) {
	gen := &scriptedGenerator{codes: []string{"unsafe", "good"}}
	runs := scoreByCode{
		"unsafe": {Score: 0, Error: "blocked potentially unsafe code pattern: import os"},
		"good":   {Score: 1.0},
	}

	run, err := solver.New(gen, runs, "m").Solve(context.Background(), "add", twoCases, solver.Options{Reflection: true, MaxRetries: 3})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if !strings.Contains(run.Error, "import os") {
		t.Errorf("run error: %q", run.Error)
	}
}

func TestSolveEmptyCases(t *testing.T) {
	gen := &scriptedGenerator{codes: []string{"good"}}
	if _, err := solver.New(gen, scoreByCode{}, "m").Solve(context.Background(), "add", nil, solver.Options{}); err == nil {
		t.Error("empty test-case list must fail fast")
	}
}

func TestStateString(t *testing.T) {
	if solver.StateGenerating.String() != "generating" || solver.StateDone.String() != "done" {
		t.Error("state names")
	}
}
