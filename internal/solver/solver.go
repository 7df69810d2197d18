// Package solver drives one end-to-end solve request: generate a candidate,
// score it, and optionally reflect on failures for a bounded number of
// retries.
package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/codesolver/codesolver/internal/llm"
	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/runner"
)

// State is a phase of the solve loop.
type State int

const (
	StateGenerating State = iota
	StateTesting
	StateReflecting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateTesting:
		return "testing"
	case StateReflecting:
		return "reflecting"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// TestRunner scores one candidate against a batch of test cases.
type TestRunner interface {
	Run(ctx context.Context, code string, cases []runner.TestCase) (*result.Attempt, error)
}

// Options control one solve request.
type Options struct {
	Reflection bool
	MaxRetries int
}

// maxReflectionFailures caps how many failing outcomes are echoed back to
// the generator.
const maxReflectionFailures = 3

// Solver owns the attempt list for a single request; nothing is shared
// across concurrent Solve calls, so one Solver may serve many.
type Solver struct {
	gen    llm.Generator
	runner TestRunner
	model  string
}

func New(gen llm.Generator, r TestRunner, model string) *Solver {
	return &Solver{gen: gen, runner: r, model: model}
}

// Solve runs the state machine generating -> testing -> (done | reflecting
// -> generating) with an explicit retry budget. The returned Run carries the
// best attempt seen (latest wins ties) and the complete trajectory on every
// path, including failures. The store assigns its id on save.
func (s *Solver) Solve(ctx context.Context, problemText string, cases []runner.TestCase, opts Options) (*result.Run, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases supplied")
	}

	examples := make([]llm.Example, 0, len(cases))
	for _, tc := range cases {
		examples = append(examples, llm.Example{Inputs: tc.Inputs, Expected: tc.Expected})
	}
	trajectory := llm.BuildProblemMessages(problemText, examples)

	var (
		best    *result.Attempt
		usage   llm.Usage
		retries = opts.MaxRetries
		state   = StateGenerating
	)

	for state != StateDone {
		switch state {
		case StateGenerating:
			code, callUsage, err := s.gen.Generate(ctx, trajectory)
			usage = usage.Add(callUsage)
			if err != nil {
				attempt := &result.Attempt{Score: 0, Error: err.Error()}
				best = better(best, attempt)
				trajectory = append(trajectory, llm.Message{Role: "assistant", Content: ""})
				if opts.Reflection && retries > 0 {
					state = StateReflecting
				} else {
					state = StateDone
				}
				continue
			}
			trajectory = append(trajectory, llm.Message{Role: "assistant", Content: code})
			state = StateTesting

			attempt, err := s.runner.Run(ctx, code, cases)
			if err != nil {
				return nil, fmt.Errorf("running tests: %w", err)
			}
			best = better(best, attempt)

			switch {
			case attempt.Score == 1.0:
				state = StateDone
			case attempt.Error != "":
				// Validator rejections are not worth reflecting on: the
				// model was already told to avoid unsafe operations.
				state = StateDone
			case !opts.Reflection || retries == 0:
				state = StateDone
			default:
				state = StateReflecting
			}

		case StateReflecting:
			retries--
			trajectory = append(trajectory, llm.Message{
				Role:    "user",
				Content: reflectionPrompt(best),
			})
			log.Printf("reflecting on score %.2f, %d retries left", best.Score, retries)
			state = StateGenerating
		}
	}

	return &result.Run{
		Model:        s.model,
		ProblemText:  problemText,
		SolutionCode: best.Code,
		Outcomes:     best.Outcomes,
		Score:        best.Score,
		Error:        best.Error,
		Trajectory:   trajectory,
		Usage:        usage,
	}, nil
}

// better selects the attempt to keep: highest score wins, the newer attempt
// wins ties.
func better(current, candidate *result.Attempt) *result.Attempt {
	if current == nil || candidate.Score >= current.Score {
		return candidate
	}
	return current
}

func reflectionPrompt(attempt *result.Attempt) string {
	if attempt == nil || len(attempt.Outcomes) == 0 {
		return "The previous attempt produced no usable code. Return a complete, corrected solution only."
	}
	var failing []result.TestOutcome
	for _, o := range attempt.Outcomes {
		if !o.Passed {
			failing = append(failing, o)
			if len(failing) == maxReflectionFailures {
				break
			}
		}
	}
	feedback, _ := json.Marshal(map[string]any{
		"instruction": "The previous solution failed these cases. Fix the logic and return corrected code only.",
		"failing":     failing,
	})
	return fmt.Sprintf("Notes from tests:\n%s", feedback)
}
