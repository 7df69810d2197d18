// Package llm is the solution-generator collaborator: it turns a
// conversation trajectory into candidate Python source via an
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"fmt"
)

// Message is one turn in a generation trajectory.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage counts tokens consumed by a single generator call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// GenerationError means the model produced no usable code. The orchestrator
// treats it as an attempt failure, not a crash.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

// Generator produces candidate source for a trajectory of exchanges.
type Generator interface {
	Generate(ctx context.Context, trajectory []Message) (string, Usage, error)
}
