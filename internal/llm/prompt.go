package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt constrains the model to emit one self-contained Python file
// with a positional solve entry point.
const SystemPrompt = "You are a careful Python assistant. Return ONLY valid Python code for a single file.\n" +
	"The code must define a top-level function named `solve` that directly matches the test case inputs.\n" +
	"Examples:\n" +
	"- For [[[1,2],3]] use: def solve(a, b): ...\n" +
	"- For [[['hello'],'olleh']] use: def solve(s): ...\n" +
	"Do NOT define def solve(inputs) or take a list as one argument unless the input itself is a list.\n" +
	"Return results directly, not via print().\n" +
	"Use only Python standard library. Avoid side effects or dangerous operations.\n" +
	"Do not include explanations, markdown, or text - return pure Python code."

// Example is a sample test case shown to the model alongside the problem.
type Example struct {
	Inputs   []any `json:"inputs"`
	Expected any   `json:"expected"`
}

// maxPromptExamples caps how many sample cases are embedded in the prompt.
const maxPromptExamples = 3

// BuildProblemMessages assembles the opening trajectory for a problem.
func BuildProblemMessages(problemText string, examples []Example) []Message {
	var b strings.Builder
	fmt.Fprintf(&b, `Problem:
%s

Guidelines:
- Write a function named `+"`solve`"+` whose parameters exactly match the inputs of each test case.
- For test case input like ["hello"], treat the argument as a single string, not a list of strings.
- Return the result directly (no prints).
- The runner will call your function as solve(*args).
- Use only Python stdlib and avoid any external dependencies.
`, problemText)

	if len(examples) > 0 {
		b.WriteString("\nTest Cases (examples):\n")
		for i, ex := range examples {
			if i == maxPromptExamples {
				break
			}
			inputs, _ := json.Marshal(ex.Inputs)
			expected, _ := json.Marshal(ex.Expected)
			fmt.Fprintf(&b, "- inputs=%s, expected=%s\n", inputs, expected)
		}
	}

	return []Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: b.String()},
	}
}
