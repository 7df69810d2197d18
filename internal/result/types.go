package result

import "github.com/codesolver/codesolver/internal/llm"

// TestOutcome is the verdict for one test case of one attempt. Input,
// expected, and output are stored as their JSON representations.
type TestOutcome struct {
	Input     string  `json:"input"`
	Expected  string  `json:"expected_output"`
	Output    *string `json:"output"`
	Passed    bool    `json:"passed"`
	Error     string  `json:"error,omitempty"`
	RuntimeMS int64   `json:"runtime_ms"`
}

// Attempt is one generation-and-test cycle. Score is passed/total in [0,1];
// a populated Error means the candidate never executed (validator rejection
// or generation failure) and Score is 0.
type Attempt struct {
	Code     string        `json:"code"`
	Outcomes []TestOutcome `json:"test_cases"`
	Score    float64       `json:"score"`
	Error    string        `json:"error,omitempty"`
}

// Run is the terminal, immutable record of one solve request: the selected
// attempt plus the full generation trajectory. The store assigns ID and
// Timestamp when the run is saved.
type Run struct {
	ID           string        `json:"run_id"`
	Timestamp    string        `json:"timestamp"`
	Model        string        `json:"model,omitempty"`
	ProblemText  string        `json:"problem_text"`
	SolutionCode string        `json:"solution_code"`
	Outcomes     []TestOutcome `json:"test_cases"`
	Score        float64       `json:"score"`
	Error        string        `json:"error,omitempty"`
	Trajectory   []llm.Message `json:"llm_trajectory"`
	Usage        llm.Usage     `json:"usage"`
	CostUSD      float64       `json:"cost_usd,omitempty"`
}

// Summary is a listing row for stored runs.
type Summary struct {
	RunID          string  `json:"run_id"`
	Timestamp      string  `json:"timestamp"`
	Score          float64 `json:"score"`
	Model          string  `json:"model,omitempty"`
	ProblemPreview string  `json:"problem_preview"`
}

// Passed counts passing outcomes.
func Passed(outcomes []TestOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Passed {
			n++
		}
	}
	return n
}
