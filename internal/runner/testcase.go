package runner

import (
	"encoding/json"
	"fmt"
)

// TestCase pairs an ordered argument list with its expected return value.
// Immutable once parsed; arity may vary case to case.
type TestCase struct {
	Inputs   []any
	Expected any
}

// ParseTestCases decodes the caller-supplied wire format
// [[[args...], expected], ...].
func ParseTestCases(data []byte) ([]TestCase, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("test cases must be a JSON array of [args, expected] pairs: %w", err)
	}
	cases := make([]TestCase, 0, len(raw))
	for i, item := range raw {
		if len(item) != 2 {
			return nil, fmt.Errorf("test case %d: must be [ [args...], expected ]", i)
		}
		if !isJSONArray(item[0]) {
			return nil, fmt.Errorf("test case %d: inputs must be a list of args", i)
		}
		var inputs []any
		if err := json.Unmarshal(item[0], &inputs); err != nil {
			return nil, fmt.Errorf("test case %d: parsing inputs: %w", i, err)
		}
		var expected any
		if err := json.Unmarshal(item[1], &expected); err != nil {
			return nil, fmt.Errorf("test case %d: parsing expected value: %w", i, err)
		}
		cases = append(cases, TestCase{Inputs: inputs, Expected: expected})
	}
	return cases, nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
