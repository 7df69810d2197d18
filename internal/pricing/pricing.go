package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/codesolver/codesolver/internal/llm"
)

// ModelPricing holds per-1K-token prices in USD.
type ModelPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// Table maps model name to its pricing.
type Table struct {
	Models map[string]ModelPricing
}

func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pricing file: %w", err)
	}
	var models map[string]ModelPricing
	if err := yaml.Unmarshal(data, &models); err != nil {
		return nil, fmt.Errorf("parsing pricing file: %w", err)
	}
	return &Table{Models: models}, nil
}

// Cost estimates the USD cost of the given usage. Unknown models cost 0.
func (t *Table) Cost(model string, usage llm.Usage) float64 {
	if t == nil || t.Models == nil {
		return 0
	}
	p, ok := t.Models[model]
	if !ok {
		return 0
	}
	return (float64(usage.InputTokens)/1000.0)*p.Input + (float64(usage.OutputTokens)/1000.0)*p.Output
}
