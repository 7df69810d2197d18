package pricing_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codesolver/codesolver/internal/llm"
	"github.com/codesolver/codesolver/internal/pricing"
)

func TestLoadAndCost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	content := "gpt-4o-mini:\n  input: 0.15\n  output: 0.6\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := pricing.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := table.Cost("gpt-4o-mini", llm.Usage{InputTokens: 1000, OutputTokens: 500})
	want := 0.15 + 0.3
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("cost: got %v, want %v", got, want)
	}
	if table.Cost("unknown-model", llm.Usage{InputTokens: 1000}) != 0 {
		t.Error("unknown model should cost 0")
	}
}

func TestNilTableCost(t *testing.T) {
	var table *pricing.Table
	if table.Cost("m", llm.Usage{InputTokens: 10}) != 0 {
		t.Error("nil table should cost 0")
	}
}
