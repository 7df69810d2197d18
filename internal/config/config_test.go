package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codesolver/codesolver/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	if cfg.Sandbox.TimeoutMS != 6000 {
		t.Errorf("timeout_ms: got %d, want 6000", cfg.Sandbox.TimeoutMS)
	}
	if cfg.Sandbox.PythonBin != "python3" {
		t.Errorf("python_bin: got %q, want python3", cfg.Sandbox.PythonBin)
	}
	if cfg.Solver.MaxRetries != 1 {
		t.Errorf("max_retries: got %d, want 1", cfg.Solver.MaxRetries)
	}
	if cfg.Results.Dir != "runs" {
		t.Errorf("results dir: got %q, want runs", cfg.Results.Dir)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codesolver.yaml")
	content := `
generator:
  model: gpt-4.1
  requests_per_min: 10
sandbox:
  timeout_ms: 100
solver:
  reflection: true
  max_retries: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.Model != "gpt-4.1" {
		t.Errorf("model: got %q", cfg.Generator.Model)
	}
	if cfg.Sandbox.TimeoutMS != 100 {
		t.Errorf("timeout_ms: got %d, want 100", cfg.Sandbox.TimeoutMS)
	}
	if !cfg.Solver.Reflection || cfg.Solver.MaxRetries != 3 {
		t.Errorf("solver: got %+v", cfg.Solver)
	}
	// untouched fields keep their defaults
	if cfg.Generator.MaxTokens != 1200 {
		t.Errorf("max_tokens default: got %d", cfg.Generator.MaxTokens)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codesolver.yaml")
	if err := os.WriteFile(path, []byte("sandbox:\n  timeout_ms: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for negative timeout")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Sandbox.TimeoutMS != 6000 {
		t.Errorf("expected defaults, got %+v", cfg.Sandbox)
	}
}
