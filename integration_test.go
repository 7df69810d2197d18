//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/codesolver/codesolver/internal/config"
	"github.com/codesolver/codesolver/internal/llm"
	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/runner"
	"github.com/codesolver/codesolver/internal/sandbox"
	"github.com/codesolver/codesolver/internal/server"
	"github.com/codesolver/codesolver/internal/solver"
)

// scriptedGenerator returns canned completions in order, so the full solve
// loop can run against a real interpreter without a live API.
type scriptedGenerator struct {
	replies []string
	calls   int
}

func (g *scriptedGenerator) Generate(ctx context.Context, trajectory []llm.Message) (string, llm.Usage, error) {
	reply := g.replies[g.calls%len(g.replies)]
	g.calls++
	return reply, llm.Usage{InputTokens: 10, OutputTokens: 5}, nil
}

func newIntegrationSolver(t *testing.T, gen llm.Generator) (*solver.Solver, *result.Store) {
	t.Helper()
	if os.Getenv("CODESOLVER_INTEGRATION_TESTS") == "" {
		t.Skip("set CODESOLVER_INTEGRATION_TESTS=1 to run integration tests")
	}
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	validator := sandbox.NewValidator(nil, nil)
	executor := sandbox.NewExecutor("python3", 5*time.Second, 64*1024)
	testRunner := runner.New(validator, executor, 2)
	store, err := result.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return solver.New(gen, testRunner, "scripted"), store
}

func TestSolveLoopIntegration(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"def solve(a, b):\n    return a - b",
		"def solve(a, b):\n    return a + b",
	}}
	s, store := newIntegrationSolver(t, gen)

	cases, err := runner.ParseTestCases([]byte(`[[[1,2],3],[[10,20],30]]`))
	if err != nil {
		t.Fatal(err)
	}
	run, err := s.Solve(context.Background(), "Add two numbers.", cases, solver.Options{
		Reflection: true,
		MaxRetries: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if run.Score != 1.0 {
		t.Fatalf("score %.2f after reflection, want 1.0 (error: %s)", run.Score, run.Error)
	}
	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls)
	}

	if err := store.Save(run); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.SolutionCode != run.SolutionCode {
		t.Error("stored run does not round-trip")
	}
}

func TestServeIntegration(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"def solve(a, b):\n    return a * b"}}
	s, store := newIntegrationSolver(t, gen)

	srv := server.New(s, store, nil, solver.Options{}, config.Server{
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := `{"problem":"Multiply two numbers.","test_cases":[[[3,4],12],[[0,5],0]]}`
	resp, err := http.Post(ts.URL+"/generate_solution", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Score != 1.0 {
		t.Errorf("score %.2f, want 1.0", out.Score)
	}
	if _, err := store.Load(out.ID); err != nil {
		t.Errorf("run not persisted: %v", err)
	}
}
