// Package server exposes the solver over HTTP: one endpoint to solve a
// problem, two to browse stored runs.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/codesolver/codesolver/internal/config"
	"github.com/codesolver/codesolver/internal/pricing"
	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/runner"
	"github.com/codesolver/codesolver/internal/solver"
)

// ProblemSolver is what the handlers need from the orchestrator.
type ProblemSolver interface {
	Solve(ctx context.Context, problemText string, cases []runner.TestCase, opts solver.Options) (*result.Run, error)
}

type Server struct {
	solver  ProblemSolver
	store   *result.Store
	pricing *pricing.Table
	opts    solver.Options
	limiter *rate.Limiter
}

func New(s ProblemSolver, store *result.Store, table *pricing.Table, opts solver.Options, cfg config.Server) *Server {
	return &Server{
		solver:  s,
		store:   store,
		pricing: table,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}
}

// Handler returns the server's routes wrapped in request-id and rate-limit
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /generate_solution", s.handleGenerate)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /results/{id}", s.handleGetRun)
	return requestID(s.rateLimit(mux))
}

type generateRequest struct {
	Problem    string          `json:"problem"`
	TestCases  json.RawMessage `json:"test_cases"`
	Reflection *bool           `json:"reflection,omitempty"`
	MaxRetries *int            `json:"max_retries,omitempty"`
}

type generateResponse struct {
	ID           string               `json:"id"`
	SolutionCode string               `json:"solution_code"`
	Results      []result.TestOutcome `json:"results"`
	Score        float64              `json:"score"`
	Error        string               `json:"error,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing request: %v", err))
		return
	}
	if req.Problem == "" {
		writeError(w, http.StatusBadRequest, "problem is required")
		return
	}
	cases, err := runner.ParseTestCases(req.TestCases)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid test cases format: %v", err))
		return
	}
	if len(cases) == 0 {
		writeError(w, http.StatusBadRequest, "at least one test case is required")
		return
	}

	opts := s.opts
	if req.Reflection != nil {
		opts.Reflection = *req.Reflection
	}
	if req.MaxRetries != nil {
		opts.MaxRetries = *req.MaxRetries
	}

	run, err := s.solver.Solve(r.Context(), req.Problem, cases, opts)
	if err != nil {
		// The orchestrator only fails on structural problems; the caller
		// never sees a raw stack trace.
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error generating solution: %v", err))
		return
	}
	run.CostUSD = s.pricing.Cost(run.Model, run.Usage)
	if err := s.store.Save(run); err != nil {
		log.Printf("warning: saving run: %v", err)
	}

	writeJSON(w, http.StatusOK, generateResponse{
		ID:           run.ID,
		SolutionCode: run.SolutionCode,
		Results:      run.Outcomes,
		Score:        run.Score,
		Error:        run.Error,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	summaries, err := s.store.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []result.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := s.store.Load(id)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("run %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("warning: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
