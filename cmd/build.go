package cmd

import (
	"time"

	"github.com/codesolver/codesolver/internal/config"
	"github.com/codesolver/codesolver/internal/llm"
	"github.com/codesolver/codesolver/internal/pricing"
	"github.com/codesolver/codesolver/internal/result"
	"github.com/codesolver/codesolver/internal/runner"
	"github.com/codesolver/codesolver/internal/sandbox"
	"github.com/codesolver/codesolver/internal/solver"
)

// components is everything a subcommand may need, assembled once from the
// config file.
type components struct {
	cfg     *config.Config
	solver  *solver.Solver
	store   *result.Store
	pricing *pricing.Table
	opts    solver.Options
}

func buildComponents() (*components, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg.Generator)
	if err != nil {
		return nil, err
	}

	validator := sandbox.NewValidator(cfg.Sandbox.AllowedImports, cfg.Sandbox.BlockedTokens)
	executor := sandbox.NewExecutor(
		cfg.Sandbox.PythonBin,
		time.Duration(cfg.Sandbox.TimeoutMS)*time.Millisecond,
		cfg.Sandbox.MaxOutputBytes,
	)
	testRunner := runner.New(validator, executor, cfg.Solver.Parallel)

	store, err := result.NewStore(cfg.Results.Dir)
	if err != nil {
		return nil, err
	}

	var table *pricing.Table
	if cfg.Pricing.File != "" {
		table, err = pricing.Load(cfg.Pricing.File)
		if err != nil {
			return nil, err
		}
	}

	return &components{
		cfg:     cfg,
		solver:  solver.New(client, testRunner, client.Model()),
		store:   store,
		pricing: table,
		opts: solver.Options{
			Reflection: cfg.Solver.Reflection,
			MaxRetries: cfg.Solver.MaxRetries,
		},
	}, nil
}
