package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// DefaultTimeout bounds the wall clock of a single test-case execution.
const DefaultTimeout = 6000 * time.Millisecond

// killGrace is how long the executor waits after cancellation before
// reporting a stuck child as an error.
const killGrace = 2 * time.Second

// ExecResult captures one harness invocation.
type ExecResult struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	TimedOut  bool
	RuntimeMS int64
}

// Executor runs a harness script in a one-shot child process. Each call
// writes the harness to a fresh temporary directory, removed on every exit
// path. Executors hold no mutable state and are safe for concurrent use.
type Executor struct {
	PythonBin      string
	Timeout        time.Duration
	MaxOutputBytes int
}

func NewExecutor(pythonBin string, timeout time.Duration, maxOutputBytes int) *Executor {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxOutputBytes <= 0 {
		maxOutputBytes = 64 * 1024
	}
	return &Executor{PythonBin: pythonBin, Timeout: timeout, MaxOutputBytes: maxOutputBytes}
}

// Execute runs harness with args JSON-encoded as the single command-line
// argument. A non-nil error means the process could not be launched at all;
// timeouts and nonzero exits are reported in the ExecResult.
func (e *Executor) Execute(ctx context.Context, harness string, args []any) (*ExecResult, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding arguments: %w", err)
	}

	dir, err := os.MkdirTemp("", "codesolver-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("warning: removing harness dir %s: %v", dir, err)
		}
	}()

	path := filepath.Join(dir, "solution.py")
	if err := os.WriteFile(path, []byte(harness), 0o644); err != nil {
		return nil, fmt.Errorf("writing harness: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.PythonBin, path, string(payload))
	stdout := newBoundedBuffer(e.MaxOutputBytes)
	stderr := newBoundedBuffer(e.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Run the child in its own process group so that a SIGKILL on timeout
	// reaches any grandchildren the candidate may have spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = killGrace

	start := time.Now()
	err = cmd.Run()
	runtimeMS := time.Since(start).Milliseconds()

	res := &ExecResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		TimedOut:  errors.Is(runCtx.Err(), context.DeadlineExceeded),
		RuntimeMS: runtimeMS,
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		case res.TimedOut:
			// killed by the deadline before it ever exited cleanly
			res.ExitCode = -1
		default:
			return nil, fmt.Errorf("starting interpreter %s: %w", e.PythonBin, err)
		}
	}
	return res, nil
}
