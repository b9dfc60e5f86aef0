// Package runner executes external commands and converts every failure mode
// into a result record. Nothing in this package returns a Go error to its
// caller: a missing binary, a timeout and a non-zero exit are all just
// results.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

const (
	DefaultCommandTimeout = 300 * time.Second
	DefaultPassTimeout    = 180 * time.Second
)

// Command is a fully assembled invocation. Arguments are kept structured so
// path quoting never happens through string concatenation.
type Command struct {
	Bin     string
	Args    []string
	Dir     string
	Timeout time.Duration
}

type Result struct {
	Succeeded bool
	ExitCode  int
	Stdout    string
	Stderr    string
}

type Runner struct{}

func New() *Runner {
	return &Runner{}
}

// Run spawns the command and waits for it, bounded by the command timeout.
// On timeout the result reports exit code -1 and a "timed out" stderr; the
// child is signalled but its termination is not guaranteed once it has
// detached (e.g. a compose run whose container outlives the CLI).
func (r *Runner) Run(ctx context.Context, cmd Command) Result {
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, cmd.Bin, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case err == nil:
		res.Succeeded = true
		res.ExitCode = 0
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		res.Stderr = "timed out"
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// 起動自体に失敗 (バイナリ不在, 権限など)
			res.ExitCode = -1
			res.Stderr = err.Error()
		}
	}
	return res
}
