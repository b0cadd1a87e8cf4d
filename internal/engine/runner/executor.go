// Package runner compiles and runs Java source text with the JDK tools
// found on PATH.
package runner

import (
	"bytes"
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"codelens/internal/core/config"
	"codelens/internal/core/errors"
	"codelens/internal/core/ports"
)

const collaboratorName = "executor"

// JavaExecutor writes each source into its own temporary directory, so
// concurrent runs never share files. The directory is removed afterwards.
type JavaExecutor struct {
	javac     string
	java      string
	timeout   time.Duration
	maxOutput int
	lookPath  func(string) (string, error)
}

func NewJavaExecutor(cfg config.Execution) *JavaExecutor {
	return &JavaExecutor{
		javac:     cfg.Javac,
		java:      cfg.Java,
		timeout:   cfg.Timeout,
		maxOutput: cfg.MaxOutputBytes,
		lookPath:  exec.LookPath,
	}
}

// Available reports whether both JDK tools resolve on PATH.
func (e *JavaExecutor) Available() error {
	for _, bin := range []string{e.javac, e.java} {
		if _, err := e.lookPath(bin); err != nil {
			return errors.Unavailable(err, collaboratorName, "lookup "+bin)
		}
	}
	return nil
}

// Execute reports compilation and runtime failures as outcomes. It returns
// an error only when the toolchain cannot be invoked.
func (e *JavaExecutor) Execute(ctx context.Context, source, entryPoint string) (ports.ExecutionOutcome, error) {
	start := time.Now()
	javac, err := e.lookPath(e.javac)
	if err != nil {
		return ports.ExecutionOutcome{}, errors.Unavailable(err, collaboratorName, "lookup "+e.javac)
	}
	java, err := e.lookPath(e.java)
	if err != nil {
		return ports.ExecutionOutcome{}, errors.Unavailable(err, collaboratorName, "lookup "+e.java)
	}

	dir, err := os.MkdirTemp("", "codelens-run-*")
	if err != nil {
		return ports.ExecutionOutcome{}, errors.Unavailable(err, collaboratorName, "create work dir")
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, entryPoint+".java")
	if err := os.WriteFile(file, []byte(source), 0o600); err != nil {
		return ports.ExecutionOutcome{}, errors.Unavailable(err, collaboratorName, "write source")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	stdout, stderr, err := e.run(ctx, dir, javac, file)
	if err != nil {
		if isStartFailure(err) {
			return ports.ExecutionOutcome{}, errors.Unavailable(err, collaboratorName, "start javac")
		}
		return e.outcome(ports.StatusCompilationError, failureText(ctx, stdout, stderr, e.timeout), start), nil
	}

	stdout, stderr, err = e.run(ctx, dir, java, "-cp", dir, entryPoint)
	if err != nil {
		if isStartFailure(err) {
			return ports.ExecutionOutcome{}, errors.Unavailable(err, collaboratorName, "start java")
		}
		return e.outcome(ports.StatusRuntimeError, failureText(ctx, stdout, stderr, e.timeout), start), nil
	}
	return e.outcome(ports.StatusSuccess, stdout, start), nil
}

func (e *JavaExecutor) run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	stdout := &cappedBuffer{limit: e.maxOutput}
	stderr := &cappedBuffer{limit: e.maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (e *JavaExecutor) outcome(status ports.ExecutionStatus, output string, start time.Time) ports.ExecutionOutcome {
	return ports.ExecutionOutcome{Status: status, Output: output, Duration: time.Since(start)}
}

// failureText prefers stderr, matching what javac and java print on failure.
func failureText(ctx context.Context, stdout, stderr string, timeout time.Duration) string {
	if stdErrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("timed out after %s\n%s", timeout, stderr)
	}
	if stderr != "" {
		return stderr
	}
	return stdout
}

// isStartFailure distinguishes a process that never started from one that
// exited non-zero.
func isStartFailure(err error) bool {
	var exitErr *exec.ExitError
	if stdErrors.As(err, &exitErr) {
		return false
	}
	return !stdErrors.Is(err, context.DeadlineExceeded) && !stdErrors.Is(err, context.Canceled)
}

// cappedBuffer keeps the first limit bytes and discards the rest while
// reporting full writes so the child process is never blocked.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if c.limit <= 0 {
		return c.buf.Write(p)
	}
	remaining := c.limit - c.buf.Len()
	if remaining <= 0 {
		c.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		c.buf.Write(p[:remaining])
		c.truncated = true
		return len(p), nil
	}
	return c.buf.Write(p)
}

func (c *cappedBuffer) String() string {
	if c.truncated {
		return c.buf.String() + "\n[output truncated]"
	}
	return c.buf.String()
}
