package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// Invocation is one external command line.
type Invocation struct {
	Name string
	Args []string
}

// String renders the invocation as a copy-pasteable shell command.
func (i Invocation) String() string {
	parts := make([]string, 0, len(i.Args)+1)
	parts = append(parts, shellQuote(i.Name))
	for _, arg := range i.Args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// ExecResult captures everything a finished child process reported.
type ExecResult struct {
	ExitCode int
	Signal   string
	Stdout   string
	Stderr   string
}

// Executor runs invocations to completion. A returned error means the process
// could not be started or waited on; a non-zero exit is reported through
// ExecResult with a nil error.
type Executor interface {
	Run(ctx context.Context, inv Invocation) (ExecResult, error)
}

// CommandExecutor runs invocations with os/exec.
type CommandExecutor struct{}

// Run executes inv and captures stdout and stderr separately.
func (CommandExecutor) Run(ctx context.Context, inv Invocation) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		result.ExitCode = -1
		return result, err
	}
	result.ExitCode = exitErr.ExitCode()
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		result.Signal = unix.SignalName(status.Signal())
	}
	return result, nil
}

func shellQuote(value string) string {
	if value == "" {
		return "''"
	}
	if !strings.ContainsAny(value, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
