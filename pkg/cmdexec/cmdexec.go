// Package cmdexec runs external processes from an argv vector and captures
// their output line by line. It is the boundary the docker plumbing sits on
// top of; all interpretation of command output happens via the substring
// helpers in this package.
package cmdexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the captured output of a finished process.
type Result struct {
	OutLines []string
	ErrLines []string
	ExitCode int
}

// Lines returns stdout and stderr lines combined, stdout first.
func (r Result) Lines() []string {
	lines := make([]string, 0, len(r.OutLines)+len(r.ErrLines))
	lines = append(lines, r.OutLines...)
	lines = append(lines, r.ErrLines...)
	return lines
}

// Error is returned when a process exits with a non-zero status.
type Error struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("command %q exited with status %d: %s",
		strings.Join(e.Args, " "), e.ExitCode, e.Stderr)
}

// Executor runs a command described by an argv vector. Implementations must
// be safe for repeated use; the zero retry policy is deliberate, retry logic
// belongs to the callers polling for readiness.
type Executor interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

// New returns an Executor backed by os/exec.
func New() Executor {
	return processExecutor{}
}

type processExecutor struct{}

func (processExecutor) Run(ctx context.Context, args ...string) (Result, error) {
	if len(args) == 0 {
		return Result{}, fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		OutLines: SplitLines(stdout.String()),
		ErrLines: SplitLines(stderr.String()),
	}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return res, fmt.Errorf("run %q: %w", args[0], err)
		}
		res.ExitCode = exitErr.ExitCode()
		return res, &Error{
			Args:     args,
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return res, nil
}

// SplitLines splits captured process output into trimmed, non-empty lines.
func SplitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// StdoutContains reports whether any line contains match as a substring.
// Substring containment, not exact or pattern matching, is the deliberate
// policy: CLI output regularly carries timestamps and other noise around the
// text being asserted on.
func StdoutContains(lines []string, match string) bool {
	for _, line := range lines {
		if strings.Contains(line, match) {
			return true
		}
	}
	return false
}

// StdoutMissing reports whether no line contains match as a substring.
func StdoutMissing(lines []string, match string) bool {
	return !StdoutContains(lines, match)
}

// StdoutEmpty reports whether the command produced no stdout at all.
func StdoutEmpty(lines []string) bool {
	return len(lines) == 0
}
