// Package pandoc builds pandoc invocations and runs them as subprocesses.
package pandoc

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the executable name looked up on PATH.
const DefaultBinary = "pandoc"

// Sentinel errors for pandoc invocation.
var (
	ErrNotFound  = errors.New("pandoc executable not found")
	ErrNoVersion = errors.New("pandoc did not report a version")
)

// Error is a failed pandoc run. Stderr holds pandoc's diagnostics verbatim.
type Error struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("pandoc: %v", e.Err)
	}
	return fmt.Sprintf("pandoc: %v: %s", e.Err, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Pandoc runs the pandoc binary at Path through Runner.
type Pandoc struct {
	Path   string
	Runner CommandRunner
}

// New creates a Pandoc with a real command runner.
// An empty path selects DefaultBinary from PATH.
func New(path string) *Pandoc {
	if path == "" {
		path = DefaultBinary
	}
	return &Pandoc{Path: path, Runner: &ExecRunner{}}
}

// Convert renders the Markdown file at input into output.
// opts normally come from BuildArgs.
func (p *Pandoc) Convert(ctx context.Context, input, output string, format Format, opts []string) error {
	args := InvocationArgs(input, output, format, opts)
	_, stderr, err := p.Runner.Run(ctx, p.Path, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrNotFound, p.Path)
		}
		return &Error{Args: args, Stderr: stderr, Err: err}
	}
	return nil
}

// Version returns the first line of "pandoc --version", e.g. "pandoc 3.1.11".
func (p *Pandoc) Version(ctx context.Context) (string, error) {
	stdout, stderr, err := p.Runner.Run(ctx, p.Path, "--version")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, p.Path)
		}
		return "", &Error{Args: []string{"--version"}, Stderr: stderr, Err: err}
	}

	first, _, _ := strings.Cut(stdout, "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return "", ErrNoVersion
	}
	return first, nil
}

// Locate resolves path (a name or a file path) to an executable.
func Locate(path string) (string, error) {
	if path == "" {
		path = DefaultBinary
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	return resolved, nil
}
