package main

import (
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/alnah/go-mdconv"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout   io.Writer
	Stderr   io.Writer
	LookPath func(file string) (string, error)

	// Runner replaces the pandoc subprocess runner. nil = real pandoc.
	Runner mdconv.CommandRunner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		LookPath: exec.LookPath,
	}
}

// converterOptions returns the library options shared by every command.
func (e *Environment) converterOptions(opts ...mdconv.Option) []mdconv.Option {
	if e.Runner != nil {
		opts = append(opts, mdconv.WithRunner(e.Runner))
	}
	return opts
}

// newLogger returns a text logger writing to w.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logLevel maps -q and -v to a level. Debug events include pandoc
// arguments and timings.
func logLevel(f commonFlags) slog.Level {
	switch {
	case f.verbose:
		return slog.LevelDebug
	case f.quiet:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
