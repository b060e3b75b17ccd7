package mdconv

import (
	"log/slog"
	"time"

	"github.com/alnah/go-mdconv/internal/pandoc"
)

// CommandRunner executes the pandoc subprocess. Replace it with
// WithRunner to run pandoc remotely or to stub it in tests.
type CommandRunner = pandoc.CommandRunner

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout           time.Duration
	pandocPath        string
	runner            CommandRunner
	logger            *slog.Logger
	strictPostProcess bool
	tempDir           string
}

// defaultTimeout bounds one pandoc run. LaTeX can hang on malformed input.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the per-conversion timeout for the pandoc subprocess.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdconv: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithPandocPath sets the pandoc executable (a name on PATH or a file path).
func WithPandocPath(path string) Option {
	return func(c *Converter) {
		c.cfg.pandocPath = path
	}
}

// WithRunner replaces the subprocess runner.
func WithRunner(r CommandRunner) Option {
	return func(c *Converter) {
		c.cfg.runner = r
	}
}

// WithLogger sends debug events (pandoc arguments, timings, post-processing
// fallbacks) to l. By default they are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = l
	}
}

// WithStrictPostProcess makes a DOCX post-processing failure fail the
// conversion instead of returning the unpatched document.
func WithStrictPostProcess() Option {
	return func(c *Converter) {
		c.cfg.strictPostProcess = true
	}
}

// WithTempDir sets the parent directory of per-conversion workspaces.
// Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.tempDir = dir
	}
}
