package main

// Notes:
// - These tests use t.Setenv and cannot run in parallel.
// - loadEffectiveConfig with a config name is covered through a file path;
//   name lookup depends on the working directory and user config dir.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-mdconv/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable parsing
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("MDCONV_FORMAT", "pdf")
	t.Setenv("MDCONV_PANDOC", "/opt/pandoc/bin/pandoc")
	t.Setenv("MDCONV_TIMEOUT", "45s")
	t.Setenv("MDCONV_WORKERS", "3")
	t.Setenv("MDCONV_PDF_ENGINE", "xelatex")
	t.Setenv("MDCONV_ASSETS", "/srv/assets")

	env := loadEnvConfig()

	if env.Format != "pdf" {
		t.Errorf("Format = %q, want %q", env.Format, "pdf")
	}
	if env.Pandoc != "/opt/pandoc/bin/pandoc" {
		t.Errorf("Pandoc = %q", env.Pandoc)
	}
	if env.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", env.Timeout)
	}
	if env.Workers != 3 {
		t.Errorf("Workers = %d, want 3", env.Workers)
	}
	if env.Engine != "xelatex" {
		t.Errorf("Engine = %q, want %q", env.Engine, "xelatex")
	}
	if env.AssetsDir != "/srv/assets" {
		t.Errorf("AssetsDir = %q", env.AssetsDir)
	}
}

func TestLoadEnvConfig_IgnoresInvalidNumbers(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		workers string
	}{
		{name: "garbage", timeout: "soon", workers: "many"},
		{name: "negative", timeout: "-5s", workers: "-2"},
		{name: "zero", timeout: "0s", workers: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MDCONV_TIMEOUT", tt.timeout)
			t.Setenv("MDCONV_WORKERS", tt.workers)

			env := loadEnvConfig()

			if env.Timeout != 0 {
				t.Errorf("Timeout = %v, want 0", env.Timeout)
			}
			if env.Workers != 0 {
				t.Errorf("Workers = %d, want 0", env.Workers)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("MDCONV_ENGINE", "xelatex")
	t.Setenv("MDCONV_FORMAT", "pdf")
	t.Setenv("MDCONV_WORKER", "2")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)
	out := buf.String()

	if !strings.Contains(out, "MDCONV_ENGINE") || !strings.Contains(out, "MDCONV_WORKER ") {
		t.Errorf("missing warnings for typos:\n%s", out)
	}
	if strings.Contains(out, "MDCONV_FORMAT") {
		t.Errorf("known variable reported as unknown:\n%s", out)
	}
	if strings.Index(out, "MDCONV_ENGINE") > strings.Index(out, "MDCONV_WORKER") {
		t.Errorf("warnings should be sorted:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Environment over config file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.PDF.Engine = "lualatex" // as if read from a file

	applyEnvConfig(&envConfig{
		Engine:    "xelatex",
		Timeout:   90 * time.Second,
		Workers:   2,
		OutputDir: "out",
	}, cfg)

	if cfg.PDF.Engine != "xelatex" {
		t.Errorf("PDF.Engine = %q, want env value %q", cfg.PDF.Engine, "xelatex")
	}
	if cfg.Pandoc.Timeout != "1m30s" {
		t.Errorf("Pandoc.Timeout = %q, want %q", cfg.Pandoc.Timeout, "1m30s")
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, "out")
	}
	if cfg.HighlightStyle != "pygments" {
		t.Errorf("unset variable changed HighlightStyle to %q", cfg.HighlightStyle)
	}
}

// ---------------------------------------------------------------------------
// TestLoadEffectiveConfig - Defaults, file, environment
// ---------------------------------------------------------------------------

func TestLoadEffectiveConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadEffectiveConfig("", &envConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != "docx" || cfg.PDF.Engine != "pdflatex" {
		t.Errorf("got format %q engine %q, want defaults", cfg.Format, cfg.PDF.Engine)
	}
}

func TestLoadEffectiveConfig_FileThenEnv(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.yaml")
	content := "format: pdf\npdf:\n  engine: lualatex\n  paperSize: a4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadEffectiveConfig(path, &envConfig{Engine: "xelatex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Format != "pdf" {
		t.Errorf("Format = %q, want file value %q", cfg.Format, "pdf")
	}
	if cfg.PDF.PaperSize != "a4" {
		t.Errorf("PaperSize = %q, want file value %q", cfg.PDF.PaperSize, "a4")
	}
	if cfg.PDF.Engine != "xelatex" {
		t.Errorf("Engine = %q, want env value %q", cfg.PDF.Engine, "xelatex")
	}
	if cfg.PDF.FontSize != "11pt" {
		t.Errorf("FontSize = %q, want default %q", cfg.PDF.FontSize, "11pt")
	}
}

func TestLoadEffectiveConfig_EnvConfigPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("highlightStyle: zenburn\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadEffectiveConfig("", &envConfig{ConfigPath: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HighlightStyle != "zenburn" {
		t.Errorf("HighlightStyle = %q, want %q", cfg.HighlightStyle, "zenburn")
	}
}

func TestLoadEffectiveConfig_NotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantHint bool
	}{
		{name: "name gets hint", value: "no-such-config-name", wantHint: true},
		{name: "path has no hint", value: filepath.Join(t.TempDir(), "missing.yaml"), wantHint: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := loadEffectiveConfig(tt.value, &envConfig{})
			if !errors.Is(err, config.ErrConfigNotFound) {
				t.Fatalf("error = %v, want ErrConfigNotFound", err)
			}
			if got := strings.Contains(err.Error(), "hint:"); got != tt.wantHint {
				t.Errorf("hint present = %v, want %v: %v", got, tt.wantHint, err)
			}
		})
	}
}
