package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdconv/internal/config"
	"github.com/alnah/go-mdconv/internal/fileutil"
	"github.com/alnah/go-mdconv/internal/hints"
)

// envPrefix is the prefix of every recognized environment variable.
const envPrefix = "MDCONV_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // MDCONV_CONFIG: config file name or path
	Format     string        // MDCONV_FORMAT: docx or pdf
	Pandoc     string        // MDCONV_PANDOC: pandoc executable
	Timeout    time.Duration // MDCONV_TIMEOUT: per-document timeout

	// Tier 2 - Output and rendering
	OutputDir      string // MDCONV_OUTPUT_DIR: default output directory
	Engine         string // MDCONV_PDF_ENGINE: LaTeX engine
	HighlightStyle string // MDCONV_HIGHLIGHT_STYLE: code theme
	ReferenceDoc   string // MDCONV_REFERENCE_DOC: template .docx
	Workers        int    // MDCONV_WORKERS: parallel conversions

	// Tier 3 - Server
	Addr      string // MDCONV_ADDR: serve listen address
	AssetsDir string // MDCONV_ASSETS: form asset overrides
}

// knownEnvVars lists valid MDCONV_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"MDCONV_CONFIG":  true,
	"MDCONV_FORMAT":  true,
	"MDCONV_PANDOC":  true,
	"MDCONV_TIMEOUT": true,
	// Tier 2 - Output and rendering
	"MDCONV_OUTPUT_DIR":      true,
	"MDCONV_PDF_ENGINE":      true,
	"MDCONV_HIGHLIGHT_STYLE": true,
	"MDCONV_REFERENCE_DOC":   true,
	"MDCONV_WORKERS":         true,
	// Tier 3 - Server
	"MDCONV_ADDR":   true,
	"MDCONV_ASSETS": true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:     os.Getenv("MDCONV_CONFIG"),
		Format:         os.Getenv("MDCONV_FORMAT"),
		Pandoc:         os.Getenv("MDCONV_PANDOC"),
		OutputDir:      os.Getenv("MDCONV_OUTPUT_DIR"),
		Engine:         os.Getenv("MDCONV_PDF_ENGINE"),
		HighlightStyle: os.Getenv("MDCONV_HIGHLIGHT_STYLE"),
		ReferenceDoc:   os.Getenv("MDCONV_REFERENCE_DOC"),
		Addr:           os.Getenv("MDCONV_ADDR"),
		AssetsDir:      os.Getenv("MDCONV_ASSETS"),
	}

	if timeout := os.Getenv("MDCONV_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MDCONV_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDCONV_* variables.
// Helps catch typos like MDCONV_ENGINE instead of MDCONV_PDF_ENGINE.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, env := range os.Environ() {
		name, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies set environment variables over the loaded config.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Format != "" {
		cfg.Format = env.Format
	}
	if env.Pandoc != "" {
		cfg.Pandoc.Path = env.Pandoc
	}
	if env.Timeout > 0 {
		cfg.Pandoc.Timeout = env.Timeout.String()
	}

	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Engine != "" {
		cfg.PDF.Engine = env.Engine
	}
	if env.HighlightStyle != "" {
		cfg.HighlightStyle = env.HighlightStyle
	}
	if env.ReferenceDoc != "" {
		cfg.Docx.ReferenceDoc = env.ReferenceDoc
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}

	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.AssetsDir != "" {
		cfg.Server.AssetsDir = env.AssetsDir
	}
}

// loadEffectiveConfig builds the configuration a command runs with:
// defaults, then the config file (flag, else MDCONV_CONFIG), then env vars.
func loadEffectiveConfig(configFlag string, env *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()

	name := configFlag
	if name == "" {
		name = env.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			hint := ""
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				hint = hints.ForConfigNotFound(config.SearchPaths(name))
			}
			return nil, fmt.Errorf("loading config: %w%s", err, hint)
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}
