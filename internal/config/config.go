package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdconv/internal/fileutil"
	"github.com/alnah/go-mdconv/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// userConfigDirName is the directory searched under os.UserConfigDir.
const userConfigDirName = "go-mdconv"

// Field length limits.
const (
	MaxPathLength    = 4096 // PATH_MAX on Linux
	MaxEnumLength    = 20   // "documentclass", "breezedark"
	MaxLengthLength  = 20   // "2.5cm", "1in"
	MaxFontLength    = 100  // "Liberation Serif"
	MaxAddrLength    = 255  // host:port
	MaxDurationField = 20   // "2m30s"
)

// Value ranges.
const (
	MinTOCDepth    = 1
	MaxTOCDepth    = 6
	MinDPI         = 72
	MaxDPI         = 300
	MaxWorkers     = 8   // converter pool maximum
	MaxUploadLimit = 100 // MB
)

// Config holds all configuration for document conversion.
type Config struct {
	Format         string       `yaml:"format"` // "docx" or "pdf"
	Output         OutputConfig `yaml:"output"`
	TOC            TOCConfig    `yaml:"toc"`
	NumberSections bool         `yaml:"numberSections"`
	HighlightStyle string       `yaml:"highlightStyle"`
	Docx           DocxConfig   `yaml:"docx"`
	PDF            PDFConfig    `yaml:"pdf"`
	Pandoc         PandocConfig `yaml:"pandoc"`
	Server         ServerConfig `yaml:"server"`
	Workers        int          `yaml:"workers"` // 0 = auto
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Empty = next to the source file
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled bool `yaml:"enabled"`
	Depth   int  `yaml:"depth"` // 1-6, default 3
}

// DocxConfig defines Word output options.
type DocxConfig struct {
	ReferenceDoc string `yaml:"referenceDoc"` // Optional template .docx
	DPI          int    `yaml:"dpi"`          // 72-300, default 96
	Font         string `yaml:"font"`         // Replaces the default serif font
}

// PDFConfig defines LaTeX output options.
type PDFConfig struct {
	Engine        string  `yaml:"engine"`        // pdflatex, xelatex, lualatex
	PaperSize     string  `yaml:"paperSize"`     // a4, letter, legal
	FontSize      string  `yaml:"fontSize"`      // 10pt, 11pt, 12pt
	DocumentClass string  `yaml:"documentClass"` // article, report, book
	Margin        string  `yaml:"margin"`        // Uniform, e.g. "1in"
	MarginTop     string  `yaml:"marginTop"`     // Per-side values win over margin
	MarginBottom  string  `yaml:"marginBottom"`
	MarginLeft    string  `yaml:"marginLeft"`
	MarginRight   string  `yaml:"marginRight"`
	LineStretch   float64 `yaml:"lineStretch"`
	FontFamily    string  `yaml:"fontFamily"` // xelatex and lualatex only
}

// PandocConfig locates and bounds the converter subprocess.
type PandocConfig struct {
	Path    string `yaml:"path"`    // Empty = "pandoc" on PATH
	Timeout string `yaml:"timeout"` // Go duration, e.g. "2m"
}

// ServerConfig defines the web form server.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"maxUploadMB"`
	AssetsDir   string `yaml:"assetsDir"` // Overrides for the form template and styles
}

// TimeoutDuration parses Pandoc.Timeout. Zero means "use the default".
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Pandoc.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Pandoc.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: pandoc.timeout %q (want a positive duration like 2m)", ErrInvalidValue, c.Pandoc.Timeout)
	}
	return d, nil
}

// Validate checks field lengths and numeric ranges.
// Enumerated values (engine, paper size...) are checked by the converter,
// which owns the lists.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"format", c.Format, MaxEnumLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"highlightStyle", c.HighlightStyle, MaxEnumLength},
		{"docx.referenceDoc", c.Docx.ReferenceDoc, MaxPathLength},
		{"docx.font", c.Docx.Font, MaxFontLength},
		{"pdf.engine", c.PDF.Engine, MaxEnumLength},
		{"pdf.paperSize", c.PDF.PaperSize, MaxEnumLength},
		{"pdf.fontSize", c.PDF.FontSize, MaxEnumLength},
		{"pdf.documentClass", c.PDF.DocumentClass, MaxEnumLength},
		{"pdf.margin", c.PDF.Margin, MaxLengthLength},
		{"pdf.marginTop", c.PDF.MarginTop, MaxLengthLength},
		{"pdf.marginBottom", c.PDF.MarginBottom, MaxLengthLength},
		{"pdf.marginLeft", c.PDF.MarginLeft, MaxLengthLength},
		{"pdf.marginRight", c.PDF.MarginRight, MaxLengthLength},
		{"pdf.fontFamily", c.PDF.FontFamily, MaxFontLength},
		{"pandoc.path", c.Pandoc.Path, MaxPathLength},
		{"pandoc.timeout", c.Pandoc.Timeout, MaxDurationField},
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"server.assetsDir", c.Server.AssetsDir, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Format) {
	case "", "docx", "pdf":
	default:
		return fmt.Errorf("%w: format %q (must be docx or pdf)", ErrInvalidValue, c.Format)
	}

	if c.TOC.Depth != 0 && (c.TOC.Depth < MinTOCDepth || c.TOC.Depth > MaxTOCDepth) {
		return fmt.Errorf("%w: toc.depth must be between %d and %d, got %d", ErrInvalidValue, MinTOCDepth, MaxTOCDepth, c.TOC.Depth)
	}
	if c.Docx.DPI != 0 && (c.Docx.DPI < MinDPI || c.Docx.DPI > MaxDPI) {
		return fmt.Errorf("%w: docx.dpi must be between %d and %d, got %d", ErrInvalidValue, MinDPI, MaxDPI, c.Docx.DPI)
	}
	if c.PDF.LineStretch < 0 {
		return fmt.Errorf("%w: pdf.lineStretch must not be negative, got %g", ErrInvalidValue, c.PDF.LineStretch)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}
	if c.Server.MaxUploadMB < 0 || c.Server.MaxUploadMB > MaxUploadLimit {
		return fmt.Errorf("%w: server.maxUploadMB must be between 0 and %d, got %d", ErrInvalidValue, MaxUploadLimit, c.Server.MaxUploadMB)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
// Values mirror the web form defaults.
func DefaultConfig() *Config {
	return &Config{
		Format:         "docx",
		TOC:            TOCConfig{Enabled: false, Depth: 3},
		HighlightStyle: "pygments",
		Docx: DocxConfig{
			DPI:  96,
			Font: "Latin Modern Roman",
		},
		PDF: PDFConfig{
			Engine:        "pdflatex",
			PaperSize:     "letter",
			FontSize:      "11pt",
			DocumentClass: "article",
			Margin:        "1in",
			LineStretch:   1.15,
		},
		Pandoc: PandocConfig{Timeout: "2m"},
		Server: ServerConfig{Addr: "127.0.0.1:8080", MaxUploadMB: 10},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	if !fileutil.FileExists(configPath) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists where a config name is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, userConfigDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory, then ~/.config/go-mdconv/, .yaml before .yml.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
