package pandoc

import (
	"strconv"
	"strings"
)

// Format is the pandoc output family requested by the caller.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Writer returns the pandoc writer name (-t) for the format.
// PDF goes through the LaTeX writer; the engine produces the final file.
func (f Format) Writer() string {
	if f == FormatPDF {
		return "latex"
	}
	return string(f)
}

// Margins holds a uniform margin and optional per-side overrides.
// Values are LaTeX lengths ("1in", "2cm") passed through unchecked.
type Margins struct {
	Uniform string
	Top     string
	Bottom  string
	Left    string
	Right   string
}

// HasSides reports whether any per-side value is set.
func (m Margins) HasSides() bool {
	return m.Top != "" || m.Bottom != "" || m.Left != "" || m.Right != ""
}

// Geometry returns the geometry package options. Per-side values win over
// the uniform margin once any of them is set; only set sides are emitted,
// in top, bottom, left, right order. Returns "" when nothing is set.
func (m Margins) Geometry() string {
	if !m.HasSides() {
		if m.Uniform == "" {
			return ""
		}
		return "margin=" + m.Uniform
	}

	sides := make([]string, 0, 4)
	for _, s := range []struct{ name, value string }{
		{"top", m.Top},
		{"bottom", m.Bottom},
		{"left", m.Left},
		{"right", m.Right},
	} {
		if s.value != "" {
			sides = append(sides, s.name+"="+s.value)
		}
	}
	return strings.Join(sides, ",")
}

// Request is a fully resolved option set. Defaults are applied by the
// caller; BuildArgs emits exactly what it is given.
type Request struct {
	Format         Format
	TOC            bool
	TOCDepth       int
	NumberSections bool
	HighlightStyle string

	// ResourcePath is the directory pandoc searches for images and other
	// relative resources. Empty leaves pandoc's default (its working dir).
	ResourcePath string

	// DOCX only.
	DPI          int
	ReferenceDoc string

	// PDF only.
	Engine        string
	PaperSize     string
	FontSize      string
	DocumentClass string
	Margins       Margins
	LineStretch   float64
	FontFamily    string
}

// BuildArgs assembles the pandoc options for req. It never fails: values
// pandoc rejects surface later as a conversion error.
func BuildArgs(req Request) []string {
	if req.Format == FormatPDF {
		return buildPDFArgs(req)
	}
	return buildDOCXArgs(req)
}

func buildDOCXArgs(req Request) []string {
	args := []string{"--standalone"}
	args = appendStructureArgs(args, req)
	if req.HighlightStyle != "" {
		args = append(args, "--highlight-style="+req.HighlightStyle)
	}
	if req.DPI > 0 {
		args = append(args, "--dpi="+strconv.Itoa(req.DPI))
	}
	if req.ReferenceDoc != "" {
		args = append(args, "--reference-doc="+req.ReferenceDoc)
	}
	return appendResourcePath(args, req)
}

func buildPDFArgs(req Request) []string {
	args := []string{"--standalone"}
	if req.Engine != "" {
		args = append(args, "--pdf-engine="+req.Engine)
	}
	if req.HighlightStyle != "" {
		args = append(args, "--highlight-style="+req.HighlightStyle)
	}
	args = appendStructureArgs(args, req)

	if geometry := req.Margins.Geometry(); geometry != "" {
		args = append(args, "--variable=geometry:"+geometry)
	}
	args = appendVariable(args, "fontsize", req.FontSize)
	args = appendVariable(args, "papersize", req.PaperSize)
	if req.LineStretch > 0 {
		args = appendVariable(args, "linestretch", strconv.FormatFloat(req.LineStretch, 'f', -1, 64))
	}
	args = appendVariable(args, "documentclass", req.DocumentClass)

	if req.FontFamily != "" && SupportsMainFont(req.Engine) {
		args = appendVariable(args, "mainfont", req.FontFamily)
	}
	return appendResourcePath(args, req)
}

// appendStructureArgs adds the TOC and numbering flags shared by both formats.
func appendStructureArgs(args []string, req Request) []string {
	if req.TOC {
		args = append(args, "--toc")
		if req.TOCDepth > 0 {
			args = append(args, "--toc-depth="+strconv.Itoa(req.TOCDepth))
		}
	}
	if req.NumberSections {
		args = append(args, "--number-sections")
	}
	return args
}

func appendResourcePath(args []string, req Request) []string {
	if req.ResourcePath == "" {
		return args
	}
	return append(args, "--resource-path="+req.ResourcePath)
}

func appendVariable(args []string, name, value string) []string {
	if value == "" {
		return args
	}
	return append(args, "--variable="+name+"="+value)
}

// SupportsMainFont reports whether engine honors the mainfont variable.
// pdflatex has no fontspec support, so the selector is dropped for it.
func SupportsMainFont(engine string) bool {
	return engine == "xelatex" || engine == "lualatex"
}

// InvocationArgs returns the complete pandoc argument list: input file,
// reader and writer, output path, then opts.
func InvocationArgs(input, output string, format Format, opts []string) []string {
	args := make([]string, 0, len(opts)+7)
	args = append(args, input, "-f", "markdown", "-t", format.Writer(), "-o", output)
	return append(args, opts...)
}
