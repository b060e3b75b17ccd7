// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdconv/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForLaTeX returns hints for a PDF conversion that failed inside the LaTeX
// engine: usually a missing TeX distribution or a package it lacks.
func ForLaTeX(engine string) string {
	hints := []string{"PDF output needs a LaTeX distribution"}
	if engine != "" {
		hints[0] += " providing " + engine
	}

	if IsInContainer() {
		hints = append(hints, "install texlive-latex-recommended in the image")
	} else {
		hints = append(hints, "install TeX Live, MiKTeX or MacTeX")
	}

	if engine == "pdflatex" {
		hints = append(hints, "xelatex handles Unicode text better (--pdf-engine xelatex)")
	}

	hints = append(hints, "or try DOCX instead (--to docx)")
	return formatHints(hints)
}

// ForPandocNotFound returns hints for a missing pandoc executable.
// Suggests the override only when it is not already set.
func ForPandocNotFound() string {
	hints := []string{"install pandoc from https://pandoc.org/installing.html"}
	if os.Getenv("MDCONV_PANDOC") == "" {
		hints = append(hints, "or point --pandoc / MDCONV_PANDOC at the binary")
	}
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("LaTeX can be slow on large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mdconv/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-mdconv") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForReferenceDoc returns hints for an unusable reference document.
func ForReferenceDoc() string {
	return format("create one with: pandoc -o custom-reference.docx --print-default-data-file reference.docx")
}

// ForMainFont returns a hint when a font family is set for an engine that
// ignores it. Returns "" when the engine honors the font.
func ForMainFont(engine string) string {
	if engine == "xelatex" || engine == "lualatex" {
		return ""
	}
	return format("font family only applies to xelatex and lualatex")
}

// ForChoices lists the accepted values for an enumerated option.
func ForChoices(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
