package mdconv

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrInvalidFormat = errors.New("invalid output format")

	// Render config validation errors.
	ErrInvalidTOCDepth       = errors.New("invalid TOC depth")
	ErrInvalidHighlightStyle = errors.New("invalid highlight style")
	ErrInvalidEngine         = errors.New("invalid PDF engine")
	ErrInvalidPaperSize      = errors.New("invalid paper size")
	ErrInvalidFontSize       = errors.New("invalid font size")
	ErrInvalidDocumentClass  = errors.New("invalid document class")
	ErrInvalidDPI            = errors.New("invalid DPI")
	ErrInvalidLineStretch    = errors.New("invalid line stretch")
	ErrReferenceDocNotFound  = errors.New("reference document not found")

	// Converter errors.
	ErrConverterNotFound = errors.New("pandoc not found")
	ErrConversionFailed  = errors.New("conversion failed")
	ErrPostProcess       = errors.New("docx post-processing failed")
	ErrPoolClosed        = errors.New("converter pool closed")
)

// latexMarkers are the substrings that point a PDF failure at the TeX side.
var latexMarkers = []string{"latex", "pdflatex", "xelatex", "lualatex"}

// ConversionError reports a pandoc run that did not produce a document.
// Stderr holds pandoc's diagnostics verbatim.
// It matches ErrConversionFailed with errors.Is.
type ConversionError struct {
	Format Format
	Engine string // PDF only
	Stderr string
	Err    error
}

func (e *ConversionError) Error() string {
	target := string(e.Format)
	if e.Engine != "" {
		target += " via " + e.Engine
	}
	return fmt.Sprintf("%v (%s): %v", ErrConversionFailed, target, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Is reports ErrConversionFailed as a match.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversionFailed
}

// LikelyLaTeXProblem reports whether a PDF failure mentions a LaTeX engine,
// which usually means a missing or incomplete TeX installation.
func (e *ConversionError) LikelyLaTeXProblem() bool {
	if e.Format != FormatPDF {
		return false
	}
	text := strings.ToLower(e.Stderr)
	if e.Err != nil {
		text += " " + strings.ToLower(e.Err.Error())
	}
	for _, m := range latexMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
