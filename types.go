package mdconv

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/go-mdconv/internal/fileutil"
	"github.com/alnah/go-mdconv/internal/pandoc"
)

// Format is the output document type.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "docx" or "pdf" in any case, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q (must be docx or pdf)", ErrInvalidFormat, s)
	}
	return f, nil
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatDOCX || f == FormatPDF
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// MIMEType returns the media type used for downloads.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// Defaults applied to zero-valued RenderConfig fields.
const (
	DefaultTOCDepth       = 3
	DefaultHighlightStyle = "pygments"
	DefaultDPI            = 96
	DefaultDocxFont       = "Latin Modern Roman"
	DefaultEngine         = "pdflatex"
	DefaultPaperSize      = "letter"
	DefaultFontSize       = "11pt"
	DefaultDocumentClass  = "article"
	DefaultMargin         = "1in"
	DefaultLineStretch    = 1.15
)

// Bounds for numeric options.
const (
	MinTOCDepth    = 1
	MaxTOCDepth    = 6
	MinDPI         = 72
	MaxDPI         = 300
	MinLineStretch = 0.5
	MaxLineStretch = 3.0
)

// Supported values. Exposed through the accessor functions below, which
// return copies.
var (
	highlightStyles = []string{"pygments", "tango", "espresso", "zenburn", "kate", "monochrome", "breezedark", "haddock"}
	pdfEngines      = []string{"xelatex", "pdflatex", "lualatex"}
	paperSizes      = []string{"a4", "letter", "legal"}
	fontSizes       = []string{"10pt", "11pt", "12pt"}
	documentClasses = []string{"article", "report", "book"}
	fontFamilies    = []string{
		"Latin Modern Roman", "Times New Roman", "Arial", "Helvetica", "Georgia",
		"Palatino", "DejaVu Serif", "DejaVu Sans", "Liberation Serif", "Liberation Sans",
	}
)

// HighlightStyles returns the supported code highlighting themes.
func HighlightStyles() []string { return slices.Clone(highlightStyles) }

// PDFEngines returns the supported LaTeX engines.
func PDFEngines() []string { return slices.Clone(pdfEngines) }

// PaperSizes returns the supported paper sizes.
func PaperSizes() []string { return slices.Clone(paperSizes) }

// FontSizes returns the supported base font sizes.
func FontSizes() []string { return slices.Clone(fontSizes) }

// DocumentClasses returns the supported LaTeX document classes.
func DocumentClasses() []string { return slices.Clone(documentClasses) }

// FontFamilies returns the suggested font families. Only xelatex and
// lualatex honor a font family; any installed font name is accepted.
func FontFamilies() []string { return slices.Clone(fontFamilies) }

// RenderConfig holds the formatting options for one conversion.
// Zero values select the defaults above.
type RenderConfig struct {
	TOC            bool
	TOCDepth       int // 1-6, 0 = DefaultTOCDepth
	NumberSections bool
	HighlightStyle string // "" = DefaultHighlightStyle

	Docx *DocxOptions // DOCX only, nil = defaults
	PDF  *PDFOptions  // PDF only, nil = defaults
}

// DocxOptions configures Word output.
type DocxOptions struct {
	ReferenceDoc     string // Path to a template .docx (optional)
	ReferenceDocData []byte // Uploaded template, wins over ReferenceDoc
	DPI              int    // 72-300, 0 = DefaultDPI
	Font             string // Substitute serif font, "" = DefaultDocxFont
}

// PDFOptions configures LaTeX output.
type PDFOptions struct {
	Engine        string // "" = DefaultEngine
	PaperSize     string // "" = DefaultPaperSize
	FontSize      string // "" = DefaultFontSize
	DocumentClass string // "" = DefaultDocumentClass

	// Margin applies to all sides unless any per-side value is set,
	// in which case only the per-side values are used.
	Margin       string // "" = DefaultMargin
	MarginTop    string
	MarginBottom string
	MarginLeft   string
	MarginRight  string

	LineStretch float64 // 0 = DefaultLineStretch
	FontFamily  string  // Ignored by pdflatex
}

// Validate checks that the options are usable.
// Returns nil if c is nil (nil means use defaults).
func (c *RenderConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.TOCDepth != 0 && (c.TOCDepth < MinTOCDepth || c.TOCDepth > MaxTOCDepth) {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTOCDepth, c.TOCDepth, MinTOCDepth, MaxTOCDepth)
	}
	if c.HighlightStyle != "" && !slices.Contains(highlightStyles, c.HighlightStyle) {
		return fmt.Errorf("%w: %q", ErrInvalidHighlightStyle, c.HighlightStyle)
	}
	if err := c.Docx.Validate(); err != nil {
		return err
	}
	return c.PDF.Validate()
}

// Validate checks DPI and the reference document.
// Returns nil if o is nil (nil means use defaults).
func (o *DocxOptions) Validate() error {
	if o == nil {
		return nil
	}
	if o.DPI != 0 && (o.DPI < MinDPI || o.DPI > MaxDPI) {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidDPI, o.DPI, MinDPI, MaxDPI)
	}
	if len(o.ReferenceDocData) == 0 && o.ReferenceDoc != "" && !fileutil.FileExists(o.ReferenceDoc) {
		return fmt.Errorf("%w: %s", ErrReferenceDocNotFound, o.ReferenceDoc)
	}
	return nil
}

// Validate checks the enumerated PDF options and the line stretch.
// Returns nil if o is nil (nil means use defaults).
func (o *PDFOptions) Validate() error {
	if o == nil {
		return nil
	}
	checks := []struct {
		value   string
		allowed []string
		err     error
	}{
		{o.Engine, pdfEngines, ErrInvalidEngine},
		{o.PaperSize, paperSizes, ErrInvalidPaperSize},
		{o.FontSize, fontSizes, ErrInvalidFontSize},
		{o.DocumentClass, documentClasses, ErrInvalidDocumentClass},
	}
	for _, c := range checks {
		if c.value != "" && !slices.Contains(c.allowed, c.value) {
			return fmt.Errorf("%w: %q (must be one of %s)", c.err, c.value, strings.Join(c.allowed, ", "))
		}
	}
	if o.LineStretch != 0 && (o.LineStretch < MinLineStretch || o.LineStretch > MaxLineStretch) {
		return fmt.Errorf("%w: %g (must be between %g and %g)", ErrInvalidLineStretch, o.LineStretch, MinLineStretch, MaxLineStretch)
	}
	return nil
}

// MarginSpec returns the geometry specification pandoc receives, e.g.
// "margin=1in" or "top=2cm,left=1cm". Per-side values win over Margin.
// Safe to call on a nil receiver.
func (o *PDFOptions) MarginSpec() string {
	return o.margins().Geometry()
}

func (o *PDFOptions) margins() pandoc.Margins {
	if o == nil {
		return pandoc.Margins{Uniform: DefaultMargin}
	}
	return pandoc.Margins{
		Uniform: cmp.Or(o.Margin, DefaultMargin),
		Top:     o.MarginTop,
		Bottom:  o.MarginBottom,
		Left:    o.MarginLeft,
		Right:   o.MarginRight,
	}
}

// Input contains conversion parameters.
// Convert takes it by value; the caller may reuse it afterwards.
type Input struct {
	Markdown string       // Markdown content (required)
	Format   Format       // FormatDOCX or FormatPDF (required)
	Config   RenderConfig // Formatting options
	Name     string       // Source name used for the output filename (optional)

	// BaseDir is the directory relative image paths in Markdown resolve
	// against, usually the source file's directory. Empty means the
	// process working directory.
	BaseDir string
}

// ConvertResult contains the output of a successful conversion.
// The caller owns it.
type ConvertResult struct {
	Data     []byte   // Final document bytes
	Filename string   // Suggested name: source stem + extension
	Format   Format   // Format of Data
	Markdown string   // Preprocessed Markdown handed to pandoc
	Args     []string // pandoc options used (without input/output paths)

	// PostProcessErr is set when DOCX post-processing failed and Data holds
	// the unpatched pandoc output instead. It wraps ErrPostProcess.
	PostProcessErr error
}

// defaultFilenameStem names outputs whose Input.Name is empty.
const defaultFilenameStem = "document"

// outputFilename derives the download name from the source name.
func outputFilename(name string, format Format) string {
	stem := ""
	if name != "" {
		stem = fileutil.Stem(strings.ReplaceAll(name, `\`, "/"))
	}
	if stem == "" || stem == "." || stem == "/" {
		stem = defaultFilenameStem
	}
	return stem + format.Extension()
}
