package mdconv

// Notes:
// - Validate methods are nil-safe: nil options mean "use defaults".
// - Enumeration accessors return copies; mutating one must not leak.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// TestFormat
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "docx", want: FormatDOCX},
		{in: "PDF", want: FormatPDF},
		{in: ".docx", want: FormatDOCX},
		{in: " pdf ", want: FormatPDF},
		{in: "", wantErr: true},
		{in: "odt", wantErr: true},
		{in: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidFormat", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestFormat_ExtensionAndMIME(t *testing.T) {
	t.Parallel()

	if FormatDOCX.Extension() != ".docx" || FormatPDF.Extension() != ".pdf" {
		t.Error("unexpected extensions")
	}
	if FormatPDF.MIMEType() != "application/pdf" {
		t.Errorf("PDF MIME = %q", FormatPDF.MIMEType())
	}
	if FormatDOCX.MIMEType() != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Errorf("DOCX MIME = %q", FormatDOCX.MIMEType())
	}
	if Format("odt").MIMEType() != "application/octet-stream" {
		t.Error("unknown format should fall back to octet-stream")
	}
}

// ---------------------------------------------------------------------------
// TestEnumerations
// ---------------------------------------------------------------------------

func TestEnumerations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		get  func() []string
		want []string
	}{
		{"highlight styles", HighlightStyles, []string{"pygments", "tango", "espresso", "zenburn", "kate", "monochrome", "breezedark", "haddock"}},
		{"pdf engines", PDFEngines, []string{"xelatex", "pdflatex", "lualatex"}},
		{"paper sizes", PaperSizes, []string{"a4", "letter", "legal"}},
		{"font sizes", FontSizes, []string{"10pt", "11pt", "12pt"}},
		{"document classes", DocumentClasses, []string{"article", "report", "book"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.get()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
			got[0] = "mutated"
			if tt.get()[0] == "mutated" {
				t.Error("accessor returned shared slice")
			}
		})
	}

	if fams := FontFamilies(); len(fams) != 10 || fams[0] != "Latin Modern Roman" {
		t.Errorf("FontFamilies() = %v", fams)
	}
}

// ---------------------------------------------------------------------------
// TestRenderConfig_Validate
// ---------------------------------------------------------------------------

func TestRenderConfig_Validate(t *testing.T) {
	t.Parallel()

	refDoc := filepath.Join(t.TempDir(), "ref.docx")
	if err := os.WriteFile(refDoc, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     *RenderConfig
		wantErr error
	}{
		{name: "nil is valid", cfg: nil},
		{name: "zero value is valid", cfg: &RenderConfig{}},
		{name: "toc depth bounds", cfg: &RenderConfig{TOCDepth: 6}},
		{name: "toc depth too high", cfg: &RenderConfig{TOCDepth: 7}, wantErr: ErrInvalidTOCDepth},
		{name: "toc depth negative", cfg: &RenderConfig{TOCDepth: -1}, wantErr: ErrInvalidTOCDepth},
		{name: "known highlight style", cfg: &RenderConfig{HighlightStyle: "zenburn"}},
		{name: "unknown highlight style", cfg: &RenderConfig{HighlightStyle: "monokai"}, wantErr: ErrInvalidHighlightStyle},
		{name: "dpi lower bound", cfg: &RenderConfig{Docx: &DocxOptions{DPI: 72}}},
		{name: "dpi too low", cfg: &RenderConfig{Docx: &DocxOptions{DPI: 71}}, wantErr: ErrInvalidDPI},
		{name: "dpi too high", cfg: &RenderConfig{Docx: &DocxOptions{DPI: 301}}, wantErr: ErrInvalidDPI},
		{name: "reference doc exists", cfg: &RenderConfig{Docx: &DocxOptions{ReferenceDoc: refDoc}}},
		{
			name:    "reference doc missing",
			cfg:     &RenderConfig{Docx: &DocxOptions{ReferenceDoc: "/nope/ref.docx"}},
			wantErr: ErrReferenceDocNotFound,
		},
		{
			name: "uploaded reference doc ignores path",
			cfg:  &RenderConfig{Docx: &DocxOptions{ReferenceDoc: "/nope/ref.docx", ReferenceDocData: []byte("x")}},
		},
		{name: "valid pdf", cfg: &RenderConfig{PDF: &PDFOptions{Engine: "lualatex", PaperSize: "a4", FontSize: "12pt", DocumentClass: "book"}}},
		{name: "bad engine", cfg: &RenderConfig{PDF: &PDFOptions{Engine: "context"}}, wantErr: ErrInvalidEngine},
		{name: "bad paper", cfg: &RenderConfig{PDF: &PDFOptions{PaperSize: "a5"}}, wantErr: ErrInvalidPaperSize},
		{name: "bad font size", cfg: &RenderConfig{PDF: &PDFOptions{FontSize: "14pt"}}, wantErr: ErrInvalidFontSize},
		{name: "bad class", cfg: &RenderConfig{PDF: &PDFOptions{DocumentClass: "memoir"}}, wantErr: ErrInvalidDocumentClass},
		{name: "line stretch bounds", cfg: &RenderConfig{PDF: &PDFOptions{LineStretch: 3.0}}},
		{name: "line stretch too small", cfg: &RenderConfig{PDF: &PDFOptions{LineStretch: 0.4}}, wantErr: ErrInvalidLineStretch},
		{name: "any font family", cfg: &RenderConfig{PDF: &PDFOptions{FontFamily: "Comic Neue"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMarginSpec
// ---------------------------------------------------------------------------

func TestPDFOptions_MarginSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts *PDFOptions
		want string
	}{
		{name: "nil uses default", opts: nil, want: "margin=1in"},
		{name: "empty uses default", opts: &PDFOptions{}, want: "margin=1in"},
		{name: "uniform", opts: &PDFOptions{Margin: "2cm"}, want: "margin=2cm"},
		{
			name: "per-side wins",
			opts: &PDFOptions{Margin: "2cm", MarginTop: "1in", MarginLeft: "3cm"},
			want: "top=1in,left=3cm",
		},
		{
			name: "all sides",
			opts: &PDFOptions{MarginTop: "1", MarginBottom: "2", MarginLeft: "3", MarginRight: "4"},
			want: "top=1,bottom=2,left=3,right=4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.opts.MarginSpec(); got != tt.want {
				t.Errorf("MarginSpec() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestOutputFilename
// ---------------------------------------------------------------------------

func TestOutputFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{"report.md", FormatDOCX, "report.docx"},
		{"docs/guide.markdown", FormatPDF, "guide.pdf"},
		{`C:\notes\todo.md`, FormatPDF, "todo.pdf"},
		{"README", FormatDOCX, "README.docx"},
		{"", FormatPDF, "document.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := outputFilename(tt.name, tt.format); got != tt.want {
				t.Errorf("outputFilename(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConversionError
// ---------------------------------------------------------------------------

func TestConversionError(t *testing.T) {
	t.Parallel()

	cause := errors.New("exit status 43")
	err := &ConversionError{Format: FormatPDF, Engine: "xelatex", Stderr: "boom", Err: cause}

	if !errors.Is(err, ErrConversionFailed) {
		t.Error("ConversionError should match ErrConversionFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("ConversionError should unwrap to its cause")
	}
	if got, want := err.Error(), "conversion failed (pdf via xelatex): exit status 43"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	docx := &ConversionError{Format: FormatDOCX, Err: cause}
	if got, want := docx.Error(), "conversion failed (docx): exit status 43"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
