package server

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-mdconv"
	"github.com/alnah/go-mdconv/internal/preview"
)

// Form errors. All of them map to 400 Bad Request.
var (
	errBadRequest  = errors.New("bad request")
	errMissingFile = fmt.Errorf("%w: no Markdown file uploaded (field \"file\")", errBadRequest)
	errNotUTF8     = fmt.Errorf("%w: Markdown must be UTF-8 text", errBadRequest)
)

// multipartMemory is kept in memory while parsing; larger parts spill to
// temporary files that net/http removes.
const multipartMemory = 8 << 20

// withLibraryDefaults fills zero fields with the library defaults.
func withLibraryDefaults(d Defaults) Defaults {
	d.Format = cmp.Or(d.Format, string(mdconv.FormatDOCX))
	d.TOCDepth = cmp.Or(d.TOCDepth, mdconv.DefaultTOCDepth)
	d.HighlightStyle = cmp.Or(d.HighlightStyle, mdconv.DefaultHighlightStyle)
	d.DPI = cmp.Or(d.DPI, mdconv.DefaultDPI)
	d.DocxFont = cmp.Or(d.DocxFont, mdconv.DefaultDocxFont)
	d.Engine = cmp.Or(d.Engine, mdconv.DefaultEngine)
	d.PaperSize = cmp.Or(d.PaperSize, mdconv.DefaultPaperSize)
	d.FontSize = cmp.Or(d.FontSize, mdconv.DefaultFontSize)
	d.DocumentClass = cmp.Or(d.DocumentClass, mdconv.DefaultDocumentClass)
	d.Margin = cmp.Or(d.Margin, mdconv.DefaultMargin)
	d.LineStretch = cmp.Or(d.LineStretch, mdconv.DefaultLineStretch)
	return d
}

// parseConvertForm builds a conversion input from the multipart form.
// Missing fields take the server defaults; unchecked checkboxes are off.
// Value ranges are left to the converter's validation.
func (s *Server) parseConvertForm(r *http.Request) (mdconv.Input, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return mdconv.Input{}, formError(err)
	}

	markdown, name, err := readUpload(r, "file")
	if err != nil {
		return mdconv.Input{}, err
	}
	if markdown == nil {
		return mdconv.Input{}, errMissingFile
	}
	if !utf8.Valid(markdown) {
		return mdconv.Input{}, errNotUTF8
	}

	d := s.cfg.Defaults
	format, err := mdconv.ParseFormat(or(r.FormValue("format"), d.Format))
	if err != nil {
		return mdconv.Input{}, err
	}

	p := fieldParser{r: r}
	rc := mdconv.RenderConfig{
		TOC:            isChecked(r.FormValue("toc")),
		TOCDepth:       p.int("toc_depth", d.TOCDepth),
		NumberSections: isChecked(r.FormValue("number_sections")),
		HighlightStyle: or(r.FormValue("highlight_style"), d.HighlightStyle),
	}

	switch format {
	case mdconv.FormatDOCX:
		ref, _, err := readUpload(r, "reference_doc")
		if err != nil {
			return mdconv.Input{}, err
		}
		rc.Docx = &mdconv.DocxOptions{
			ReferenceDocData: ref,
			DPI:              p.int("dpi", d.DPI),
			Font:             or(r.FormValue("docx_font"), d.DocxFont),
		}
	case mdconv.FormatPDF:
		rc.PDF = &mdconv.PDFOptions{
			Engine:        or(r.FormValue("pdf_engine"), d.Engine),
			PaperSize:     or(r.FormValue("paper_size"), d.PaperSize),
			FontSize:      or(r.FormValue("font_size"), d.FontSize),
			DocumentClass: or(r.FormValue("document_class"), d.DocumentClass),
			Margin:        or(r.FormValue("margin"), d.Margin),
			MarginTop:     strings.TrimSpace(r.FormValue("margin_top")),
			MarginBottom:  strings.TrimSpace(r.FormValue("margin_bottom")),
			MarginLeft:    strings.TrimSpace(r.FormValue("margin_left")),
			MarginRight:   strings.TrimSpace(r.FormValue("margin_right")),
			LineStretch:   p.float("line_stretch", d.LineStretch),
			FontFamily:    or(r.FormValue("font_family"), d.FontFamily),
		}
	}
	if p.err != nil {
		return mdconv.Input{}, p.err
	}

	return mdconv.Input{
		Markdown: string(markdown),
		Format:   format,
		Config:   rc,
		Name:     name,
	}, nil
}

// parsePreviewForm reads the Markdown and the options the preview honors.
func (s *Server) parsePreviewForm(r *http.Request) (string, preview.Options, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", preview.Options{}, formError(err)
	}
	markdown, _, err := readUpload(r, "file")
	if err != nil {
		return "", preview.Options{}, err
	}
	if markdown == nil {
		return "", preview.Options{}, errMissingFile
	}
	if !utf8.Valid(markdown) {
		return "", preview.Options{}, errNotUTF8
	}
	return string(markdown), preview.Options{
		HighlightStyle: or(r.FormValue("highlight_style"), s.cfg.Defaults.HighlightStyle),
		NumberSections: isChecked(r.FormValue("number_sections")),
		TOC:            isChecked(r.FormValue("toc")),
	}, nil
}

// readUpload returns the content and client file name of an uploaded file.
// A missing or empty file yields nil content and no error.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", formError(err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, "", nil
	}
	return data, hdr.Filename, nil
}

// formError keeps size errors intact and marks everything else as a
// malformed request.
func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	// Some multipart paths flatten the reader error into text.
	if errors.Is(err, multipart.ErrMessageTooLarge) || strings.Contains(err.Error(), "request body too large") {
		return &http.MaxBytesError{}
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// fieldParser parses numeric fields and keeps the first error.
type fieldParser struct {
	r   *http.Request
	err error
}

func (p *fieldParser) int(field string, def int) int {
	v := strings.TrimSpace(p.r.FormValue(field))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(field, v)
		return def
	}
	return n
}

func (p *fieldParser) float(field string, def float64) float64 {
	v := strings.TrimSpace(p.r.FormValue(field))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(field, v)
		return def
	}
	return f
}

func (p *fieldParser) fail(field, value string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s: %q is not a number", errBadRequest, field, value)
	}
}

// isChecked interprets checkbox and query values.
func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}

// or returns the trimmed value, or def when it is empty.
func or(value, def string) string {
	return cmp.Or(strings.TrimSpace(value), def)
}
