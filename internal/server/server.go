// Package server serves the browser form: upload a Markdown file, pick the
// output format and options, download the converted document.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-mdconv"
	"github.com/alnah/go-mdconv/internal/assets"
	"github.com/alnah/go-mdconv/internal/hints"
	"github.com/alnah/go-mdconv/internal/preview"
)

// DefaultMaxUploadBytes limits a request body when Config leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// warningHeader carries a non-fatal problem with a returned document.
const warningHeader = "X-Mdconv-Warning"

// Converter runs conversions. *mdconv.ConverterPool satisfies it.
type Converter interface {
	Convert(ctx context.Context, input mdconv.Input) (*mdconv.ConvertResult, error)
}

// Previewer renders Markdown to HTML. *preview.Renderer satisfies it.
type Previewer interface {
	Render(ctx context.Context, markdown string, opts preview.Options) (*preview.Result, error)
}

// Compile-time interface checks.
var (
	_ Converter = (*mdconv.ConverterPool)(nil)
	_ Converter = (*mdconv.Converter)(nil)
	_ Previewer = (*preview.Renderer)(nil)
)

// Defaults pre-fills the form and fills fields a request leaves empty.
type Defaults struct {
	Format         string
	TOC            bool
	TOCDepth       int
	NumberSections bool
	HighlightStyle string
	DPI            int
	DocxFont       string
	Engine         string
	PaperSize      string
	FontSize       string
	DocumentClass  string
	Margin         string
	LineStretch    float64
	FontFamily     string
}

// Config configures a Server.
type Config struct {
	MaxUploadBytes int64              // 0 = DefaultMaxUploadBytes
	Defaults       Defaults           // Zero fields fall back to the library defaults
	Assets         assets.AssetLoader // nil = embedded assets
	Logger         *slog.Logger       // nil = discard
	Version        string             // Shown in the page footer and /healthz

	// Check reports whether conversions can run (e.g. pandoc is installed).
	// /healthz answers 503 when it fails. nil = always healthy.
	Check func(ctx context.Context) error
}

// formPage is the data of the form template.
type formPage struct {
	FormCSS         template.CSS
	PreviewCSS      template.CSS
	Defaults        Defaults
	MaxUploadMB     int64
	Version         string
	HighlightStyles []string
	PDFEngines      []string
	PaperSizes      []string
	FontSizes       []string
	DocumentClasses []string
	FontFamilies    []string
}

// Server handles the form, conversion, preview and health endpoints.
type Server struct {
	conv Converter
	prev Previewer
	cfg  Config
	log  *slog.Logger
	page []byte // rendered once, the form has no per-request state
}

// New creates a Server. Returns error if the form assets cannot be loaded
// or rendered.
func New(conv Converter, prev Previewer, cfg Config) (*Server, error) {
	if conv == nil {
		return nil, errors.New("server: converter required")
	}
	if prev == nil {
		prev = preview.New()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Assets == nil {
		cfg.Assets = assets.NewEmbeddedLoader()
	}
	cfg.Defaults = withLibraryDefaults(cfg.Defaults)

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Server{conv: conv, prev: prev, cfg: cfg, log: log}
	page, err := s.renderForm()
	if err != nil {
		return nil, err
	}
	s.page = page
	return s, nil
}

func (s *Server) renderForm() ([]byte, error) {
	bundle, err := assets.LoadBundle(s.cfg.Assets)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	tmpl, err := template.New(assets.FormTemplate).Parse(bundle.FormTemplate)
	if err != nil {
		return nil, fmt.Errorf("server: parsing form template: %w", err)
	}

	data := formPage{
		FormCSS:         template.CSS(bundle.FormCSS),    // #nosec G203 -- trusted asset
		PreviewCSS:      template.CSS(bundle.PreviewCSS), // #nosec G203 -- trusted asset
		Defaults:        s.cfg.Defaults,
		MaxUploadMB:     s.cfg.MaxUploadBytes >> 20,
		Version:         s.cfg.Version,
		HighlightStyles: mdconv.HighlightStyles(),
		PDFEngines:      mdconv.PDFEngines(),
		PaperSizes:      mdconv.PaperSizes(),
		FontSizes:       mdconv.FontSizes(),
		DocumentClasses: mdconv.DocumentClasses(),
		FontFamilies:    mdconv.FontFamilies(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("server: rendering form: %w", err)
	}
	return buf.Bytes(), nil
}

// Routes returns the HTTP handler with request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("POST /preview", s.handlePreview)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return logMiddleware(s.log, mux)
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.page)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	input, err := s.parseConvertForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.conv.Convert(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if result.PostProcessErr != nil {
		s.log.Warn("returning unpatched document", "file", result.Filename, "error", result.PostProcessErr)
		w.Header().Set(warningHeader, result.PostProcessErr.Error())
	}
	w.Header().Set("Content-Type", result.Format.MIMEType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(result.Data)
}

// handlePreview accepts the multipart form, or a raw Markdown body with
// options in the query string.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var markdown string
	var opts preview.Options
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		markdown, opts, err = s.parsePreviewForm(r)
	} else {
		markdown, opts, err = s.parsePreviewBody(r)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.prev.Render(r.Context(), markdown, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, res.Fragment())
}

func (s *Server) parsePreviewBody(r *http.Request) (string, preview.Options, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", preview.Options{}, err
	}
	if !utf8.Valid(data) {
		return "", preview.Options{}, errNotUTF8
	}
	q := r.URL.Query()
	return string(data), preview.Options{
		HighlightStyle: or(q.Get("highlight_style"), s.cfg.Defaults.HighlightStyle),
		NumberSections: isChecked(q.Get("number_sections")),
		TOC:            isChecked(q.Get("toc")),
	}, nil
}

type health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := health{Status: "ok", Version: s.cfg.Version}
	status := http.StatusOK
	if s.cfg.Check != nil {
		if err := s.cfg.Check(r.Context()); err != nil {
			h.Status, h.Error = "unavailable", err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, h)
}

// writeError maps an error to a status code and a plain-text message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()

	var convErr *mdconv.ConversionError
	if errors.As(err, &convErr) {
		if stderr := strings.TrimSpace(convErr.Stderr); stderr != "" && !strings.Contains(msg, stderr) {
			msg += "\n\n" + stderr
		}
		if convErr.LikelyLaTeXProblem() {
			msg += hints.ForLaTeX(convErr.Engine)
		}
	}
	if errors.Is(err, mdconv.ErrConverterNotFound) {
		msg += hints.ForPandocNotFound()
	}

	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.log.Log(r.Context(), level, "request failed", "path", r.URL.Path, "status", status, "error", err)

	http.Error(w, msg, status)
}

// statusFor classifies errors; unknown errors are internal.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, mdconv.ErrEmptyMarkdown),
		errors.Is(err, mdconv.ErrInvalidFormat),
		errors.Is(err, mdconv.ErrInvalidTOCDepth),
		errors.Is(err, mdconv.ErrInvalidHighlightStyle),
		errors.Is(err, mdconv.ErrInvalidEngine),
		errors.Is(err, mdconv.ErrInvalidPaperSize),
		errors.Is(err, mdconv.ErrInvalidFontSize),
		errors.Is(err, mdconv.ErrInvalidDocumentClass),
		errors.Is(err, mdconv.ErrInvalidDPI),
		errors.Is(err, mdconv.ErrInvalidLineStretch),
		errors.Is(err, mdconv.ErrReferenceDocNotFound):
		return http.StatusBadRequest
	case errors.Is(err, mdconv.ErrConversionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, mdconv.ErrConverterNotFound),
		errors.Is(err, mdconv.ErrPoolClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
