package mdconv

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-mdconv/internal/docx"
	"github.com/alnah/go-mdconv/internal/fileutil"
	"github.com/alnah/go-mdconv/internal/pandoc"
	"github.com/alnah/go-mdconv/internal/preprocess"
)

// Compile-time interface implementation checks.
var (
	_ preprocess.Preprocessor = (*preprocess.PandocPreprocessor)(nil)
	_ pandoc.CommandRunner    = (*pandoc.ExecRunner)(nil)
)

// Workspace file names.
const (
	workspacePrefix   = "mdconv-"
	inputFileName     = "input.md"
	referenceFileName = "reference.docx"
	outputFileStem    = "output"
)

// Converter orchestrates the Markdown to DOCX/PDF pipeline:
// preprocess, assemble pandoc options, run pandoc, post-process DOCX.
// A Converter holds no per-request state and is safe for concurrent use.
type Converter struct {
	cfg          converterConfig
	preprocessor preprocess.Preprocessor
	pandoc       *pandoc.Pandoc
	log          *slog.Logger
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithPandocPath).
// Returns error if the configured temp directory is unusable.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:          converterConfig{timeout: defaultTimeout},
		preprocessor: preprocess.PandocPreprocessor{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.tempDir != "" {
		info, err := os.Stat(c.cfg.tempDir)
		if err != nil {
			return nil, fmt.Errorf("temp dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("temp dir %s: not a directory", c.cfg.tempDir)
		}
	}

	c.pandoc = pandoc.New(c.cfg.pandocPath)
	if c.cfg.runner != nil {
		c.pandoc.Runner = c.cfg.runner
	}

	c.log = c.cfg.logger
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}

	return c, nil
}

// PandocVersion reports the version of the configured pandoc binary.
func (c *Converter) PandocVersion(ctx context.Context) (string, error) {
	v, err := c.pandoc.Version(ctx)
	if errors.Is(err, pandoc.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", ErrConverterNotFound, err)
	}
	return v, err
}

// Convert runs the full pipeline and returns the rendered document.
// The context is used for cancellation; the pandoc run is additionally
// bounded by the converter timeout. Temporary files are removed on every
// path. Recovers from internal panics to prevent crashes from propagating
// to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	rc := input.Config
	markdown := c.preprocessor.Preprocess(input.Markdown, rc.NumberSections, rc.TOC)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	ws, err := fileutil.NewWorkspace(c.cfg.tempDir, workspacePrefix)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Close() }()

	inPath, err := ws.WriteFile(inputFileName, []byte(markdown))
	if err != nil {
		return nil, err
	}
	outPath, err := ws.Path(outputFileStem + input.Format.Extension())
	if err != nil {
		return nil, err
	}

	req, err := c.buildRequest(input.Format, rc, ws)
	if err != nil {
		return nil, err
	}
	req.ResourcePath = resourcePath(input.BaseDir)
	args := pandoc.BuildArgs(req)

	data, err := c.runPandoc(ctx, req, inPath, outPath, args)
	if err != nil {
		return nil, err
	}

	res := &ConvertResult{
		Data:     data,
		Filename: outputFilename(input.Name, input.Format),
		Format:   input.Format,
		Markdown: markdown,
		Args:     args,
	}

	if input.Format == FormatDOCX {
		if err := c.postProcess(res, rc.Docx); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI and server inputs are validated earlier, at flag or form parsing.
// Both paths converge here, ensuring all inputs are validated before processing.
func (c *Converter) validateInput(input Input) error {
	if input.Markdown == "" {
		return ErrEmptyMarkdown
	}
	if !input.Format.Valid() {
		return fmt.Errorf("%w: %q (must be docx or pdf)", ErrInvalidFormat, input.Format)
	}
	return input.Config.Validate()
}

// buildRequest resolves defaults into a pandoc request. An uploaded
// reference document is materialized into the workspace.
func (c *Converter) buildRequest(format Format, rc RenderConfig, ws *fileutil.Workspace) (pandoc.Request, error) {
	req := pandoc.Request{
		TOC:            rc.TOC,
		TOCDepth:       cmp.Or(rc.TOCDepth, DefaultTOCDepth),
		NumberSections: rc.NumberSections,
		HighlightStyle: cmp.Or(rc.HighlightStyle, DefaultHighlightStyle),
	}

	if format == FormatPDF {
		req.Format = pandoc.FormatPDF
		o := rc.PDF
		if o == nil {
			o = &PDFOptions{}
		}
		req.Engine = cmp.Or(o.Engine, DefaultEngine)
		req.PaperSize = cmp.Or(o.PaperSize, DefaultPaperSize)
		req.FontSize = cmp.Or(o.FontSize, DefaultFontSize)
		req.DocumentClass = cmp.Or(o.DocumentClass, DefaultDocumentClass)
		req.Margins = o.margins()
		req.LineStretch = cmp.Or(o.LineStretch, DefaultLineStretch)
		req.FontFamily = o.FontFamily
		return req, nil
	}

	req.Format = pandoc.FormatDOCX
	req.DPI = DefaultDPI
	if o := rc.Docx; o != nil {
		req.DPI = cmp.Or(o.DPI, DefaultDPI)
		req.ReferenceDoc = o.ReferenceDoc
		if len(o.ReferenceDocData) > 0 {
			path, err := ws.WriteFile(referenceFileName, o.ReferenceDocData)
			if err != nil {
				return pandoc.Request{}, fmt.Errorf("storing reference document: %w", err)
			}
			req.ReferenceDoc = path
		}
	}
	return req, nil
}

// resourcePath makes dir absolute so pandoc finds images no matter which
// directory it runs in. Returns "" for an empty dir.
func resourcePath(dir string) string {
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// runPandoc invokes pandoc under the converter timeout and reads the output.
func (c *Converter) runPandoc(ctx context.Context, req pandoc.Request, inPath, outPath string, args []string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	c.log.Debug("running pandoc", "format", req.Format, "args", args)
	start := time.Now()

	err := c.pandoc.Convert(runCtx, inPath, outPath, req.Format, args)
	if err != nil {
		// Cancellation by the caller is not a conversion failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, c.conversionError(req, err)
	}
	c.log.Debug("pandoc finished", "format", req.Format, "elapsed", time.Since(start))

	data, err := os.ReadFile(outPath) // #nosec G304 -- path inside our workspace
	if err != nil {
		return nil, &ConversionError{
			Format: Format(req.Format),
			Engine: req.Engine,
			Err:    fmt.Errorf("pandoc produced no output: %w", err),
		}
	}
	return data, nil
}

func (c *Converter) conversionError(req pandoc.Request, err error) error {
	if errors.Is(err, pandoc.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrConverterNotFound, err)
	}

	ce := &ConversionError{Format: Format(req.Format), Engine: req.Engine, Err: err}
	if errors.Is(err, context.DeadlineExceeded) {
		ce.Err = fmt.Errorf("timed out after %s: %w", c.cfg.timeout, err)
	}
	var perr *pandoc.Error
	if errors.As(err, &perr) {
		ce.Stderr = perr.Stderr
	}
	return ce
}

// postProcess patches the DOCX styling in place. On failure the unpatched
// bytes are kept and the error recorded, unless strict mode is on.
func (c *Converter) postProcess(res *ConvertResult, o *DocxOptions) error {
	p := docx.Patcher{Font: DefaultDocxFont}
	if o != nil && o.Font != "" {
		p.Font = o.Font
	}

	patched, err := p.Patch(res.Data)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrPostProcess, err)
		if c.cfg.strictPostProcess {
			return wrapped
		}
		c.log.Warn("returning unpatched docx", "error", err)
		res.PostProcessErr = wrapped
		return nil
	}

	res.Data = patched
	return nil
}
