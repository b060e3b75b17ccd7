package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alnah/go-mdconv"
	"github.com/alnah/go-mdconv/internal/config"
	"github.com/alnah/go-mdconv/internal/hints"
)

// conversionParams groups parameters shared across batch conversion.
type conversionParams struct {
	format mdconv.Format
	render mdconv.RenderConfig
	keepMD bool
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stdout)
	if err != nil {
		return err
	}

	// Validate worker count early
	if err := validateWorkers(flags.pandoc.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadEffectiveConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	inputPath, output, err := resolveInputOutput(positional, flags.output, cfg)
	if err != nil {
		return err
	}

	format, err := resolveFormat(flags.to, output, cfg.Format)
	if err != nil {
		return err
	}

	files, err := discoverFiles(inputPath, output, format)
	if err != nil {
		return err
	}

	render := buildRenderConfig(cfg, format)
	if err := render.Validate(); err != nil {
		return err
	}
	if !flags.common.quiet {
		warnIgnoredOptions(render, env)
	}

	opts := converterOptions(cfg, flags.strict, flags.common.verbose, env)
	pool := mdconv.NewConverterPool(mdconv.ResolvePoolSize(cfg.Workers), opts...)
	defer func() { _ = pool.Close() }()

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", pool.Size())
	}

	params := &conversionParams{
		format: format,
		render: render,
		keepMD: flags.keepMD,
	}

	results := convertBatch(ctx, pool, files, params)

	summary := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if summary.Failed > 0 {
		return newBatchError(results, summary)
	}

	return nil
}

// resolveInputOutput reads "<input> [output]" and the -o flag. The output
// falls back to the configured output directory.
func resolveInputOutput(positional []string, outputFlag string, cfg *config.Config) (string, string, error) {
	switch len(positional) {
	case 0:
		return "", "", fmt.Errorf("%w: no input specified", ErrUsage)
	case 1, 2:
	default:
		return "", "", fmt.Errorf("%w: expected <input> [output], got %d arguments", ErrUsage, len(positional))
	}

	output := outputFlag
	if len(positional) == 2 {
		if outputFlag != "" && outputFlag != positional[1] {
			return "", "", fmt.Errorf("%w: output given both as argument (%s) and -o (%s)", ErrUsage, positional[1], outputFlag)
		}
		output = positional[1]
	}
	if output == "" {
		output = cfg.Output.Dir
	}

	return positional[0], output, nil
}

// mergeFlags merges CLI flags into config. Flags given on the command line
// override config values, including explicit zero values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	set := flags.set

	if set["to"] {
		cfg.Format = flags.to
	}

	// Render flags
	if set["toc"] {
		cfg.TOC.Enabled = flags.render.toc
	}
	if set["toc-depth"] {
		cfg.TOC.Depth = flags.render.tocDepth
	}
	if set["number-sections"] {
		cfg.NumberSections = flags.render.numberSections
	}
	if set["highlight-style"] {
		cfg.HighlightStyle = flags.render.highlightStyle
	}

	// DOCX flags
	if set["reference-doc"] {
		cfg.Docx.ReferenceDoc = flags.docx.referenceDoc
	}
	if set["dpi"] {
		cfg.Docx.DPI = flags.docx.dpi
	}
	if set["docx-font"] {
		cfg.Docx.Font = flags.docx.font
	}

	// PDF flags
	mergeString(set, "pdf-engine", flags.pdf.engine, &cfg.PDF.Engine)
	mergeString(set, "paper-size", flags.pdf.paperSize, &cfg.PDF.PaperSize)
	mergeString(set, "font-size", flags.pdf.fontSize, &cfg.PDF.FontSize)
	mergeString(set, "document-class", flags.pdf.documentClass, &cfg.PDF.DocumentClass)
	mergeString(set, "margin", flags.pdf.margin, &cfg.PDF.Margin)
	mergeString(set, "margin-top", flags.pdf.marginTop, &cfg.PDF.MarginTop)
	mergeString(set, "margin-bottom", flags.pdf.marginBottom, &cfg.PDF.MarginBottom)
	mergeString(set, "margin-left", flags.pdf.marginLeft, &cfg.PDF.MarginLeft)
	mergeString(set, "margin-right", flags.pdf.marginRight, &cfg.PDF.MarginRight)
	mergeString(set, "font-family", flags.pdf.fontFamily, &cfg.PDF.FontFamily)
	if set["line-stretch"] {
		cfg.PDF.LineStretch = flags.pdf.lineStretch
	}

	mergePandocFlags(set, flags.pandoc, cfg)
}

// mergePandocFlags applies the subprocess flags shared by convert and serve.
func mergePandocFlags(set map[string]bool, f pandocFlags, cfg *config.Config) {
	mergeString(set, "pandoc", f.path, &cfg.Pandoc.Path)
	mergeString(set, "timeout", f.timeout, &cfg.Pandoc.Timeout)
	if set["workers"] {
		cfg.Workers = f.workers
	}
}

func mergeString(set map[string]bool, name, value string, dst *string) {
	if set[name] {
		*dst = value
	}
}

// buildRenderConfig maps the effective config to library options for one
// output format. Options of the other format are left nil.
func buildRenderConfig(cfg *config.Config, format mdconv.Format) mdconv.RenderConfig {
	rc := mdconv.RenderConfig{
		TOC:            cfg.TOC.Enabled,
		TOCDepth:       cfg.TOC.Depth,
		NumberSections: cfg.NumberSections,
		HighlightStyle: cfg.HighlightStyle,
	}

	if format == mdconv.FormatPDF {
		rc.PDF = &mdconv.PDFOptions{
			Engine:        cfg.PDF.Engine,
			PaperSize:     cfg.PDF.PaperSize,
			FontSize:      cfg.PDF.FontSize,
			DocumentClass: cfg.PDF.DocumentClass,
			Margin:        cfg.PDF.Margin,
			MarginTop:     cfg.PDF.MarginTop,
			MarginBottom:  cfg.PDF.MarginBottom,
			MarginLeft:    cfg.PDF.MarginLeft,
			MarginRight:   cfg.PDF.MarginRight,
			LineStretch:   cfg.PDF.LineStretch,
			FontFamily:    cfg.PDF.FontFamily,
		}
		return rc
	}

	rc.Docx = &mdconv.DocxOptions{
		ReferenceDoc: cfg.Docx.ReferenceDoc,
		DPI:          cfg.Docx.DPI,
		Font:         cfg.Docx.Font,
	}
	return rc
}

// warnIgnoredOptions reports options the chosen engine will not honor.
func warnIgnoredOptions(rc mdconv.RenderConfig, env *Environment) {
	if rc.PDF == nil || rc.PDF.FontFamily == "" {
		return
	}
	engine := rc.PDF.Engine
	if engine == "" {
		engine = mdconv.DefaultEngine
	}
	if hint := hints.ForMainFont(engine); hint != "" {
		fmt.Fprintf(env.Stderr, "warning: font family %q ignored by %s%s\n", rc.PDF.FontFamily, engine, hint)
	}
}

// converterOptions builds the library options from the effective config.
func converterOptions(cfg *config.Config, strict, verbose bool, env *Environment) []mdconv.Option {
	opts := []mdconv.Option{mdconv.WithPandocPath(cfg.Pandoc.Path)}

	// Validated by cfg.Validate
	if d, _ := cfg.TimeoutDuration(); d > 0 {
		opts = append(opts, mdconv.WithTimeout(d))
	}
	if strict {
		opts = append(opts, mdconv.WithStrictPostProcess())
	}
	if verbose {
		opts = append(opts, mdconv.WithLogger(newLogger(env.Stderr, slog.LevelDebug)))
	}

	return env.converterOptions(opts...)
}
