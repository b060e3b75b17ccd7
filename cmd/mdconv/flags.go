package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks command line errors: unknown flags, bad values, missing
// arguments.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds options that apply to both output formats.
type renderFlags struct {
	toc            bool
	tocDepth       int
	numberSections bool
	highlightStyle string
}

// docxFlags holds Word output flags.
type docxFlags struct {
	referenceDoc string
	dpi          int
	font         string
}

// pdfFlags holds LaTeX output flags.
type pdfFlags struct {
	engine        string
	paperSize     string
	fontSize      string
	documentClass string
	margin        string
	marginTop     string
	marginBottom  string
	marginLeft    string
	marginRight   string
	lineStretch   float64
	fontFamily    string
}

// pandocFlags locates and bounds the pandoc subprocess.
type pandocFlags struct {
	path    string
	timeout string
	workers int
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common commonFlags
	to     string
	output string
	strict bool
	keepMD bool
	render renderFlags
	docx   docxFlags
	pdf    pdfFlags
	pandoc pandocFlags

	// set records the flags given on the command line, so that an explicit
	// zero value (--toc=false) still overrides the config file.
	set map[string]bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	addr   string
	assets string
	strict bool
	pandoc pandocFlags
	set    map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show pandoc arguments and timing")
}

// addRenderFlags adds format-independent rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.BoolVar(&f.toc, "toc", false, "add a table of contents")
	fs.IntVar(&f.tocDepth, "toc-depth", 0, "TOC heading depth (1-6, default: 3)")
	fs.BoolVar(&f.numberSections, "number-sections", false, "number headings (strips manual numbering)")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "code highlighting theme")
}

// addDocxFlags adds Word output flags to a FlagSet.
func addDocxFlags(fs *flag.FlagSet, f *docxFlags) {
	fs.StringVar(&f.referenceDoc, "reference-doc", "", "template .docx for Word styles")
	fs.IntVar(&f.dpi, "dpi", 0, "image resolution (72-300, default: 96)")
	fs.StringVar(&f.font, "docx-font", "", "serif font written into the document")
}

// addPDFFlags adds LaTeX output flags to a FlagSet.
func addPDFFlags(fs *flag.FlagSet, f *pdfFlags) {
	fs.StringVar(&f.engine, "pdf-engine", "", "LaTeX engine: pdflatex, xelatex, lualatex")
	fs.StringVar(&f.paperSize, "paper-size", "", "paper size: letter, a4, legal")
	fs.StringVar(&f.fontSize, "font-size", "", "base font size: 10pt, 11pt, 12pt")
	fs.StringVar(&f.documentClass, "document-class", "", "LaTeX class: article, report, book")
	fs.StringVar(&f.margin, "margin", "", "margin on all sides (e.g. 1in, 2cm)")
	fs.StringVar(&f.marginTop, "margin-top", "", "top margin (overrides --margin)")
	fs.StringVar(&f.marginBottom, "margin-bottom", "", "bottom margin (overrides --margin)")
	fs.StringVar(&f.marginLeft, "margin-left", "", "left margin (overrides --margin)")
	fs.StringVar(&f.marginRight, "margin-right", "", "right margin (overrides --margin)")
	fs.Float64Var(&f.lineStretch, "line-stretch", 0, "line spacing factor (default: 1.15)")
	fs.StringVar(&f.fontFamily, "font-family", "", "main font (xelatex and lualatex only)")
}

// addPandocFlags adds subprocess flags to a FlagSet.
func addPandocFlags(fs *flag.FlagSet, f *pandocFlags) {
	fs.StringVar(&f.path, "pandoc", "", "pandoc executable name or path")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g. 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel conversions (0 = auto)")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage to w on --help.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseWith parses args and records which flags were set.
func parseWith(fs *flag.FlagSet, args []string) (map[string]bool, error) {
	if err := fs.Parse(args); err != nil {
		// pflag has already printed the usage.
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set, nil
}

// convertFlagSet registers every convert flag into f. Completion scripts
// are generated from the same set.
func convertFlagSet(f *convertFlags, w io.Writer) *flag.FlagSet {
	fs := newFlagSet("convert", w, printConvertUsage)

	// I/O flags
	fs.StringVar(&f.to, "to", "", "output format: docx, pdf")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.BoolVar(&f.strict, "strict", false, "fail when DOCX post-processing fails")
	fs.BoolVar(&f.keepMD, "keep-md", false, "write the preprocessed Markdown next to the output")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addDocxFlags(fs, &f.docx)
	addPDFFlags(fs, &f.pdf)
	addPandocFlags(fs, &f.pandoc)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := convertFlagSet(f, w)

	set, err := parseWith(fs, args)
	if err != nil {
		return nil, nil, err
	}
	f.set = set
	return f, fs.Args(), nil
}

// serveFlagSet registers every serve flag into f.
func serveFlagSet(f *serveFlags, w io.Writer) *flag.FlagSet {
	fs := newFlagSet("serve", w, printServeUsage)

	fs.StringVar(&f.addr, "addr", "", "listen address (default: 127.0.0.1:8080)")
	fs.StringVar(&f.assets, "assets", "", "directory overriding the form template and styles")
	fs.BoolVar(&f.strict, "strict", false, "fail when DOCX post-processing fails")
	addCommonFlags(fs, &f.common)
	addPandocFlags(fs, &f.pandoc)

	return fs
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := serveFlagSet(f, w)

	set, err := parseWith(fs, args)
	if err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}
	f.set = set
	return f, nil
}
