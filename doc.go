// Package mdconv converts Markdown documents to Word (DOCX) or PDF by
// driving the pandoc command-line converter.
//
// # Quick Start
//
// Create a converter and convert markdown:
//
//	conv, err := mdconv.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, mdconv.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Format:   mdconv.FormatDOCX,
//	    Name:     "hello.md",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.Data, 0644)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Markdown preprocessing (line endings, blank line before bullets,
//     manual heading numbers, title front matter for the TOC)
//  2. Option assembly into pandoc arguments (TOC, numbering, highlighting,
//     DPI and reference document for DOCX; engine, geometry and fonts for PDF)
//  3. pandoc subprocess in a private temporary workspace, bounded by a timeout
//  4. DOCX only: archive post-processing (colors removed, serif font
//     substituted, field codes stripped)
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := mdconv.NewConverter(
//	    mdconv.WithTimeout(5 * time.Minute),
//	    mdconv.WithPandocPath("/opt/pandoc/bin/pandoc"),
//	    mdconv.WithLogger(slog.Default()),
//	)
//
// Per-conversion options are passed via Input.Config:
//
//	result, err := conv.Convert(ctx, mdconv.Input{
//	    Markdown: content,
//	    Format:   mdconv.FormatPDF,
//	    Config: mdconv.RenderConfig{
//	        TOC:            true,
//	        NumberSections: true,
//	        PDF: &mdconv.PDFOptions{
//	            Engine:     "xelatex",
//	            PaperSize:  "a4",
//	            FontFamily: "DejaVu Serif",
//	        },
//	    },
//	})
//
// # Post-Processing Failures
//
// When the DOCX patch step fails, the unpatched document is returned and
// ConvertResult.PostProcessErr is set. WithStrictPostProcess turns that
// into a conversion error.
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to bound concurrent pandoc runs:
//
//	pool := mdconv.NewConverterPool(mdconv.ResolvePoolSize(0))
//	defer pool.Close()
//
//	result, err := pool.Convert(ctx, input)
//
// # Requirements
//
// pandoc must be installed. PDF output also needs a LaTeX distribution
// providing the selected engine (pdflatex, xelatex or lualatex).
package mdconv
