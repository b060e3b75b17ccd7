package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconv <command> [flags] [args]")
	fmt.Fprintln(w, "       mdconv <input.md> [output]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert markdown files to DOCX or PDF")
	fmt.Fprintln(w, "  serve       Serve the conversion form in the browser")
	fmt.Fprintln(w, "  options     List supported option values")
	fmt.Fprintln(w, "  doctor      Check pandoc and LaTeX installation")
	fmt.Fprintln(w, "  config      Print the effective configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdconv help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconv convert <input> [output] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to DOCX or PDF with pandoc.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input     Markdown file, directory, or glob (e.g. \"docs/**/*.md\")")
	fmt.Fprintln(w, "  output    Output file or directory (same as -o)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "      --to <format>             Output format: docx, pdf (default: from output, else docx)")
	fmt.Fprintln(w, "  -o, --output <path>           Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>           Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>             Parallel conversions (0 = auto)")
	fmt.Fprintln(w, "      --keep-md                 Keep the preprocessed Markdown (<output>.pandoc.md)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Structure:")
	fmt.Fprintln(w, "      --toc                     Add a table of contents")
	fmt.Fprintln(w, "      --toc-depth <n>           TOC heading depth (1-6, default: 3)")
	fmt.Fprintln(w, "      --number-sections         Number headings (strips manual numbering)")
	fmt.Fprintln(w, "      --highlight-style <s>     Code theme (see 'mdconv options')")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DOCX:")
	fmt.Fprintln(w, "      --reference-doc <path>    Template .docx for Word styles")
	fmt.Fprintln(w, "      --dpi <n>                 Image resolution (72-300, default: 96)")
	fmt.Fprintln(w, "      --docx-font <s>           Serif font written into the document")
	fmt.Fprintln(w, "      --strict                  Fail when DOCX post-processing fails")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --pdf-engine <s>          pdflatex, xelatex, lualatex (default: pdflatex)")
	fmt.Fprintln(w, "      --paper-size <s>          letter, a4, legal (default: letter)")
	fmt.Fprintln(w, "      --font-size <s>           10pt, 11pt, 12pt (default: 11pt)")
	fmt.Fprintln(w, "      --document-class <s>      article, report, book (default: article)")
	fmt.Fprintln(w, "      --margin <len>            Margin on all sides (default: 1in)")
	fmt.Fprintln(w, "      --margin-top <len>        Per-side margins; when any is set,")
	fmt.Fprintln(w, "      --margin-bottom <len>     --margin is ignored")
	fmt.Fprintln(w, "      --margin-left <len>")
	fmt.Fprintln(w, "      --margin-right <len>")
	fmt.Fprintln(w, "      --line-stretch <f>        Line spacing factor (default: 1.15)")
	fmt.Fprintln(w, "      --font-family <s>         Main font (xelatex and lualatex only)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pandoc:")
	fmt.Fprintln(w, "      --pandoc <path>           pandoc executable (default: pandoc on PATH)")
	fmt.Fprintln(w, "  -t, --timeout <d>             Per-document timeout (default: 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                   Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                 Show pandoc arguments and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDCONV_CONFIG, MDCONV_FORMAT, MDCONV_PANDOC, MDCONV_TIMEOUT, MDCONV_WORKERS,")
	fmt.Fprintln(w, "  MDCONV_OUTPUT_DIR, MDCONV_PDF_ENGINE, MDCONV_HIGHLIGHT_STYLE, MDCONV_REFERENCE_DOC")
	fmt.Fprintln(w, "  Flags override environment variables, which override the config file.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconv serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve a form that converts an uploaded markdown file and returns")
	fmt.Fprintln(w, "the document as a download. Config file values pre-fill the form.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --addr <host:port>        Listen address (default: 127.0.0.1:8080)")
	fmt.Fprintln(w, "      --assets <dir>            Directory overriding templates/form.html and styles/*.css")
	fmt.Fprintln(w, "      --strict                  Fail when DOCX post-processing fails")
	fmt.Fprintln(w, "      --pandoc <path>           pandoc executable")
	fmt.Fprintln(w, "  -t, --timeout <d>             Per-document timeout")
	fmt.Fprintln(w, "  -w, --workers <n>             Concurrent conversions (0 = auto)")
	fmt.Fprintln(w, "  -c, --config <name>           Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet                   Only log errors")
	fmt.Fprintln(w, "  -v, --verbose                 Log pandoc arguments and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDCONV_ADDR, MDCONV_ASSETS and the convert variables")
}

// printOptionsUsage prints usage for the options command.
func printOptionsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconv options [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the supported highlight styles, PDF engines, paper sizes,")
	fmt.Fprintln(w, "font sizes, document classes and suggested font families.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconv doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that pandoc and a LaTeX engine are installed.")
	fmt.Fprintln(w, "Exits 1 when pandoc is missing; a missing LaTeX engine is a warning.")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconv config [name]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML: defaults, then the config")
	fmt.Fprintln(w, "file (name, else MDCONV_CONFIG), then environment variables.")
	fmt.Fprintln(w, "Redirect it to a file to start a new config.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "options":
		printOptionsUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdconv version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show the mdconv and pandoc versions.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdconv help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
