package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-mdconv"
	"github.com/alnah/go-mdconv/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configureMaxProcs(os.Args, os.Stderr)
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// configureMaxProcs sets GOMAXPROCS from the container CPU quota before
// the pool is sized. Its log is shown in verbose mode only.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func configureMaxProcs(args []string, w io.Writer) {
	logf := func(string, ...any) {}
	if hasVerboseFlag(args) {
		logf = func(format string, a ...any) {
			fmt.Fprintf(w, format+"\n", a...)
		}
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}

// hasVerboseFlag reports whether -v or --verbose appears in args.
func hasVerboseFlag(args []string) bool {
	return slices.ContainsFunc(args, func(a string) bool {
		return a == "-v" || a == "--verbose"
	})
}

// runMain dispatches the command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]

	var err error
	switch {
	case isCommand(cmd, "help", "--help", "-h"):
		return runHelp(rest, env)
	case isCommand(cmd, "version", "--version"):
		runVersion(ctx, env)
		return ExitSuccess
	case cmd == "convert":
		err = runConvert(ctx, rest, env)
	case cmd == "serve":
		err = runServe(ctx, rest, env)
	case cmd == "doctor":
		return runDoctorCmd(ctx, rest, env)
	case cmd == "options":
		err = runOptions(rest, env)
	case cmd == "config":
		err = runConfig(rest, env)
	case cmd == "completion":
		err = runCompletion(rest, env)
	case strings.HasPrefix(cmd, "-") || looksLikeMarkdown(cmd) || hasGlobMeta(cmd):
		// "mdconv notes.md" and "mdconv --to pdf notes.md" mean convert
		err = runConvert(ctx, args[1:], env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// isCommand reports whether arg is one of the spellings of a command.
func isCommand(arg string, names ...string) bool {
	return slices.Contains(names, arg)
}

// looksLikeMarkdown reports whether arg names a markdown file.
func looksLikeMarkdown(arg string) bool {
	return isMarkdown(arg)
}

// hintFor returns actionable advice for err, or "".
// Batch failures carry their hints on the per-file lines.
func hintFor(err error) string {
	var be *batchError
	if errors.As(err, &be) {
		return ""
	}

	var ce *mdconv.ConversionError
	switch {
	case errors.As(err, &ce) && ce.LikelyLaTeXProblem():
		return hints.ForLaTeX(ce.Engine)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mdconv.ErrConverterNotFound):
		return hints.ForPandocNotFound()
	case errors.Is(err, mdconv.ErrReferenceDocNotFound):
		return hints.ForReferenceDoc()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, mdconv.ErrInvalidHighlightStyle):
		return hints.ForChoices(mdconv.HighlightStyles())
	case errors.Is(err, mdconv.ErrInvalidEngine):
		return hints.ForChoices(mdconv.PDFEngines())
	case errors.Is(err, mdconv.ErrInvalidPaperSize):
		return hints.ForChoices(mdconv.PaperSizes())
	case errors.Is(err, mdconv.ErrInvalidFontSize):
		return hints.ForChoices(mdconv.FontSizes())
	case errors.Is(err, mdconv.ErrInvalidDocumentClass):
		return hints.ForChoices(mdconv.DocumentClasses())
	}
	return ""
}

// runVersion prints the mdconv version and the pandoc it would use.
func runVersion(ctx context.Context, env *Environment) {
	fmt.Fprintf(env.Stdout, "mdconv %s\n", Version)

	conv, err := mdconv.NewConverter(env.converterOptions(mdconv.WithPandocPath(os.Getenv("MDCONV_PANDOC")))...)
	if err != nil {
		return
	}
	v, err := conv.PandocVersion(ctx)
	if err != nil {
		fmt.Fprintln(env.Stdout, "pandoc: not found")
		return
	}
	fmt.Fprintln(env.Stdout, v)
}
