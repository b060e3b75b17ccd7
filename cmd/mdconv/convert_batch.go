package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-mdconv"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// keptMarkdownSuffix names the --keep-md companion of an output file.
const keptMarkdownSuffix = ".pandoc.md"

// Sentinel errors for batch operations.
var (
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteOutput  = errors.New("failed to write output file")
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input mdconv.Input) (*mdconv.ConvertResult, error)
}

// Compile-time interface implementation checks.
var (
	_ CLIConverter = (*mdconv.Converter)(nil)
	_ Pool         = (*mdconv.ConverterPool)(nil)
)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (*mdconv.Converter, error)
	Release(*mdconv.Converter)
	Size() int
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Warning    error // non-fatal, the document was still written
	Duration   time.Duration
}

// convertBatch processes files concurrently using the converter pool.
// Results keep the order of files.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Go(func() {
			conv, err := pool.Acquire(ctx)
			if err != nil {
				// No converter, mark the jobs this worker takes as failed
				for idx := range jobs {
					results[idx] = failedResult(files[idx], err)
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = failedResult(files[idx], ctx.Err())
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		})
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func failedResult(f FileToConvert, err error) ConversionResult {
	return ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath, Err: err}
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err))
	}

	res, err := conv.Convert(ctx, mdconv.Input{
		Markdown: string(content),
		Format:   params.format,
		Config:   params.render,
		Name:     f.InputPath,
		BaseDir:  filepath.Dir(f.InputPath),
	})
	if err != nil {
		return fail(err)
	}

	// #nosec G306 -- documents are meant to be readable
	if err := os.WriteFile(f.OutputPath, res.Data, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	if params.keepMD {
		// #nosec G306 -- documents are meant to be readable
		if err := os.WriteFile(keptMarkdownPath(f.OutputPath), []byte(res.Markdown), filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
	}

	result.Warning = res.PostProcessErr
	result.Duration = time.Since(start)
	return result
}

// keptMarkdownPath returns the path of the preprocessed Markdown kept
// next to outPath: "report.docx" -> "report.pandoc.md".
func keptMarkdownPath(outPath string) string {
	return strings.TrimSuffix(outPath, filepath.Ext(outPath)) + keptMarkdownSuffix
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Warned    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Warning != nil:
			summary.Succeeded++
			summary.Warned++
		default:
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided writers.
// Failures and warnings always go to Stderr, even in quiet mode.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) ResultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}

		if r.Warning != nil {
			fmt.Fprintf(env.Stderr, "WARNING %s: %v (wrote unpatched document)\n", r.InputPath, r.Warning)
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary
}

// batchError reports failed conversions. It unwraps to the first failure so
// the exit code reflects its cause.
type batchError struct {
	failed int
	total  int
	first  error
}

func newBatchError(results []ConversionResult, summary ResultSummary) *batchError {
	be := &batchError{failed: summary.Failed, total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			be.first = r.Err
			break
		}
	}
	return be
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }
