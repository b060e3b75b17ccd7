package main

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-mdconv"
	"github.com/alnah/go-mdconv/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrInputNotFound      = errors.New("input not found")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrOutputNotDirectory = errors.New("output must be a directory when converting several files")
	ErrFormatMismatch     = errors.New("output extension does not match --to")
)

// markdownExtensions are the accepted input extensions.
var markdownExtensions = []string{".md", ".markdown"}

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles finds all markdown files to convert. input is a file, a
// directory (walked recursively) or a glob pattern such as "docs/**/*.md".
// output is empty (next to each source), a directory, or a single document
// path when exactly one file is converted.
func discoverFiles(input, output string, format mdconv.Format) ([]FileToConvert, error) {
	var files []FileToConvert
	var err error

	if hasGlobMeta(input) {
		files, err = discoverGlob(input, output, format)
	} else {
		files, err = discoverPath(input, output, format)
	}
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no markdown files in %s", ErrInputNotFound, input)
	}
	if len(files) > 1 && isDocumentPath(output) {
		return nil, fmt.Errorf("%w: %s", ErrOutputNotDirectory, output)
	}
	return files, nil
}

// discoverPath handles a plain file or directory argument.
func discoverPath(input, output string, format mdconv.Format) ([]FileToConvert, error) {
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(input); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(input, output, "", format)
		return []FileToConvert{{InputPath: input, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}
		outPath := resolveOutputPath(path, output, input, format)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// discoverGlob expands a doublestar pattern. The static prefix of the
// pattern is the base directory that outputs mirror.
func discoverGlob(pattern, output string, format mdconv.Format) ([]FileToConvert, error) {
	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return nil, fmt.Errorf("%w: invalid glob pattern %q", ErrUsage, pattern)
	}

	base, rest := doublestar.SplitPattern(slashed)
	baseDir := filepath.FromSlash(base)

	var files []FileToConvert
	err := doublestar.GlobWalk(os.DirFS(baseDir), rest, func(path string, d fs.DirEntry) error {
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}
		in := filepath.Join(baseDir, filepath.FromSlash(path))
		files = append(files, FileToConvert{
			InputPath:  in,
			OutputPath: resolveOutputPath(in, output, baseDir, format),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("matching %s: %w", pattern, err)
	}

	slices.SortFunc(files, func(a, b FileToConvert) int {
		return cmp.Compare(a.InputPath, b.InputPath)
	})
	return files, nil
}

// resolveOutputPath determines the output path for a markdown file.
// Inside a directory or glob batch, the layout below baseInputDir is
// mirrored into outputDir.
func resolveOutputPath(inputPath, output, baseInputDir string, format mdconv.Format) string {
	name := fileutil.Stem(inputPath) + format.Extension()

	if output == "" {
		return filepath.Join(filepath.Dir(inputPath), name)
	}

	if isDocumentPath(output) {
		return output
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(output, filepath.Dir(relPath), name)
		}
	}

	return filepath.Join(output, name)
}

// resolveFormat picks the output format: --to, then the extension of an
// output file, then the configured format.
func resolveFormat(to, output, configured string) (mdconv.Format, error) {
	var outFormat mdconv.Format
	if isDocumentPath(output) {
		outFormat, _ = mdconv.ParseFormat(filepath.Ext(output))
	}

	if to != "" {
		f, err := mdconv.ParseFormat(to)
		if err != nil {
			return "", err
		}
		if outFormat != "" && outFormat != f {
			return "", fmt.Errorf("%w: %s is not %s", ErrFormatMismatch, output, f)
		}
		return f, nil
	}

	if outFormat != "" {
		return outFormat, nil
	}
	return mdconv.ParseFormat(cmp.Or(configured, string(mdconv.FormatDOCX)))
}

// isDocumentPath reports whether p names an output document rather than
// a directory.
func isDocumentPath(p string) bool {
	_, err := mdconv.ParseFormat(filepath.Ext(p))
	return err == nil
}

// isMarkdown reports whether path has a markdown extension.
func isMarkdown(path string) bool {
	return slices.Contains(markdownExtensions, strings.ToLower(filepath.Ext(path)))
}

// hasGlobMeta reports whether s contains glob syntax.
func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !isMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > mdconv.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, mdconv.MaxPoolSize)
	}
	return nil
}
