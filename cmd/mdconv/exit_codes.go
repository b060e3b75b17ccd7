package main

import (
	"errors"
	"os"

	"github.com/alnah/go-mdconv"
	"github.com/alnah/go-mdconv/internal/assets"
	"github.com/alnah/go-mdconv/internal/config"
)

// Exit codes for the mdconv CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Successful conversion
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // Input not found, permission denied
	ExitConverter = 4 // pandoc missing or failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Converter errors (exit 4)
	if errors.Is(err, mdconv.ErrConverterNotFound) ||
		errors.Is(err, mdconv.ErrConversionFailed) ||
		errors.Is(err, mdconv.ErrPostProcess) {
		return ExitConverter
	}

	// I/O errors (exit 3)
	if errors.Is(err, ErrInputNotFound) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, mdconv.ErrReferenceDocNotFound) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrOutputNotDirectory) ||
		errors.Is(err, ErrFormatMismatch) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdconv.ErrEmptyMarkdown) ||
		errors.Is(err, mdconv.ErrInvalidFormat) ||
		errors.Is(err, mdconv.ErrInvalidTOCDepth) ||
		errors.Is(err, mdconv.ErrInvalidHighlightStyle) ||
		errors.Is(err, mdconv.ErrInvalidEngine) ||
		errors.Is(err, mdconv.ErrInvalidPaperSize) ||
		errors.Is(err, mdconv.ErrInvalidFontSize) ||
		errors.Is(err, mdconv.ErrInvalidDocumentClass) ||
		errors.Is(err, mdconv.ErrInvalidDPI) ||
		errors.Is(err, mdconv.ErrInvalidLineStretch) ||
		errors.Is(err, assets.ErrInvalidBasePath) {
		return ExitUsage
	}

	return ExitGeneral
}
