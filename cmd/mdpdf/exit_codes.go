package main

import (
	"errors"
	"os"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/config"
	"github.com/alnah/go-mdpdf/internal/fileutil"
)

// Exit codes for the mdpdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdpdf.ErrBrowserConnect) ||
		errors.Is(err, mdpdf.ErrPageCreate) ||
		errors.Is(err, mdpdf.ErrPageLoad) ||
		errors.Is(err, mdpdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, fileutil.ErrDirNotWritable) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, mdpdf.ErrEmptyMarkdown) ||
		errors.Is(err, mdpdf.ErrEmptyPDF) ||
		errors.Is(err, mdpdf.ErrInvalidPageSize) ||
		errors.Is(err, mdpdf.ErrInvalidMargin) ||
		errors.Is(err, mdpdf.ErrStyleNotFound) ||
		errors.Is(err, mdpdf.ErrInvalidAssetPath) ||
		errors.Is(err, mdpdf.ErrUnknownExtractor) {
		return ExitUsage
	}

	return ExitGeneral
}
