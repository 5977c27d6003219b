package main

import (
	"errors"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
)

// Exit codes for the html2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
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
	if errors.Is(err, html2pdf.ErrExecutableNotFound) ||
		errors.Is(err, html2pdf.ErrLaunchFailed) ||
		errors.Is(err, html2pdf.ErrBrowserLost) ||
		errors.Is(err, html2pdf.ErrSessionOpen) ||
		errors.Is(err, html2pdf.ErrPageLoad) ||
		errors.Is(err, html2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, html2pdf.ErrInputNotFound) ||
		errors.Is(err, html2pdf.ErrDirectoryNotFound) ||
		errors.Is(err, html2pdf.ErrWritePDF) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, html2pdf.ErrInvalidArgument) ||
		errors.Is(err, html2pdf.ErrInvalidPaperFormat) ||
		errors.Is(err, html2pdf.ErrInvalidMargin) ||
		errors.Is(err, html2pdf.ErrInvalidScale) ||
		errors.Is(err, html2pdf.ErrInvalidPageRanges) ||
		errors.Is(err, html2pdf.ErrInvalidWindowSize) ||
		errors.Is(err, html2pdf.ErrUnsupportedInputFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
