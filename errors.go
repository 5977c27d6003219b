package html2pdf

import "errors"

// Sentinel errors for browser and conversion operations.
var (
	// Browser lifecycle errors.
	ErrExecutableNotFound = errors.New("chrome executable not found")
	ErrLaunchFailed       = errors.New("chrome failed to launch")
	ErrBrowserLost        = errors.New("chrome process died")

	// Protocol session errors.
	ErrSessionOpen       = errors.New("failed to open browser session")
	ErrSessionClosed     = errors.New("session closed")
	ErrOperationTimedOut = errors.New("protocol call timed out")
	ErrPageLoad          = errors.New("failed to load page")
	ErrPDFGeneration     = errors.New("PDF generation failed")

	// Conversion errors.
	ErrConversionTimedOut     = errors.New("conversion timed out")
	ErrDirectoryNotFound      = errors.New("directory not found")
	ErrInputNotFound          = errors.New("input file not found")
	ErrUnsupportedInputFormat = errors.New("unsupported input format")
	ErrWritePDF               = errors.New("failed to write PDF file")

	// Argument validation errors.
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrArgumentsFrozen    = errors.New("launch arguments are frozen after start")
	ErrInvalidPaperFormat = errors.New("invalid paper format")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidScale       = errors.New("invalid scale")
	ErrInvalidPageRanges  = errors.New("invalid page ranges")
	ErrInvalidWindowSize  = errors.New("invalid window size")
)
