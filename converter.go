package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/prewrap"
)

// DefaultWaitForStatusTimeout bounds the window-status sub-wait when the
// caller enables it without specifying a limit.
const DefaultWaitForStatusTimeout = 60 * time.Second

// PreWrapper converts a non-HTML input file into a complete HTML document
// the browser can render. An empty encoding means detect the charset.
type PreWrapper interface {
	Wrap(inputPath, outputPath, encoding string) error
}

// ImageProcessor inspects or rewrites a wrapped HTML document before it is
// handed to the browser, e.g. to inline or validate referenced images.
type ImageProcessor interface {
	Process(htmlPath string) error
}

// renderSession is the slice of Session the orchestrator needs. Tests
// substitute a stub so conversions run without a browser.
type renderSession interface {
	NavigateTo(uri string, timer *CountdownTimer) error
	WaitForWindowStatus(target string, timeout time.Duration) (bool, error)
	PrintToPDF(settings *PageSettings, timer *CountdownTimer) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var _ renderSession = (*Session)(nil)

// Input describes one conversion.
type Input struct {
	// Path is a local input file. Mutually exclusive with URL.
	Path string

	// URL is navigated directly, skipping pre-wrapping. Mutually exclusive
	// with Path.
	URL string

	// Encoding forces the input charset ("iso-8859-1", "shift_jis", ...).
	// Empty means detect. Ignored for URL inputs.
	Encoding string

	// Page controls PDF geometry. Nil means DefaultPageSettings.
	Page *PageSettings

	// WaitForStatus, when non-empty, delays rendering until window.status
	// equals this value or WaitForStatusTimeout passes. The overall Timeout
	// is suspended while waiting.
	WaitForStatus        string
	WaitForStatusTimeout time.Duration

	// Timeout bounds the whole conversion excluding the status wait.
	// Zero means no deadline.
	Timeout time.Duration

	// Exactly one of OutputPath and Output receives the PDF.
	OutputPath string
	Output     io.Writer

	// ProcessImages runs the converter's ImageProcessor over the wrapped
	// document. No-op for URL inputs or when no processor is configured.
	ProcessImages bool
}

// Converter runs conversions against a shared browser, opening one
// dedicated tab session per conversion.
type Converter struct {
	chrome   *Chrome
	wrappers map[string]PreWrapper
	images   ImageProcessor
	sem      *semaphore.Weighted
	log      *logger

	// openSession indirection exists for tests.
	openSession func() (renderSession, error)
}

// ConverterOption customizes a Converter.
type ConverterOption func(*Converter)

// WithPreWrapper registers a wrapper for a file extension (no dot),
// replacing any default registered for it.
func WithPreWrapper(ext string, w PreWrapper) ConverterOption {
	return func(c *Converter) {
		c.wrappers[ext] = w
	}
}

// WithImageProcessor installs the processor used when Input.ProcessImages
// is set.
func WithImageProcessor(p ImageProcessor) ConverterOption {
	return func(c *Converter) {
		c.images = p
	}
}

// WithMaxConcurrent caps how many conversions run at once. Zero or
// negative means unlimited; each conversion still gets its own tab.
func WithMaxConcurrent(n int) ConverterOption {
	return func(c *Converter) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLogOutput directs progress lines to w. Nil disables logging.
func WithLogOutput(w io.Writer) ConverterOption {
	return func(c *Converter) {
		c.log = newLogger(w)
	}
}

// NewConverter creates a Converter bound to a browser supervisor. Plain
// text and markdown inputs are wrapped by default; use WithPreWrapper to
// extend or override the registry.
func NewConverter(chrome *Chrome, opts ...ConverterOption) *Converter {
	c := &Converter{
		chrome:   chrome,
		wrappers: make(map[string]PreWrapper),
	}

	text := prewrap.Text{}
	for _, ext := range []string{"txt", "log", "text", "xml"} {
		c.wrappers[ext] = text
	}
	md := prewrap.NewMarkdown()
	c.wrappers["md"] = md
	c.wrappers["markdown"] = md

	for _, opt := range opts {
		opt(c)
	}

	if c.openSession == nil {
		c.openSession = func() (renderSession, error) {
			return c.chrome.OpenSession()
		}
	}
	return c
}

// Convert runs one conversion end to end: validate, pre-wrap, navigate,
// optionally wait for window.status, render, and materialize the PDF.
// Scratch files are removed whatever the outcome, and the output path never
// holds a partial PDF.
func (c *Converter) Convert(ctx context.Context, input Input) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer c.sem.Release(1)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	workspace := fileutil.NewWorkspace()
	defer func() {
		if err := workspace.Purge(); err != nil {
			c.log.printf("workspace cleanup failed: %v", err)
		}
	}()

	uri, err := c.prepareURI(input, workspace)
	if err != nil {
		return err
	}

	// Nil timer when no deadline; every blocking step accepts that.
	var timer *CountdownTimer
	if input.Timeout > 0 {
		timer = NewCountdownTimer()
		if err := timer.Start(input.Timeout); err != nil {
			return err
		}
		defer timer.Cancel()
	}

	session, err := c.openSession()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			c.log.printf("closing session: %v", cerr)
		}
	}()

	c.log.printf("navigating to %s", uri)
	if err := session.NavigateTo(uri, timer); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if input.WaitForStatus != "" {
		if err := c.waitForStatus(session, input, timer); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	settings := input.Page
	if settings == nil {
		settings = DefaultPageSettings()
	}
	pdf, err := session.PrintToPDF(settings, timer)
	if err != nil {
		if errors.Is(err, ErrOperationTimedOut) && timer.Expired() {
			return fmt.Errorf("%w: rendering PDF", ErrConversionTimedOut)
		}
		return err
	}

	return c.materialize(input, pdf)
}

// validateInput rejects bad inputs before any browser work happens, so a
// conversion that cannot possibly succeed costs nothing.
func (c *Converter) validateInput(input Input) error {
	if (input.Path == "") == (input.URL == "") {
		return fmt.Errorf("%w: exactly one of Path and URL must be set", ErrInvalidArgument)
	}
	if (input.OutputPath == "") == (input.Output == nil) {
		return fmt.Errorf("%w: exactly one of OutputPath and Output must be set", ErrInvalidArgument)
	}
	if input.OutputPath != "" {
		dir := filepath.Dir(input.OutputPath)
		if !fileutil.DirExists(dir) {
			return fmt.Errorf("%w: output directory %s", ErrDirectoryNotFound, dir)
		}
	}
	if input.Path != "" {
		if !fileutil.FileExists(input.Path) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, input.Path)
		}
		ext := fileutil.Extension(input.Path)
		if ext != "html" && ext != "htm" && c.wrappers[ext] == nil {
			return fmt.Errorf("%w: .%s", ErrUnsupportedInputFormat, ext)
		}
	}
	if input.Page != nil {
		if err := input.Page.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// prepareURI turns the input into something the browser can navigate to,
// pre-wrapping non-HTML files into the scratch workspace.
func (c *Converter) prepareURI(input Input, workspace *fileutil.Workspace) (string, error) {
	if input.URL != "" {
		return input.URL, nil
	}

	abs, err := filepath.Abs(input.Path)
	if err != nil {
		return "", fmt.Errorf("resolving input path: %w", err)
	}

	ext := fileutil.Extension(abs)
	htmlPath := abs
	if wrapper := c.wrappers[ext]; wrapper != nil && ext != "html" && ext != "htm" {
		dir, err := workspace.Dir()
		if err != nil {
			return "", err
		}
		htmlPath = filepath.Join(dir, "wrapped.html")
		c.log.printf("wrapping %s input %s", ext, abs)
		if err := wrapper.Wrap(abs, htmlPath, input.Encoding); err != nil {
			return "", fmt.Errorf("wrapping input: %w", err)
		}
	}

	if input.ProcessImages && c.images != nil {
		if err := c.images.Process(htmlPath); err != nil {
			return "", fmt.Errorf("processing images: %w", err)
		}
	}

	return "file://" + htmlPath, nil
}

// waitForStatus runs the window-status sub-wait with the overall timer
// suspended, so a slow page script consumes its own budget rather than the
// conversion's.
func (c *Converter) waitForStatus(session renderSession, input Input, timer *CountdownTimer) error {
	waitTimeout := input.WaitForStatusTimeout
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitForStatusTimeout
	}

	paused := false
	if timer != nil && timer.State() == TimerRunning {
		if err := timer.Pause(); err == nil {
			paused = true
		}
	}

	reached, err := session.WaitForWindowStatus(input.WaitForStatus, waitTimeout)

	if paused && timer.State() == TimerPaused {
		if rerr := timer.Resume(); rerr != nil && err == nil {
			err = rerr
		}
	}
	if err != nil {
		return err
	}
	if !reached {
		c.log.printf("window.status did not reach %q within %v; rendering anyway", input.WaitForStatus, waitTimeout)
	}
	return nil
}

// materialize delivers the PDF. File output goes through a scratch file in
// the destination directory and a rename, so the target path either holds
// the complete document or nothing.
func (c *Converter) materialize(input Input, pdf []byte) error {
	if input.Output != nil {
		if _, err := input.Output.Write(pdf); err != nil {
			return fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
		return nil
	}

	dir := filepath.Dir(input.OutputPath)
	tmp, err := os.CreateTemp(dir, ".html2pdf-*.pdf")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(pdf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { // #nosec G302 -- PDF output is world-readable by convention
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	if err := os.Rename(tmpPath, input.OutputPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	c.log.printf("wrote %s (%d bytes)", input.OutputPath, len(pdf))
	return nil
}
