package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// scaleSentinel detects whether --scale was explicitly set: 0 is reserved
// for "renderer default" in the library, so the unset marker must be
// outside the valid 0.1-2.0 range.
const scaleSentinel = -1.0

// chromeFlags holds browser launch flags.
type chromeFlags struct {
	path        string
	windowSize  string
	proxyServer string
	proxyBypass string
	proxyPAC    string
	userAgent   string
	userDataDir string
}

// pageFlags holds PDF page geometry flags.
type pageFlags struct {
	format       string
	landscape    bool
	scale        float64
	margin       float64 // shorthand for all four sides
	marginTop    float64
	marginBottom float64
	marginLeft   float64
	marginRight  float64
	pageRanges   string
	background   bool
	headerFooter bool
}

// convertFlags holds all CLI flags.
type convertFlags struct {
	config  string
	quiet   bool
	verbose bool
	version bool

	output            string
	workers           int
	timeout           string
	encoding          string
	waitStatus        string
	waitStatusTimeout string

	chrome chromeFlags
	page   pageFlags

	fs *flag.FlagSet // retained for Changed lookups during config merge
}

// changed reports whether the named flag was set on the command line,
// which is what decides flag-over-config precedence for booleans and
// zero-valued numbers.
func (f *convertFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// addChromeFlags adds browser launch flags to a FlagSet.
func addChromeFlags(fs *flag.FlagSet, f *chromeFlags) {
	fs.StringVar(&f.path, "chrome-path", "", "Chrome executable (default: auto-detect)")
	fs.StringVar(&f.windowSize, "window-size", "", "viewport: svga, xga, hd, fhd, qhd, uhd")
	fs.StringVar(&f.proxyServer, "proxy-server", "", "proxy server for page traffic")
	fs.StringVar(&f.proxyBypass, "proxy-bypass-list", "", "hosts exempt from the proxy")
	fs.StringVar(&f.proxyPAC, "proxy-pac-url", "", "proxy auto-config script URL")
	fs.StringVar(&f.userAgent, "user-agent", "", "browser user agent override")
	fs.StringVar(&f.userDataDir, "user-data-dir", "", "existing browser profile directory")
}

// addPageFlags adds page geometry flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.format, "paper", "p", "", "paper format: letter, legal, a4, ... (default: letter)")
	fs.BoolVar(&f.landscape, "landscape", false, "landscape orientation")
	fs.Float64Var(&f.scale, "scale", scaleSentinel, "render scale (0.1-2.0)")
	fs.Float64Var(&f.margin, "margin", 0, "all four margins in inches")
	fs.Float64Var(&f.marginTop, "margin-top", 0, "top margin in inches")
	fs.Float64Var(&f.marginBottom, "margin-bottom", 0, "bottom margin in inches")
	fs.Float64Var(&f.marginLeft, "margin-left", 0, "left margin in inches")
	fs.Float64Var(&f.marginRight, "margin-right", 0, "right margin in inches")
	fs.StringVar(&f.pageRanges, "page-ranges", "", "pages to render, e.g. \"1-5, 8\"")
	fs.BoolVar(&f.background, "background", false, "print background graphics")
	fs.BoolVar(&f.headerFooter, "header-footer", false, "show Chrome's native header and footer")
}

// parseFlags parses CLI flags and returns positional args (input files).
func parseFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("html2pdf", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-step progress")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel conversions (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-conversion timeout (e.g. 30s, 2m)")
	fs.StringVarP(&f.encoding, "encoding", "e", "", "input charset (default: detect)")
	fs.StringVar(&f.waitStatus, "wait-for-status", "", "wait until window.status equals this value")
	fs.StringVar(&f.waitStatusTimeout, "wait-for-status-timeout", "", "status wait limit (default 60s)")

	addChromeFlags(fs, &f.chrome)
	addPageFlags(fs, &f.page)

	fs.Usage = func() {
		printUsage(fs.Output())
		fmt.Fprint(fs.Output(), fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.fs = fs

	return f, fs.Args(), nil
}

// printUsage writes the top-level usage text.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `html2pdf - convert HTML, text and markdown files to PDF via headless Chrome

Usage:
  html2pdf [flags] <input>...

Inputs may be local files (.html, .htm, .txt, .log, .xml, .md, .markdown)
or http(s) URLs. With one input, -o names the output file; with several,
-o names the output directory.

Examples:
  html2pdf page.html
  html2pdf -o report.pdf --paper a4 --landscape report.md
  html2pdf -o out/ --workers 4 docs/*.html
  html2pdf --wait-for-status ready https://app.internal/dashboard

Flags:
`)
}
