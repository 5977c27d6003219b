package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// ErrNoInput is returned when no input files or URLs are given.
var ErrNoInput = errors.New("no input files")

// run is the CLI entry point behind flag parsing, separated from main for
// testability.
func run(args []string, stdout, stderr io.Writer) error {
	flags, inputs, err := parseFlags(args)
	if err != nil {
		return err
	}

	if flags.version {
		fmt.Fprintf(stdout, "html2pdf %s\n", Version)
		return nil
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: pass at least one file or URL (see --help)", ErrNoInput)
	}

	cfg, err := loadConfiguration(flags)
	if err != nil {
		return err
	}

	chrome, err := newChrome(flags, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := chrome.Stop(); err != nil && !flags.quiet {
			fmt.Fprintf(stderr, "stopping browser: %v\n", err)
		}
	}()

	workers := flags.workers
	if workers == 0 {
		workers = cfg.Conversion.Workers
	}
	concurrency := html2pdf.ResolveConcurrency(workers)
	if flags.verbose {
		fmt.Fprintf(stderr, "running up to %d conversions in parallel\n", concurrency)
	}

	var logSink io.Writer
	if flags.verbose {
		logSink = stderr
	}
	converter := html2pdf.NewConverter(chrome,
		html2pdf.WithMaxConcurrent(concurrency),
		html2pdf.WithLogOutput(logSink),
	)

	page, err := pageSettings(flags, cfg)
	if err != nil {
		return err
	}
	timeout, waitTimeout, err := timeouts(flags, cfg)
	if err != nil {
		return err
	}

	waitStatus := flags.waitStatus
	if waitStatus == "" {
		waitStatus = cfg.Conversion.WaitForStatus
	}
	encoding := flags.encoding
	if encoding == "" {
		encoding = cfg.Conversion.Encoding
	}

	outputs, err := resolveOutputs(inputs, flags.output, cfg.Output.DefaultDir)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		input := html2pdf.Input{
			Encoding:             encoding,
			Page:                 page,
			WaitForStatus:        waitStatus,
			WaitForStatusTimeout: waitTimeout,
			Timeout:              timeout,
			OutputPath:           outputs[i],
		}
		if fileutil.IsURL(in) {
			input.URL = in
		} else {
			input.Path = in
		}

		g.Go(func() error {
			if err := converter.Convert(gctx, input); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			if !flags.quiet {
				fmt.Fprintf(stdout, "%s -> %s\n", in, input.OutputPath)
			}
			return nil
		})
	}
	return g.Wait()
}

// loadConfiguration loads the named config, or the defaults when none is
// given.
func loadConfiguration(flags *convertFlags) (*config.Config, error) {
	if flags.config == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(flags.config)
}

// newChrome assembles the browser supervisor from flags and config, with
// flags taking precedence.
func newChrome(flags *convertFlags, cfg *config.Config) (*html2pdf.Chrome, error) {
	pick := func(flag, conf string) string {
		if flag != "" {
			return flag
		}
		return conf
	}

	var opts []html2pdf.ChromeOption
	if p := pick(flags.chrome.path, cfg.Chrome.Path); p != "" {
		opts = append(opts, html2pdf.WithExecutable(p))
	}
	if ws := pick(flags.chrome.windowSize, cfg.Chrome.WindowSize); ws != "" {
		opts = append(opts, html2pdf.WithWindowSize(html2pdf.WindowSize(strings.ToLower(ws))))
	}
	if p := pick(flags.chrome.proxyServer, cfg.Chrome.ProxyServer); p != "" {
		opts = append(opts, html2pdf.WithProxyServer(p))
	}
	if p := pick(flags.chrome.proxyBypass, cfg.Chrome.ProxyBypassList); p != "" {
		opts = append(opts, html2pdf.WithProxyBypassList(p))
	}
	if p := pick(flags.chrome.proxyPAC, cfg.Chrome.ProxyPACURL); p != "" {
		opts = append(opts, html2pdf.WithProxyPACURL(p))
	}
	if ua := pick(flags.chrome.userAgent, cfg.Chrome.UserAgent); ua != "" {
		opts = append(opts, html2pdf.WithUserAgent(ua))
	}
	if dir := pick(flags.chrome.userDataDir, cfg.Chrome.UserDataDir); dir != "" {
		opts = append(opts, html2pdf.WithUserDataDir(dir))
	}
	if cfg.Chrome.StartupTimeout > 0 {
		opts = append(opts, html2pdf.WithStartupTimeout(time.Duration(cfg.Chrome.StartupTimeout)*time.Second))
	}

	return html2pdf.NewChrome(opts...)
}

// pageSettings merges geometry flags over the config's page section.
// The result is validated once here so every conversion shares it.
func pageSettings(flags *convertFlags, cfg *config.Config) (*html2pdf.PageSettings, error) {
	p := html2pdf.DefaultPageSettings()

	if cfg.Page.Format != "" {
		p.Format = html2pdf.PaperFormat(strings.ToLower(cfg.Page.Format))
	}
	if flags.page.format != "" {
		p.Format = html2pdf.PaperFormat(strings.ToLower(flags.page.format))
	}

	p.Landscape = cfg.Page.Landscape
	if flags.changed("landscape") {
		p.Landscape = flags.page.landscape
	}
	p.PrintBackground = cfg.Page.PrintBackground
	if flags.changed("background") {
		p.PrintBackground = flags.page.background
	}
	p.DisplayHeaderFooter = cfg.Page.HeaderFooter
	if flags.changed("header-footer") {
		p.DisplayHeaderFooter = flags.page.headerFooter
	}

	if cfg.Page.Scale != 0 {
		p.Scale = cfg.Page.Scale
	}
	if flags.page.scale != scaleSentinel {
		p.Scale = flags.page.scale
	}

	applyMargins(p, flags, cfg)

	if cfg.Page.PageRanges != "" {
		p.PageRanges = cfg.Page.PageRanges
	}
	if flags.page.pageRanges != "" {
		p.PageRanges = flags.page.pageRanges
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// applyMargins layers margin sources: config values, then the --margin
// shorthand, then the per-side flags.
func applyMargins(p *html2pdf.PageSettings, flags *convertFlags, cfg *config.Config) {
	set := func(dst *float64, conf float64, shorthand bool, side string, flagValue float64) {
		if conf != 0 {
			*dst = conf
		}
		if shorthand {
			*dst = flags.page.margin
		}
		if flags.changed(side) {
			*dst = flagValue
		}
	}
	shorthand := flags.changed("margin")
	set(&p.MarginTop, cfg.Page.MarginTop, shorthand, "margin-top", flags.page.marginTop)
	set(&p.MarginBottom, cfg.Page.MarginBottom, shorthand, "margin-bottom", flags.page.marginBottom)
	set(&p.MarginLeft, cfg.Page.MarginLeft, shorthand, "margin-left", flags.page.marginLeft)
	set(&p.MarginRight, cfg.Page.MarginRight, shorthand, "margin-right", flags.page.marginRight)
}

// timeouts resolves the overall and status-wait durations from flags and
// config (flag strings like "30s" win over config's integer seconds).
func timeouts(flags *convertFlags, cfg *config.Config) (overall, wait time.Duration, err error) {
	overall = time.Duration(cfg.Conversion.Timeout) * time.Second
	if flags.timeout != "" {
		overall, err = time.ParseDuration(flags.timeout)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: --timeout %q: %v", html2pdf.ErrInvalidArgument, flags.timeout, err)
		}
	}

	wait = time.Duration(cfg.Conversion.WaitForStatusTimeout) * time.Second
	if flags.waitStatusTimeout != "" {
		wait, err = time.ParseDuration(flags.waitStatusTimeout)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: --wait-for-status-timeout %q: %v", html2pdf.ErrInvalidArgument, flags.waitStatusTimeout, err)
		}
	}
	return overall, wait, nil
}

// resolveOutputs maps each input to its PDF path. With one input, -o names
// the file; with several, -o (or the configured default dir) names the
// directory and outputs keep the input's base name.
func resolveOutputs(inputs []string, output, defaultDir string) ([]string, error) {
	if len(inputs) == 1 && output != "" && !fileutil.DirExists(output) {
		return []string{output}, nil
	}

	dir := output
	if dir == "" {
		dir = defaultDir
	}

	outputs := make([]string, len(inputs))
	seen := make(map[string]int, len(inputs))
	for i, in := range inputs {
		name := pdfName(in)
		// Distinct inputs can share a base name; suffix duplicates rather
		// than silently overwriting.
		if n := seen[name]; n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n+1, ext)
		}
		seen[pdfName(in)]++

		targetDir := dir
		if targetDir == "" {
			if fileutil.IsURL(in) {
				targetDir = "."
			} else {
				targetDir = filepath.Dir(in)
			}
		}
		outputs[i] = filepath.Join(targetDir, name)
	}
	return outputs, nil
}

// pdfName derives the output file name from an input path or URL.
func pdfName(input string) string {
	s := input
	if fileutil.IsURL(s) {
		if i := strings.IndexAny(s, "?#"); i >= 0 {
			s = s[:i]
		}
		if _, rest, ok := strings.Cut(s, "://"); ok {
			s = rest
		}
		s = strings.TrimRight(s, "/")
		if !strings.Contains(s, "/") {
			// Bare host, nothing to derive a name from.
			return "output.pdf"
		}
	}
	base := filepath.Base(s)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "output"
	}
	return base + ".pdf"
}
