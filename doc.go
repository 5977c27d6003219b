// Package html2pdf converts HTML documents and web pages to PDF using
// headless Chrome.
//
// # Quick Start
//
// Create a shared Chrome supervisor, a converter on top of it, and convert:
//
//	chrome, err := html2pdf.NewChrome()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer chrome.Stop()
//
//	conv := html2pdf.NewConverter(chrome)
//	err = conv.Convert(ctx, html2pdf.Input{
//	    Path:       "report.html",
//	    OutputPath: "report.pdf",
//	})
//
// One Chrome process serves any number of concurrent conversions: each
// Convert call opens its own DevTools session (a browser tab), drives it
// through navigate, optional wait-for-status, and render, and closes it.
// Sessions are never shared between conversions.
//
// # Inputs
//
// File inputs with an .html or .htm extension are loaded directly. Other
// text formats (.txt, .log, .xml, .md, .markdown) are pre-wrapped into a
// minimal HTML document first; plain-text inputs are charset-detected and
// decoded to UTF-8, markdown is rendered with syntax-highlighted code
// blocks. Remote pages are converted via Input.URL.
//
// # Deadlines
//
// An overall conversion timeout (Input.Timeout) bounds navigation and
// rendering. When Input.WaitForStatus is set, the page is polled until
// window.status equals the given value; the overall timer is paused for the
// duration of that sub-wait and resumed afterwards, so the two timeouts
// nest instead of adding up. The sub-wait timing out is not an error; a
// page may legitimately never reach the requested status.
//
// # Page geometry
//
// PageSettings controls orientation, margins, scale, background graphics,
// header/footer, page ranges, and paper format. Formats map to fixed
// width/height pairs in inches (Letter, Legal, Tabloid, Ledger, A0 to A6), or
// use PaperCustom with explicit dimensions.
//
// # Browser requirements
//
// Chrome or Chromium must be installed. The executable is resolved from the
// WithExecutable override, the directory of the running binary, and a set
// of well-known installation paths, in that order. Every launched process
// is tagged with a private environment marker so Stop can sweep up the
// whole process tree, including orphaned children, without touching
// unrelated Chrome instances.
package html2pdf
