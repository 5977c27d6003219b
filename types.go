package html2pdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-html2pdf/internal/cdp"
)

// PaperFormat names a fixed paper geometry.
type PaperFormat string

// Supported paper formats. PaperCustom uses the explicit PaperWidth and
// PaperHeight fields of PageSettings.
const (
	PaperLetter  PaperFormat = "letter"
	PaperLegal   PaperFormat = "legal"
	PaperTabloid PaperFormat = "tabloid"
	PaperLedger  PaperFormat = "ledger"
	PaperA0      PaperFormat = "a0"
	PaperA1      PaperFormat = "a1"
	PaperA2      PaperFormat = "a2"
	PaperA3      PaperFormat = "a3"
	PaperA4      PaperFormat = "a4"
	PaperA5      PaperFormat = "a5"
	PaperA6      PaperFormat = "a6"
	PaperCustom  PaperFormat = "custom"
)

// paperDimensions maps formats to {width, height} in inches. Pure data.
var paperDimensions = map[PaperFormat][2]float64{
	PaperLetter:  {8.5, 11},
	PaperLegal:   {8.5, 14},
	PaperTabloid: {11, 17},
	PaperLedger:  {17, 11},
	PaperA0:      {33.1, 46.8},
	PaperA1:      {23.4, 33.1},
	PaperA2:      {16.54, 23.4},
	PaperA3:      {11.7, 16.54},
	PaperA4:      {8.27, 11.7},
	PaperA5:      {5.83, 8.27},
	PaperA6:      {4.13, 5.83},
}

// WindowSize names one of the fixed viewport resolutions.
type WindowSize string

// Named viewport resolutions for the --window-size launch flag.
const (
	WindowSizeSVGA WindowSize = "svga"
	WindowSizeXGA  WindowSize = "xga"
	WindowSizeHD   WindowSize = "hd"
	WindowSizeFHD  WindowSize = "fhd"
	WindowSizeQHD  WindowSize = "qhd"
	WindowSizeUHD  WindowSize = "uhd"
)

// windowDimensions maps named resolutions to {width, height} in pixels.
var windowDimensions = map[WindowSize][2]int{
	WindowSizeSVGA: {800, 600},
	WindowSizeXGA:  {1024, 768},
	WindowSizeHD:   {1366, 768},
	WindowSizeFHD:  {1920, 1080},
	WindowSizeQHD:  {2560, 1440},
	WindowSizeUHD:  {3840, 2160},
}

// Margin and scale bounds, matching what Chrome's renderer accepts.
const (
	MinScale      = 0.1
	MaxScale      = 2.0
	DefaultMargin = 0.4 // inches, Chrome's native default (1cm)
)

// PageSettings configures the PDF render call. All dimensions are in
// inches. The zero value of Scale means Chrome's default (1.0).
type PageSettings struct {
	Landscape               bool
	DisplayHeaderFooter     bool
	PrintBackground         bool
	Scale                   float64
	Format                  PaperFormat // "" = letter
	PaperWidth              float64     // used when Format == PaperCustom
	PaperHeight             float64     // used when Format == PaperCustom
	MarginTop               float64
	MarginBottom            float64
	MarginLeft              float64
	MarginRight             float64
	PageRanges              string // e.g. "1-5, 8, 11-13"; "" = all pages
	IgnoreInvalidPageRanges bool
}

// DefaultPageSettings returns letter-sized portrait settings with Chrome's
// default margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Format:       PaperLetter,
		MarginTop:    DefaultMargin,
		MarginBottom: DefaultMargin,
		MarginLeft:   DefaultMargin,
		MarginRight:  DefaultMargin,
	}
}

// pageRangesPattern accepts comma-separated page numbers and ranges.
var pageRangesPattern = regexp.MustCompile(`^\d+(-\d+)?(\s*,\s*\d+(-\d+)?)*$`)

// Validate checks that page settings are renderable. Returns nil if p is
// nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	format := p.Format
	if format == "" {
		format = PaperLetter
	}
	if _, known := paperDimensions[format]; !known && format != PaperCustom {
		return fmt.Errorf("%w: %q", ErrInvalidPaperFormat, p.Format)
	}
	if format == PaperCustom && (p.PaperWidth <= 0 || p.PaperHeight <= 0) {
		return fmt.Errorf("%w: custom format requires positive width and height, got %.2fx%.2f",
			ErrInvalidPaperFormat, p.PaperWidth, p.PaperHeight)
	}

	if p.Scale != 0 && (p.Scale < MinScale || p.Scale > MaxScale) {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidScale, p.Scale, MinScale, MaxScale)
	}

	for _, m := range []struct {
		name  string
		value float64
	}{
		{"top", p.MarginTop},
		{"bottom", p.MarginBottom},
		{"left", p.MarginLeft},
		{"right", p.MarginRight},
	} {
		if m.value < 0 {
			return fmt.Errorf("%w: %s margin %.2f is negative", ErrInvalidMargin, m.name, m.value)
		}
	}

	if p.PageRanges != "" {
		if err := validatePageRanges(p.PageRanges, p.IgnoreInvalidPageRanges); err != nil {
			return err
		}
	}

	return nil
}

// validatePageRanges checks the "1-5, 8, 11-13" grammar. Descending ranges
// like "8-5" are rejected unless the tolerance flag is set; ranges beyond
// the document's last page are always left to the renderer to resolve.
func validatePageRanges(ranges string, tolerant bool) error {
	if !pageRangesPattern.MatchString(strings.TrimSpace(ranges)) {
		return fmt.Errorf("%w: %q", ErrInvalidPageRanges, ranges)
	}
	if tolerant {
		return nil
	}
	for _, part := range strings.Split(ranges, ",") {
		lo, hi, found := strings.Cut(strings.TrimSpace(part), "-")
		if !found {
			continue
		}
		a, _ := strconv.Atoi(strings.TrimSpace(lo))
		b, _ := strconv.Atoi(strings.TrimSpace(hi))
		if a > b {
			return fmt.Errorf("%w: descending range %q", ErrInvalidPageRanges, strings.TrimSpace(part))
		}
	}
	return nil
}

// printParams maps the settings onto the wire-level render call.
func (p *PageSettings) printParams() cdp.PrintToPDFParams {
	if p == nil {
		p = DefaultPageSettings()
	}

	format := p.Format
	if format == "" {
		format = PaperLetter
	}
	width, height := p.PaperWidth, p.PaperHeight
	if dims, known := paperDimensions[format]; known {
		width, height = dims[0], dims[1]
	}

	return cdp.PrintToPDFParams{
		Landscape:               p.Landscape,
		DisplayHeaderFooter:     p.DisplayHeaderFooter,
		PrintBackground:         p.PrintBackground,
		Scale:                   p.Scale,
		PaperWidth:              width,
		PaperHeight:             height,
		MarginTop:               p.MarginTop,
		MarginBottom:            p.MarginBottom,
		MarginLeft:              p.MarginLeft,
		MarginRight:             p.MarginRight,
		PageRanges:              strings.ReplaceAll(p.PageRanges, " ", ""),
		IgnoreInvalidPageRanges: p.IgnoreInvalidPageRanges,
	}
}
