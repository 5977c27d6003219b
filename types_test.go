package html2pdf

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPageSettings_Validate - Geometry and grammar checks
// ---------------------------------------------------------------------------

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings *PageSettings
		wantErr  error
	}{
		{
			name:     "nil settings are valid",
			settings: nil,
		},
		{
			name:     "defaults are valid",
			settings: DefaultPageSettings(),
		},
		{
			name:     "zero value defaults to letter",
			settings: &PageSettings{},
		},
		{
			name:     "every named format is known",
			settings: &PageSettings{Format: PaperA3},
		},
		{
			name:     "unknown format",
			settings: &PageSettings{Format: "b5"},
			wantErr:  ErrInvalidPaperFormat,
		},
		{
			name:     "custom format with dimensions",
			settings: &PageSettings{Format: PaperCustom, PaperWidth: 5, PaperHeight: 7},
		},
		{
			name:     "custom format without dimensions",
			settings: &PageSettings{Format: PaperCustom},
			wantErr:  ErrInvalidPaperFormat,
		},
		{
			name:     "scale at lower bound",
			settings: &PageSettings{Scale: MinScale},
		},
		{
			name:     "scale at upper bound",
			settings: &PageSettings{Scale: MaxScale},
		},
		{
			name:     "scale below bound",
			settings: &PageSettings{Scale: 0.05},
			wantErr:  ErrInvalidScale,
		},
		{
			name:     "scale above bound",
			settings: &PageSettings{Scale: 2.5},
			wantErr:  ErrInvalidScale,
		},
		{
			name:     "zero scale means renderer default",
			settings: &PageSettings{Scale: 0},
		},
		{
			name:     "negative margin",
			settings: &PageSettings{MarginLeft: -0.1},
			wantErr:  ErrInvalidMargin,
		},
		{
			name:     "single page range",
			settings: &PageSettings{PageRanges: "3"},
		},
		{
			name:     "mixed ranges with spaces",
			settings: &PageSettings{PageRanges: "1-5, 8, 11-13"},
		},
		{
			name:     "malformed ranges",
			settings: &PageSettings{PageRanges: "1-, 4"},
			wantErr:  ErrInvalidPageRanges,
		},
		{
			name:     "letters in ranges",
			settings: &PageSettings{PageRanges: "1-x"},
			wantErr:  ErrInvalidPageRanges,
		},
		{
			name:     "descending range",
			settings: &PageSettings{PageRanges: "8-5"},
			wantErr:  ErrInvalidPageRanges,
		},
		{
			name:     "descending range tolerated when requested",
			settings: &PageSettings{PageRanges: "8-5", IgnoreInvalidPageRanges: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.settings.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPaperDimensions - Named formats carry the standard sizes
// ---------------------------------------------------------------------------

func TestPaperDimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format PaperFormat
		width  float64
		height float64
	}{
		{PaperLetter, 8.5, 11},
		{PaperLegal, 8.5, 14},
		{PaperTabloid, 11, 17},
		{PaperLedger, 17, 11},
		{PaperA4, 8.27, 11.7},
		{PaperA5, 5.83, 8.27},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			p := &PageSettings{Format: tt.format}
			params := p.printParams()
			if params.PaperWidth != tt.width || params.PaperHeight != tt.height {
				t.Errorf("%s = %.2fx%.2f, want %.2fx%.2f",
					tt.format, params.PaperWidth, params.PaperHeight, tt.width, tt.height)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPrintParams - Settings map faithfully onto the wire call
// ---------------------------------------------------------------------------

func TestPrintParams(t *testing.T) {
	t.Parallel()

	t.Run("nil settings use defaults", func(t *testing.T) {
		t.Parallel()

		var p *PageSettings
		params := p.printParams()
		if params.PaperWidth != 8.5 || params.PaperHeight != 11 {
			t.Errorf("paper = %.2fx%.2f, want letter", params.PaperWidth, params.PaperHeight)
		}
		if params.MarginTop != DefaultMargin {
			t.Errorf("MarginTop = %.2f, want %.2f", params.MarginTop, DefaultMargin)
		}
	})

	t.Run("custom format passes explicit dimensions", func(t *testing.T) {
		t.Parallel()

		p := &PageSettings{Format: PaperCustom, PaperWidth: 4, PaperHeight: 6}
		params := p.printParams()
		if params.PaperWidth != 4 || params.PaperHeight != 6 {
			t.Errorf("paper = %.2fx%.2f, want 4.00x6.00", params.PaperWidth, params.PaperHeight)
		}
	})

	t.Run("page ranges are stripped of spaces", func(t *testing.T) {
		t.Parallel()

		p := &PageSettings{PageRanges: "1-5, 8, 11-13"}
		params := p.printParams()
		if params.PageRanges != "1-5,8,11-13" {
			t.Errorf("PageRanges = %q, want %q", params.PageRanges, "1-5,8,11-13")
		}
	})

	t.Run("flags carry through", func(t *testing.T) {
		t.Parallel()

		p := &PageSettings{Landscape: true, PrintBackground: true, DisplayHeaderFooter: true, Scale: 1.5}
		params := p.printParams()
		if !params.Landscape || !params.PrintBackground || !params.DisplayHeaderFooter {
			t.Errorf("boolean flags lost: %+v", params)
		}
		if params.Scale != 1.5 {
			t.Errorf("Scale = %.2f, want 1.5", params.Scale)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWindowDimensions - Named resolutions
// ---------------------------------------------------------------------------

func TestWindowDimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size   WindowSize
		width  int
		height int
	}{
		{WindowSizeSVGA, 800, 600},
		{WindowSizeHD, 1366, 768},
		{WindowSizeFHD, 1920, 1080},
		{WindowSizeUHD, 3840, 2160},
	}

	for _, tt := range tests {
		dims, ok := windowDimensions[tt.size]
		if !ok {
			t.Errorf("%s: not registered", tt.size)
			continue
		}
		if dims[0] != tt.width || dims[1] != tt.height {
			t.Errorf("%s = %dx%d, want %dx%d", tt.size, dims[0], dims[1], tt.width, tt.height)
		}
	}
}
