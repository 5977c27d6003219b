package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

type sample struct {
	Paper   string  `yaml:"paper"`
	Scale   float64 `yaml:"scale"`
	Verbose bool    `yaml:"verbose"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Parses YAML into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "valid YAML",
			data: []byte("paper: a4\nscale: 1.5\nverbose: true"),
			dest: &sample{},
			check: func(t *testing.T, v any) {
				got := v.(*sample)
				if got.Paper != "a4" {
					t.Errorf("Paper = %q, want %q", got.Paper, "a4")
				}
				if got.Scale != 1.5 {
					t.Errorf("Scale = %v, want 1.5", got.Scale)
				}
				if !got.Verbose {
					t.Error("Verbose = false, want true")
				}
			},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &sample{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "empty data",
			data:    []byte{},
			dest:    &sample{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("paper: a4"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "invalid syntax",
			data:    []byte("paper: [unclosed"),
			dest:    &sample{},
			wantErr: errors.New("yamlutil:"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if errors.Is(err, tt.wantErr) {
					return
				}
				if !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Fatalf("error = %q, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	t.Run("known fields only", func(t *testing.T) {
		t.Parallel()

		var got sample
		if err := yamlutil.UnmarshalStrict([]byte("paper: letter\nscale: 0.8"), &got); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Paper != "letter" || got.Scale != 0.8 {
			t.Errorf("got %+v, want paper=letter scale=0.8", got)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()

		var got sample
		err := yamlutil.UnmarshalStrict([]byte("paper: a4\npapersize: a4"), &got)
		if err == nil {
			t.Fatal("expected error for unknown field, got nil")
		}
		if !strings.HasPrefix(err.Error(), "yamlutil:") {
			t.Errorf("error = %q, want yamlutil: prefix", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMarshal - Serializes and round-trips
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	original := sample{Paper: "legal", Scale: 2, Verbose: true}

	data, err := yamlutil.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "paper: legal") {
		t.Errorf("output missing 'paper: legal', got: %s", data)
	}

	var decoded sample
	if err := yamlutil.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip = %+v, want %+v", decoded, original)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Enforces MaxConfigSize
// ---------------------------------------------------------------------------

// Note: mutates the package-level MaxConfigSize, so no t.Parallel here.

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxConfigSize
	t.Cleanup(func() { yamlutil.MaxConfigSize = originalMax })

	yamlutil.MaxConfigSize = 64

	t.Run("input at limit succeeds", func(t *testing.T) {
		data := make([]byte, 64)
		copy(data, "paper: a4")
		var got sample
		if err := yamlutil.Unmarshal(data, &got); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("input over limit fails", func(t *testing.T) {
		data := make([]byte, 65)
		copy(data, "paper: a4")
		var got sample
		if err := yamlutil.Unmarshal(data, &got); !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
		}
	})
}
