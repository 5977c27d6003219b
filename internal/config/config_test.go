package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-html2pdf/internal/config"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestLoadConfig - Loads and validates YAML config files
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("valid config loads all sections", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "conv.yaml", `
chrome:
  windowSize: fhd
  userAgent: html2pdf-test
page:
  format: a4
  landscape: true
  scale: 1.2
  pageRanges: "1-3, 7"
conversion:
  timeout: 120
  waitForStatus: ready
  workers: 4
output:
  defaultDir: /tmp/out
`)
		cfg, err := config.LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Chrome.WindowSize != "fhd" {
			t.Errorf("Chrome.WindowSize = %q, want %q", cfg.Chrome.WindowSize, "fhd")
		}
		if cfg.Page.Format != "a4" || !cfg.Page.Landscape || cfg.Page.Scale != 1.2 {
			t.Errorf("unexpected page config: %+v", cfg.Page)
		}
		if cfg.Conversion.Timeout != 120 || cfg.Conversion.WaitForStatus != "ready" {
			t.Errorf("unexpected conversion config: %+v", cfg.Conversion)
		}
		if cfg.Output.DefaultDir != "/tmp/out" {
			t.Errorf("Output.DefaultDir = %q, want /tmp/out", cfg.Output.DefaultDir)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := config.LoadConfig(""); !errors.Is(err, config.ErrEmptyConfigName) {
			t.Errorf("errors.Is(err, ErrEmptyConfigName) = false, got: %v", err)
		}
	})

	t.Run("missing file reports ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("errors.Is(err, ErrConfigNotFound) = false, got: %v", err)
		}
	})

	t.Run("unknown field reports ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "page:\n  papersize: a4\n")
		_, err := config.LoadConfig(path)
		if !errors.Is(err, config.ErrConfigParse) {
			t.Errorf("errors.Is(err, ErrConfigParse) = false, got: %v", err)
		}
	})

	t.Run("invalid YAML reports ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "broken.yaml", "page: [unclosed")
		_, err := config.LoadConfig(path)
		if !errors.Is(err, config.ErrConfigParse) {
			t.Errorf("errors.Is(err, ErrConfigParse) = false, got: %v", err)
		}
	})

	t.Run("invalid values rejected by validation", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "neg.yaml", "conversion:\n  timeout: -5\n")
		_, err := config.LoadConfig(path)
		if err == nil || !strings.Contains(err.Error(), "conversion.timeout") {
			t.Errorf("error = %v, want mention of conversion.timeout", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestValidate - Field length and range checks
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "default config is valid",
			mutate: func(*config.Config) {},
		},
		{
			name: "oversized user agent",
			mutate: func(c *config.Config) {
				c.Chrome.UserAgent = strings.Repeat("x", config.MaxUserAgentLength+1)
			},
			wantErr: "chrome.userAgent",
		},
		{
			name: "oversized page ranges",
			mutate: func(c *config.Config) {
				c.Page.PageRanges = strings.Repeat("1,", config.MaxRangesLength)
			},
			wantErr: "page.pageRanges",
		},
		{
			name: "negative margin",
			mutate: func(c *config.Config) {
				c.Page.MarginLeft = -0.1
			},
			wantErr: "page.marginLeft",
		},
		{
			name: "negative scale",
			mutate: func(c *config.Config) {
				c.Page.Scale = -1
			},
			wantErr: "page.scale",
		},
		{
			name: "negative workers",
			mutate: func(c *config.Config) {
				c.Conversion.Workers = -2
			},
			wantErr: "conversion.workers",
		},
		{
			name: "negative startup timeout",
			mutate: func(c *config.Config) {
				c.Chrome.StartupTimeout = -1
			},
			wantErr: "chrome.startupTimeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error mentioning %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolveByName - Config name resolution in the working directory
// ---------------------------------------------------------------------------

func TestResolveByName(t *testing.T) {
	// Changes working directory, so no t.Parallel.
	dir := t.TempDir()
	writeConfig(t, dir, "archive.yml", "page:\n  format: legal\n")
	t.Chdir(dir)

	cfg, err := config.LoadConfig("archive")
	if err != nil {
		t.Fatalf("LoadConfig by name failed: %v", err)
	}
	if cfg.Page.Format != "legal" {
		t.Errorf("Page.Format = %q, want %q", cfg.Page.Format, "legal")
	}
}
