// Package config loads YAML configuration for the html2pdf CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Field length limits.
const (
	MaxPathLength      = 4096 // OS path limit
	MaxURLLength       = 2048 // Browser limit
	MaxUserAgentLength = 512
	MaxFormatLength    = 10 // "letter", "a4", "custom"
	MaxWindowLength    = 10 // "svga", "fhd", "uhd"
	MaxEncodingLength  = 40 // IANA charset name
	MaxRangesLength    = 200
	MaxStatusLength    = 100 // window.status sentinel value
)

// Config holds all configuration for the converter CLI.
type Config struct {
	Chrome     ChromeConfig     `yaml:"chrome"`
	Page       PageConfig       `yaml:"page"`
	Conversion ConversionConfig `yaml:"conversion"`
	Output     OutputConfig     `yaml:"output"`
}

// ChromeConfig defines how the browser process is launched.
type ChromeConfig struct {
	Path            string `yaml:"path"`            // Executable override (empty = auto-detect)
	WindowSize      string `yaml:"windowSize"`      // "svga", "xga", "hd", "fhd", "qhd", "uhd"
	ProxyServer     string `yaml:"proxyServer"`     // Forwarded to --proxy-server
	ProxyBypassList string `yaml:"proxyBypassList"` // Forwarded to --proxy-bypass-list
	ProxyPACURL     string `yaml:"proxyPacUrl"`     // Forwarded to --proxy-pac-url
	UserAgent       string `yaml:"userAgent"`
	UserDataDir     string `yaml:"userDataDir"`
	StartupTimeout  int    `yaml:"startupTimeout"` // Seconds (0 = default)
}

// PageConfig defines default PDF page settings.
type PageConfig struct {
	Format          string  `yaml:"format"`    // "letter", "a4", ... (default: "letter")
	Landscape       bool    `yaml:"landscape"` // Orientation
	Scale           float64 `yaml:"scale"`     // 0 = default 1.0
	MarginTop       float64 `yaml:"marginTop"` // inches; 0 means unset, use library default
	MarginBottom    float64 `yaml:"marginBottom"`
	MarginLeft      float64 `yaml:"marginLeft"`
	MarginRight     float64 `yaml:"marginRight"`
	PageRanges      string  `yaml:"pageRanges"` // "1-5, 8"
	PrintBackground bool    `yaml:"printBackground"`
	HeaderFooter    bool    `yaml:"headerFooter"`
}

// ConversionConfig defines per-conversion behavior.
type ConversionConfig struct {
	Timeout              int    `yaml:"timeout"`              // Seconds, 0 = no deadline
	WaitForStatus        string `yaml:"waitForStatus"`        // Expected window.status value (empty = off)
	WaitForStatusTimeout int    `yaml:"waitForStatusTimeout"` // Seconds, 0 = default
	Encoding             string `yaml:"encoding"`             // Forced charset (empty = detect)
	Workers              int    `yaml:"workers"`              // Batch concurrency, 0 = auto
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = same directory as the input
}

// Validate checks field lengths and value ranges. Called automatically by
// LoadConfig, but available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("chrome.path", c.Chrome.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("chrome.windowSize", c.Chrome.WindowSize, MaxWindowLength); err != nil {
		return err
	}
	if err := validateFieldLength("chrome.proxyServer", c.Chrome.ProxyServer, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("chrome.proxyBypassList", c.Chrome.ProxyBypassList, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("chrome.proxyPacUrl", c.Chrome.ProxyPACURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("chrome.userAgent", c.Chrome.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if err := validateFieldLength("chrome.userDataDir", c.Chrome.UserDataDir, MaxPathLength); err != nil {
		return err
	}
	if c.Chrome.StartupTimeout < 0 {
		return fmt.Errorf("chrome.startupTimeout: must be non-negative, got %d", c.Chrome.StartupTimeout)
	}

	if err := validateFieldLength("page.format", c.Page.Format, MaxFormatLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.pageRanges", c.Page.PageRanges, MaxRangesLength); err != nil {
		return err
	}
	if c.Page.Scale < 0 {
		return fmt.Errorf("page.scale: must be non-negative, got %.2f", c.Page.Scale)
	}
	for name, margin := range map[string]float64{
		"page.marginTop":    c.Page.MarginTop,
		"page.marginBottom": c.Page.MarginBottom,
		"page.marginLeft":   c.Page.MarginLeft,
		"page.marginRight":  c.Page.MarginRight,
	} {
		if margin < 0 {
			return fmt.Errorf("%s: must be non-negative, got %.2f", name, margin)
		}
	}

	if err := validateFieldLength("conversion.waitForStatus", c.Conversion.WaitForStatus, MaxStatusLength); err != nil {
		return err
	}
	if err := validateFieldLength("conversion.encoding", c.Conversion.Encoding, MaxEncodingLength); err != nil {
		return err
	}
	if c.Conversion.Timeout < 0 {
		return fmt.Errorf("conversion.timeout: must be non-negative, got %d", c.Conversion.Timeout)
	}
	if c.Conversion.WaitForStatusTimeout < 0 {
		return fmt.Errorf("conversion.waitForStatusTimeout: must be non-negative, got %d", c.Conversion.WaitForStatusTimeout)
	}
	if c.Conversion.Workers < 0 {
		return fmt.Errorf("conversion.workers: must be non-negative, got %d", c.Conversion.Workers)
	}

	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration relying on library defaults.
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{Format: "letter"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-html2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-html2pdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
