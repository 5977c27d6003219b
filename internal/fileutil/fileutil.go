// Package fileutil provides file and path utilities for conversions,
// including the per-conversion scratch workspace.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Workspace is a per-conversion scratch directory. It is created lazily on
// first use and must be purged unconditionally when the conversion ends,
// whatever the outcome. Not safe for concurrent use; a workspace belongs
// to exactly one conversion.
type Workspace struct {
	dir     string
	created bool
}

// NewWorkspace returns a workspace that has not touched the filesystem yet.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Dir returns the workspace directory, creating it on first call. The name
// is unique per conversion so concurrent conversions never collide.
func (w *Workspace) Dir() (string, error) {
	if w.created {
		return w.dir, nil
	}
	dir := filepath.Join(os.TempDir(), "html2pdf-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating workspace: %w", err)
	}
	w.dir = dir
	w.created = true
	return dir, nil
}

// Created reports whether the directory exists on disk.
func (w *Workspace) Created() bool {
	return w.created
}

// Purge removes the workspace if it was ever created. Safe to call on an
// untouched workspace and after a previous purge.
func (w *Workspace) Purge() error {
	if !w.created {
		return nil
	}
	w.created = false
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("removing workspace: %w", err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsURL returns true if the string looks like a URL the browser can
// navigate to directly.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "file://")
}

// Extension returns the lower-cased file extension without the dot.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
