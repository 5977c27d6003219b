//go:build linux

package process

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
)

// FindMarked scans /proc for processes whose environment contains
// key=value. Unreadable entries (permissions, races with process exit)
// are skipped silently.
func FindMarked(key, value string) []int {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}

	needle := []byte(key + "=" + value)
	var pids []int
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		environ, err := os.ReadFile(filepath.Join("/proc", e.Name(), "environ"))
		if err != nil {
			continue
		}
		for _, kv := range bytes.Split(environ, []byte{0}) {
			if bytes.Equal(kv, needle) {
				pids = append(pids, pid)
				break
			}
		}
	}
	return pids
}
