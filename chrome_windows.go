//go:build windows

package html2pdf

import (
	"os"
	"os/exec"
)

// setProcAttributes is a no-op on Windows; taskkill /T handles the tree.
func setProcAttributes(cmd *exec.Cmd) {}

// gracefulSignal: Windows has no SIGTERM equivalent for console-less
// processes, so Stop goes straight to the forced kill path.
func gracefulSignal(p *os.Process) {
	_ = p.Kill()
}
