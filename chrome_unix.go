//go:build !windows

package html2pdf

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcAttributes puts the browser in its own process group so the whole
// tree can be killed with one signal to the negative PID.
func setProcAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// gracefulSignal asks the browser to shut down cleanly before Stop escalates.
func gracefulSignal(p *os.Process) {
	_ = p.Signal(syscall.SIGTERM)
}
