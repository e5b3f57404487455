//go:build unix && !linux

package sandbox

import (
	"os/exec"
	"syscall"
)

// Namespace isolation is Linux only; elsewhere the flag is ignored.
func configureProcess(cmd *exec.Cmd, _ bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
