//go:build windows

package sandbox

import "os/exec"

func configureProcess(cmd *exec.Cmd, _ bool) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return cmd.Process.Kill()
	}
}
