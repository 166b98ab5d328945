//go:build windows

package runner

import "os/exec"

// Process groups are a POSIX concept; on Windows only the tracked process is
// signaled.
func setNewProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
