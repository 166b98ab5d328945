//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setNewProcessGroup places the child in its own process group so the whole
// subtree can be signaled together.
func setNewProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup forcefully kills the child's entire process group,
// catching any descendants it spawned. Falls back to killing only the
// tracked process when the group id cannot be read.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Kill()
	}
	return syscall.Kill(-pgid, syscall.SIGKILL)
}
