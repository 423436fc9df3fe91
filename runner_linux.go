//go:build linux

package initramfs

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// isolate runs the child in its own process group and makes context
// cancellation kill the whole group rather than only the direct child.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
