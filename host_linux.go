//go:build linux

package initramfs

import "golang.org/x/sys/unix"

// IsRoot reports whether the process runs with effective uid 0.
func IsRoot() bool {
	return unix.Geteuid() == 0
}

// KernelRelease returns the running kernel release string (e.g., "6.17.0-1005-aws").
func KernelRelease() (string, error) {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(uname.Release[:]), nil
}
