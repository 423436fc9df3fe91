//go:build !linux

package initramfs

// IsRoot reports whether the process runs with effective uid 0.
// On non-Linux platforms it always returns false.
func IsRoot() bool {
	return false
}

// KernelRelease returns the running kernel release string.
// On non-Linux platforms, the release is never available.
func KernelRelease() (string, error) {
	return "", ErrUnsupportedPlatform
}
