package initramfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// markerFile names the package owning a modules directory.
const markerFile = "pkgbase"

// Discover lists the kernels installed under modulesDir.
// Every subdirectory holding a non-empty pkgbase marker becomes a target,
// in directory listing order. Directories without a marker are leftover
// module trees of removed kernels; they are reported and skipped.
func Discover(modulesDir string, p *Printer) ([]KernelTarget, error) {
	entries, err := os.ReadDir(modulesDir)
	if err != nil {
		return nil, fmt.Errorf("list kernel modules: %w", err)
	}

	var targets []KernelTarget
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		version := e.Name()

		pkg, err := readMarker(filepath.Join(modulesDir, version, markerFile))
		if err != nil || pkg == "" {
			p.Warnf("%s is detected, but it is not an installed kernel!", version)
			continue
		}
		targets = append(targets, KernelTarget{Package: pkg, Version: version})
	}
	return targets, nil
}

// readMarker returns the first line of a pkgbase file.
func readMarker(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}
