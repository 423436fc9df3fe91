package initramfs

import (
	"errors"
	"strings"
)

// Resolve looks up each name in db and returns one target per installed
// package, in the order requested.
// Packages that are not installed are reported and skipped. The version of
// each target is taken from the package file list; it is empty when the
// package ships no modules directory, and callers must drop such targets.
func Resolve(db PackageDB, names []string, modulesPrefix string, p *Printer) []KernelTarget {
	var targets []KernelTarget
	for _, name := range names {
		pkg, err := db.Package(name)
		if err != nil {
			if errors.Is(err, ErrPackageNotFound) {
				p.Warnf("%s is not an installed kernel!", name)
			} else {
				p.Warnf("cannot look up %s: %v", name, err)
			}
			continue
		}
		targets = append(targets, KernelTarget{
			Package: name,
			Version: KernelVersion(pkg.Files, modulesPrefix),
		})
	}
	return targets
}

// KernelVersion extracts the kernel release from a package file list.
// The first entry below prefix (e.g., "usr/lib/modules/") decides: the
// release is its second-to-last path segment, which for the directory
// entry "usr/lib/modules/6.1.1-arch1-1/" is "6.1.1-arch1-1".
// It returns "" when no entry is below prefix.
func KernelVersion(files []string, prefix string) string {
	for _, path := range files {
		if !strings.HasPrefix(path, prefix) || path == prefix {
			continue
		}
		segments := strings.Split(path, "/")
		if len(segments) < 2 {
			return ""
		}
		return segments[len(segments)-2]
	}
	return ""
}
