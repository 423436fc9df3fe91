package initramfs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDatabase is returned when the local package database cannot be opened.
	// Callers should treat it as possible database corruption and stop.
	ErrDatabase = errors.New("cannot read package database")

	// ErrPackageNotFound is returned when a package is not installed.
	ErrPackageNotFound = errors.New("package not found")

	// ErrDeclined is returned by [Builder.Build] when the user answers "no"
	// at the confirmation prompt.
	ErrDeclined = errors.New("declined by user")

	// ErrUnsupportedPlatform is returned by host probes on non-Linux systems.
	ErrUnsupportedPlatform = errors.New("unsupported platform (requires Linux)")
)

// KernelTarget identifies one installed kernel to rebuild artifacts for.
type KernelTarget struct {
	// Package is the kernel package base name (e.g., "linux-lts").
	Package string `json:"package"`
	// Version is the kernel release, i.e. the modules directory name.
	Version string `json:"version"`
}

// Valid reports whether the target has a resolved version.
func (t KernelTarget) Valid() bool {
	return t.Version != ""
}

func (t KernelTarget) String() string {
	if t.Version == "" {
		return t.Package
	}
	return t.Package + " (" + t.Version + ")"
}

// Verbosity controls how much progress output a run produces.
type Verbosity int

const (
	// Quiet prints warnings and errors only and passes -q to dracut.
	Quiet Verbosity = iota
	// Normal prints one line per step.
	Normal
	// Verbose prints every command line and passes -v to dracut.
	Verbose
)

var verbosityNames = map[Verbosity][]string{
	Quiet:   {"quiet"},
	Normal:  {"normal"},
	Verbose: {"verbose"},
}

func (v Verbosity) String() string {
	if names, ok := verbosityNames[v]; ok {
		return names[0]
	}
	return fmt.Sprintf("Verbosity(%d)", v)
}

// Paths holds the filesystem locations a run reads from and writes to.
type Paths struct {
	// ModulesDir holds one subdirectory per installed kernel.
	ModulesDir string
	// BootDir receives initramfs images and kernel images.
	BootDir string
	// DBPath is the pacman database root (the directory containing "local").
	DBPath string
}

// Default filesystem locations on an Arch Linux system.
const (
	DefaultModulesDir = "/usr/lib/modules"
	DefaultBootDir    = "/boot"
	DefaultDBPath     = "/var/lib/pacman"
)

// DefaultPaths returns the standard system locations.
func DefaultPaths() Paths {
	return Paths{
		ModulesDir: DefaultModulesDir,
		BootDir:    DefaultBootDir,
		DBPath:     DefaultDBPath,
	}
}

// ManifestPrefix returns the modules directory as it is recorded in package
// file manifests: relative to "/" and with a trailing slash.
func (p Paths) ManifestPrefix() string {
	return strings.TrimPrefix(strings.TrimSuffix(p.ModulesDir, "/"), "/") + "/"
}

// BuildConfig is the immutable configuration of a single run.
type BuildConfig struct {
	Verbosity     Verbosity
	DryRun        bool
	BuildFallback bool
	// UseSudo prefixes every command with sudo.
	UseSudo bool
	// AutoConfirm skips the per-target confirmation prompt.
	AutoConfirm bool
	// Hook marks a non-interactive run from a package manager hook.
	Hook        bool
	SigningKey  string
	SigningCert string
	Paths       Paths
}

// Signing reports whether kernel images are signed.
// Both a key and a certificate are required.
func (c BuildConfig) Signing() bool {
	return c.SigningKey != "" && c.SigningCert != ""
}

// SigningMisconfigured reports whether exactly one of key and certificate is set.
// Signing is disabled in that case.
func (c BuildConfig) SigningMisconfigured() bool {
	return (c.SigningKey == "") != (c.SigningCert == "")
}

// TargetError reports a failed step while building a [KernelTarget].
type TargetError struct {
	Target KernelTarget
	Action string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Target, e.Action, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// ExitError reports an external command that exited with a non-zero status.
type ExitError struct {
	Argv []string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%q exited with status %d", strings.Join(e.Argv, " "), e.Code)
}

// RequirementError represents a host requirement that is not satisfied.
type RequirementError struct {
	Requirement string
	Reason      string
	Err         error
}

func (e *RequirementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("requirement %s: %s: %v", e.Requirement, e.Reason, e.Err)
	}
	return fmt.Sprintf("requirement %s: %s", e.Requirement, e.Reason)
}

func (e *RequirementError) Unwrap() error {
	return e.Err
}
