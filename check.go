package initramfs

import (
	"fmt"
	"os"
	"os/exec"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Requirements lists the host requirements a run with c depends on, in the
// order [Check] evaluates them.
func Requirements(c BuildConfig) []string {
	reqs := []string{dracutTool, installTool}
	if c.Signing() {
		reqs = append(reqs, signTool, "signing key", "signing certificate")
	}
	if c.UseSudo {
		reqs = append(reqs, sudoTool)
	}
	return append(reqs, "modules directory")
}

// Check validates that the host can run the commands planned for c and
// returns a *[RequirementError] for the first unsatisfied requirement, or
// nil if all are met. Nothing is executed.
func Check(c BuildConfig) error {
	for _, req := range Requirements(c) {
		if err := checkRequirement(c, req); err != nil {
			return err
		}
	}
	return nil
}

func checkRequirement(c BuildConfig, req string) error {
	switch req {
	case "signing key":
		return checkReadable(req, c.SigningKey)
	case "signing certificate":
		return checkReadable(req, c.SigningCert)
	case "modules directory":
		info, err := os.Stat(c.Paths.ModulesDir)
		if err != nil {
			return &RequirementError{Requirement: req, Reason: fmt.Sprintf("cannot access %s", c.Paths.ModulesDir), Err: err}
		}
		if !info.IsDir() {
			return &RequirementError{Requirement: req, Reason: fmt.Sprintf("%s is not a directory", c.Paths.ModulesDir)}
		}
		return nil
	default:
		if _, err := lookPath(req); err != nil {
			return &RequirementError{Requirement: req, Reason: Diagnose(req), Err: err}
		}
		return nil
	}
}

func checkReadable(req, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &RequirementError{Requirement: req, Reason: fmt.Sprintf("cannot read %s", path), Err: err}
	}
	return f.Close()
}

// Diagnose returns a hint explaining how to provide a missing tool.
func Diagnose(tool string) string {
	switch tool {
	case dracutTool:
		return "dracut not found in PATH; install it with pacman -S dracut"
	case installTool:
		return "install not found in PATH; it is provided by coreutils"
	case signTool:
		return "sbsign not found in PATH; install it with pacman -S sbsigntools"
	case sudoTool:
		return "sudo not found in PATH; install sudo or run as root"
	}
	return fmt.Sprintf("%s not found in PATH", tool)
}
