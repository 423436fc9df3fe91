package initramfs

import (
	"path/filepath"
	"slices"
	"strings"
)

// External tools.
const (
	dracutTool  = "dracut"
	installTool = "install"
	signTool    = "sbsign"
	sudoTool    = "sudo"
)

// Invocation is one external command issued for a target.
type Invocation struct {
	// Action is the progress label, e.g. "Building initramfs for".
	Action  string
	Version string
	Args    []string
}

func (inv Invocation) String() string {
	return strings.Join(inv.Args, " ")
}

// withVerbosity inserts the dracut verbosity flag right after the tool name.
// It must be applied before withPrivilege.
func (inv Invocation) withVerbosity(v Verbosity) Invocation {
	switch v {
	case Verbose:
		inv.Args = slices.Insert(inv.Args, 1, "-v")
	case Quiet:
		inv.Args = slices.Insert(inv.Args, 1, "-q")
	}
	return inv
}

// withPrivilege prepends sudo.
func (inv Invocation) withPrivilege(sudo bool) Invocation {
	if sudo {
		inv.Args = slices.Insert(inv.Args, 0, sudoTool)
	}
	return inv
}

// Artifact paths for a kernel package.
func initramfsImage(c BuildConfig, pkg string) string {
	return filepath.Join(c.Paths.BootDir, "initramfs-"+pkg+".img")
}

func fallbackImage(c BuildConfig, pkg string) string {
	return filepath.Join(c.Paths.BootDir, "initramfs-"+pkg+"-fallback.img")
}

func kernelImage(c BuildConfig, pkg string) string {
	return filepath.Join(c.Paths.BootDir, "vmlinuz-"+pkg)
}

func moduleKernelImage(c BuildConfig, version string) string {
	return filepath.Join(c.Paths.ModulesDir, version, "vmlinuz")
}

// Invocations returns the commands that build t under c, in execution order.
// The confirmation gate is not part of the plan.
func Invocations(t KernelTarget, c BuildConfig) []Invocation {
	plan := []Invocation{
		Invocation{
			Action:  "Building initramfs for",
			Version: t.Version,
			Args: []string{dracutTool, "-f", "--no-hostonly-cmdline", "-H",
				initramfsImage(c, t.Package), "--kver", t.Version},
		}.withVerbosity(c.Verbosity).withPrivilege(c.UseSudo),
	}

	if c.BuildFallback {
		plan = append(plan, Invocation{
			Action:  "Building fallback initramfs for",
			Version: t.Version,
			Args: []string{dracutTool, "-f", "-N",
				fallbackImage(c, t.Package), "--kver", t.Version},
		}.withVerbosity(c.Verbosity).withPrivilege(c.UseSudo))
	}

	// install creates parent directories and sets the mode in one step.
	plan = append(plan, Invocation{
		Action:  "Copying vmlinuz to " + c.Paths.BootDir + " for",
		Version: t.Version,
		Args: []string{installTool, "-Dm644",
			moduleKernelImage(c, t.Version), kernelImage(c, t.Package)},
	}.withPrivilege(c.UseSudo))

	if c.Signing() {
		dst := kernelImage(c, t.Package)
		plan = append(plan, Invocation{
			Action:  "Signing vmlinuz for",
			Version: t.Version,
			Args: []string{signTool, "--key", c.SigningKey, "--cert", c.SigningCert,
				"--output", dst, dst},
		}.withPrivilege(c.UseSudo))
	}

	return plan
}
