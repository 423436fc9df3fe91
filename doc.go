// Package initramfs rebuilds initramfs images and kernel images in /boot
// after kernel package upgrades on pacman-based systems using dracut.
//
// The package decides which kernels to rebuild and which commands to run for
// each; the actual work is delegated to dracut, install(1) and sbsign.
//
// # Targets
//
// A [KernelTarget] pairs a kernel package name with its kernel release.
// Targets come from one of two sources:
//   - [Discover] scans the modules directory (/usr/lib/modules) and reads the
//     pkgbase marker of every installed kernel
//   - [Resolve] looks up explicitly named packages in the pacman local
//     database ([OpenLocalDB]) and takes the release from the package file list
//
// # Building
//
// [Builder] runs, per target:
//
//	dracut -f --no-hostonly-cmdline -H /boot/initramfs-<pkg>.img --kver <release>
//	dracut -f -N /boot/initramfs-<pkg>-fallback.img --kver <release>   (fallback only)
//	install -Dm644 /usr/lib/modules/<release>/vmlinuz /boot/vmlinuz-<pkg>
//	sbsign --key K --cert C --output /boot/vmlinuz-<pkg> /boot/vmlinuz-<pkg>   (signing only)
//
// Each command is prefixed with sudo when [BuildConfig].UseSudo is set, and
// dracut receives -v or -q depending on [Verbosity]. [Invocations] returns the
// exact plan without running it.
//
// # Running
//
// [Coordinator.Run] resolves the targets and builds them one by one:
//
//	c := &initramfs.Coordinator{
//	    Config:    cfg,
//	    Runner:    initramfs.NewExecRunner(),
//	    Confirmer: initramfs.NewTerminalConfirmer(),
//	    Printer:   initramfs.NewPrinter(cfg.Verbosity, true),
//	}
//	report, err := c.Run(ctx, []string{"linux", "linux-lts"})
//
// A failure while building one target is reported as a *[TargetError] in the
// [Report] and does not stop the others. Only an unreadable package database
// ([ErrDatabase]) or cancellation of ctx ends the run early.
package initramfs
