package initramfs

import (
	"context"
	"fmt"
)

// Builder rebuilds the boot artifacts of one kernel target at a time.
type Builder struct {
	Config    BuildConfig
	Runner    Runner
	Confirmer Confirmer
	Printer   *Printer
}

// Build asks for confirmation (unless Config.AutoConfirm is set) and then
// runs the plan returned by [Invocations] for t.
//
// It returns [ErrDeclined] when the user answers "no", and a *[TargetError]
// for the first step that fails; later steps of t are not run.
// In dry-run mode each command line is printed and Runner is never used.
func (b *Builder) Build(ctx context.Context, t KernelTarget) error {
	if !t.Valid() {
		return &TargetError{Target: t, Action: "resolve", Err: fmt.Errorf("unresolved kernel version")}
	}

	if !b.Config.AutoConfirm {
		b.Printer.Prompt("Rebuild initramfs for: %s", t.Package)
		ok, err := b.Confirmer.Confirm("Continue (Y/n)? ")
		if err != nil {
			b.Printer.Warnf("no answer for %s: %v", t.Package, err)
		}
		if !ok {
			b.Printer.Infof("Not rebuilding initramfs for %s", t.Version)
			return ErrDeclined
		}
	}

	runner := b.Runner
	if b.Config.DryRun {
		runner = DryRunner{Out: b.Printer.Out}
	}

	for _, inv := range Invocations(t, b.Config) {
		if err := ctx.Err(); err != nil {
			return err
		}

		b.Printer.Action(inv.Action, inv.Version)
		b.Printer.Command(inv.Args)

		if err := runner.Run(ctx, inv.Args); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TargetError{Target: t, Action: inv.Action, Err: err}
		}
	}
	return nil
}
