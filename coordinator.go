package initramfs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Report summarizes a run.
type Report struct {
	// Targets are the resolved targets in processing order.
	Targets  []KernelTarget
	Built    []KernelTarget
	Declined []KernelTarget
	// Skipped lists packages dropped for lack of a kernel version.
	Skipped []string
	Failed  []*TargetError
}

// Err combines all per-target failures, or returns nil.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Failed {
		err = multierr.Append(err, f)
	}
	return err
}

// Coordinator drives a full run over all requested kernels.
type Coordinator struct {
	Config    BuildConfig
	Runner    Runner
	Confirmer Confirmer
	Printer   *Printer

	// OpenDB opens the package database; defaults to [OpenLocalDB].
	OpenDB func(dbPath string) (PackageDB, error)
	// IsRoot reports elevated privileges; defaults to [IsRoot].
	IsRoot func() bool
}

// Targets resolves explicit package names through the package database, or
// discovers every installed kernel when names is empty.
// The returned error is fatal for the run.
func (c *Coordinator) Targets(names []string) ([]KernelTarget, error) {
	if len(names) == 0 {
		return Discover(c.Config.Paths.ModulesDir, c.Printer)
	}

	open := c.OpenDB
	if open == nil {
		open = func(path string) (PackageDB, error) { return OpenLocalDB(path) }
	}
	db, err := open(c.Config.Paths.DBPath)
	if err != nil {
		if errors.Is(err, ErrDatabase) {
			return nil, fmt.Errorf("%w: possible pacman database corruption", err)
		}
		return nil, err
	}
	return Resolve(db, names, c.Config.Paths.ManifestPrefix(), c.Printer), nil
}

// Run rebuilds the boot artifacts of every target named in names (or of all
// installed kernels). A failing target is reported and the run continues
// with the next one. Run returns an error only when the targets cannot be
// listed (unreadable modules directory or package database) or when ctx is
// cancelled.
func (c *Coordinator) Run(ctx context.Context, names []string) (*Report, error) {
	c.advise()

	targets, err := c.Targets(names)
	if err != nil {
		return nil, err
	}

	builder := &Builder{
		Config:    c.Config,
		Runner:    c.Runner,
		Confirmer: c.Confirmer,
		Printer:   c.Printer,
	}

	report := &Report{}
	for _, t := range targets {
		if !t.Valid() {
			c.Printer.Warnf("could not determine kernel version for %s, skipping", t.Package)
			report.Skipped = append(report.Skipped, t.Package)
			continue
		}
		report.Targets = append(report.Targets, t)

		err := builder.Build(ctx, t)
		var te *TargetError
		switch {
		case err == nil:
			report.Built = append(report.Built, t)
		case errors.Is(err, ErrDeclined):
			report.Declined = append(report.Declined, t)
		case ctx.Err() != nil:
			return report, ctx.Err()
		case errors.As(err, &te):
			c.Printer.Errorf("%v", te)
			report.Failed = append(report.Failed, te)
		default:
			te = &TargetError{Target: t, Action: "build", Err: err}
			c.Printer.Errorf("%v", te)
			report.Failed = append(report.Failed, te)
		}
	}

	return report, nil
}

// advise prints the one-time notices that precede any work.
func (c *Coordinator) advise() {
	isRoot := c.IsRoot
	if isRoot == nil {
		isRoot = IsRoot
	}
	if isRoot() && !c.Config.Hook {
		c.Printer.Warnf("running with root privileges outside of hook mode; use --hook when invoked from a pacman hook")
	}

	if c.Config.SigningMisconfigured() {
		c.Printer.Warnf("must provide both key and certificate path to sign images, signing disabled")
	}

	if c.Config.Verbosity >= Verbose {
		c.Printer.Infof("Running in verbose mode...")
		if release, err := KernelRelease(); err == nil {
			c.Printer.Infof("Running kernel: %s", release)
		}
	}
}
