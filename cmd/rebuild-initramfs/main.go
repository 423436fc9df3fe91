package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leodido/structcli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	initramfs "github.com/xuanruiqi/rebuild-initramfs-dracut-arch"
)

// Build metadata injected via ldflags.
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

// isRoot is replaced in tests.
var isRoot = initramfs.IsRoot

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "\nInterrupted.")
		os.Exit(130)
	}
	if err != nil {
		initramfs.NewPrinter(initramfs.Normal, !noColors(root)).Errorf("%v", err)
		os.Exit(1)
	}
}

// noColors reports whether --no-colors was given to the root command.
func noColors(root *cobra.Command) bool {
	v, err := root.Flags().GetBool("no-colors")
	return err == nil && v
}

func newRootCmd() *cobra.Command {
	opts := &RebuildOptions{}

	root := &cobra.Command{
		Use:   "rebuild-initramfs [flags] [kernel package names...]",
		Short: "Rebuild some (or all) initramfs images using dracut",
		Long: `rebuild-initramfs regenerates the dracut initramfs images of installed kernels,
copies each kernel image into /boot and optionally signs it for Secure Boot.

Without arguments every kernel found under /usr/lib/modules is rebuilt.
Settings are read from ` + initramfs.DefaultConfigPath + `; flags take precedence.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return runRebuild(c, opts, args)
		},
	}

	if err := opts.Attach(root); err != nil {
		panic(err)
	}
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")
	root.MarkFlagsMutuallyExclusive("build-fallback", "no-fallback")

	root.AddCommand(listCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(versionCmd())
	return root
}

// RebuildOptions defines flags for the root command.
type RebuildOptions struct {
	Yes           bool   `flag:"yes" flagshort:"y" flagdescr:"Say yes to all questions"`
	Verbose       bool   `flag:"verbose" flagshort:"v" flagdescr:"Be more verbose"`
	Quiet         bool   `flag:"quiet" flagshort:"q" flagdescr:"Be quiet (mutually exclusive with --verbose)"`
	Hook          bool   `flag:"hook" flagshort:"k" flagdescr:"Non-interactive mode for pacman hooks; implies --yes and suppresses the root warning"`
	Key           string `flag:"key" flagdescr:"Machine Owner Key (MOK) used to sign the kernel image for Secure Boot"`
	Cert          string `flag:"cert" flagdescr:"MOK certificate used to sign the kernel image for Secure Boot"`
	NoColors      bool   `flag:"no-colors" flagdescr:"Don't use colors"`
	BuildFallback bool   `flag:"build-fallback" flagdescr:"Build fallback initramfs images"`
	NoFallback    bool   `flag:"no-fallback" flagdescr:"Don't build fallback initramfs images"`
	DryRun        bool   `flag:"dry-run" flagshort:"n" flagdescr:"Print the commands instead of running them"`
	Config        string `flag:"config" flagshort:"c" flagdescr:"Configuration file (default /etc/rebuild-initramfs.yaml)"`
}

func (o *RebuildOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

// buildConfig merges defaults, the configuration file and the flags that
// were set on the command line, in increasing order of precedence.
func (o *RebuildOptions) buildConfig(fs *pflag.FlagSet) (initramfs.BuildConfig, error) {
	fc, err := initramfs.LoadFileConfig(configPath(o.Config))
	if err != nil {
		return initramfs.BuildConfig{}, err
	}
	cfg, err := fc.BuildConfig()
	if err != nil {
		return initramfs.BuildConfig{}, err
	}

	switch {
	case o.Quiet:
		cfg.Verbosity = initramfs.Quiet
	case o.Verbose:
		cfg.Verbosity = initramfs.Verbose
	}

	if fs.Changed("key") {
		cfg.SigningKey = o.Key
	}
	if fs.Changed("cert") {
		cfg.SigningCert = o.Cert
	}

	if o.BuildFallback {
		cfg.BuildFallback = true
	}
	if o.NoFallback {
		cfg.BuildFallback = false
	}

	cfg.Hook = o.Hook
	cfg.AutoConfirm = o.Yes || o.Hook
	cfg.DryRun = o.DryRun
	cfg.UseSudo = !isRoot()

	return cfg, nil
}

func configPath(p string) string {
	if p == "" {
		return initramfs.DefaultConfigPath
	}
	return p
}

func runRebuild(c *cobra.Command, opts *RebuildOptions, args []string) error {
	cfg, err := opts.buildConfig(c.Flags())
	if err != nil {
		return err
	}

	p := newPrinter(c, cfg.Verbosity, !opts.NoColors)

	var confirmer initramfs.Confirmer = initramfs.AutoConfirm{}
	if !cfg.AutoConfirm {
		confirmer = initramfs.NewPromptConfirmer(c.InOrStdin(), c.OutOrStdout())
	}

	coord := &initramfs.Coordinator{
		Config:    cfg,
		Runner:    &initramfs.ExecRunner{Stdin: c.InOrStdin(), Stdout: c.OutOrStdout(), Stderr: c.ErrOrStderr()},
		Confirmer: confirmer,
		Printer:   p,
		IsRoot:    isRoot,
	}

	report, err := coord.Run(c.Context(), args)
	if err != nil {
		return err
	}

	summarize(p, report)
	return nil
}

// summarize warns about the kernels that failed to rebuild.
func summarize(p *initramfs.Printer, report *initramfs.Report) {
	if err := report.Err(); err != nil {
		p.Warnf("%d of %d kernel(s) failed to rebuild: %v", len(report.Failed), len(report.Targets), err)
	}
}

func newPrinter(c *cobra.Command, v initramfs.Verbosity, useColor bool) *initramfs.Printer {
	out, errOut := c.OutOrStdout(), c.ErrOrStderr()
	return &initramfs.Printer{
		Out:       out,
		Err:       errOut,
		Color:     initramfs.Colorable(out, useColor),
		ErrColor:  initramfs.Colorable(errOut, useColor),
		Verbosity: v,
	}
}

// ListOptions defines flags for the list subcommand.
type ListOptions struct {
	JSON   bool   `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
	Config string `flag:"config" flagshort:"c" flagdescr:"Configuration file (default /etc/rebuild-initramfs.yaml)"`
}

func (o *ListOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func listCmd() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list [kernel package names...]",
		Short: "Show the kernels that would be rebuilt",
		Args:  cobra.ArbitraryArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			fc, err := initramfs.LoadFileConfig(configPath(opts.Config))
			if err != nil {
				return err
			}
			cfg, err := fc.BuildConfig()
			if err != nil {
				return err
			}

			coord := &initramfs.Coordinator{Config: cfg, Printer: newPrinter(c, cfg.Verbosity, false)}
			targets, err := coord.Targets(args)
			if err != nil {
				return err
			}

			if opts.JSON {
				if targets == nil {
					targets = []initramfs.KernelTarget{}
				}
				return printJSON(c.OutOrStdout(), targets)
			}

			for _, t := range targets {
				v := t.Version
				if v == "" {
					v = "(unknown)"
				}
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", t.Package, v)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// CheckOptions defines flags for the check subcommand.
type CheckOptions struct {
	JSON   bool   `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
	Config string `flag:"config" flagshort:"c" flagdescr:"Configuration file (default /etc/rebuild-initramfs.yaml)"`
}

func (o *CheckOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func checkCmd() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the tools and files a rebuild needs are available",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			fc, err := initramfs.LoadFileConfig(configPath(opts.Config))
			if err != nil {
				return err
			}
			cfg, err := fc.BuildConfig()
			if err != nil {
				return err
			}
			cfg.UseSudo = !isRoot()

			err = initramfs.Check(cfg)
			if err != nil {
				var re *initramfs.RequirementError
				if opts.JSON && errors.As(err, &re) {
					return printJSON(c.OutOrStdout(), map[string]any{
						"ok":          false,
						"requirement": re.Requirement,
						"reason":      re.Reason,
					})
				}
				return err
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), map[string]any{"ok": true})
			}
			fmt.Fprintln(c.OutOrStdout(), "OK: all requirements satisfied")
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool version and running kernel",
		RunE: func(c *cobra.Command, args []string) error {
			out := c.OutOrStdout()
			if version != "" {
				fmt.Fprintf(out, "rebuild-initramfs %s", version)
				if commit != "" {
					fmt.Fprintf(out, " (%s)", commit)
				}
				if date != "" {
					fmt.Fprintf(out, " built %s", date)
				}
				fmt.Fprintln(out)
			} else {
				fmt.Fprintln(out, "rebuild-initramfs (dev)")
			}

			release, err := initramfs.KernelRelease()
			if err != nil {
				if errors.Is(err, initramfs.ErrUnsupportedPlatform) {
					return nil
				}
				return err
			}
			fmt.Fprintf(out, "Kernel: %s\n", release)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
