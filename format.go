package initramfs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// Printer writes progress to Out and diagnostics to Err.
// Output is filtered by Verbosity; warnings, errors and prompts are always
// written.
type Printer struct {
	Out io.Writer
	Err io.Writer
	// Color and ErrColor enable colored prefixes on Out and Err.
	Color     bool
	ErrColor  bool
	Verbosity Verbosity
}

// NewPrinter returns a Printer on stdout/stderr.
// Colors are enabled per stream, only when useColor is set and the stream
// is a terminal.
func NewPrinter(v Verbosity, useColor bool) *Printer {
	return &Printer{
		Out:       os.Stdout,
		Err:       os.Stderr,
		Color:     Colorable(os.Stdout, useColor),
		ErrColor:  Colorable(os.Stderr, useColor),
		Verbosity: v,
	}
}

// Colorable reports whether colored output should be written to w.
func Colorable(w io.Writer, useColor bool) bool {
	f, ok := w.(*os.File)
	return useColor && ok && term.IsTerminal(int(f.Fd()))
}

func paint(enabled bool, c color.Color, s string) string {
	if !enabled {
		return s
	}
	return c.Sprint(s)
}

// Warnf writes a WARNING line to Err.
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintf(p.Err, "%s %s\n", paint(p.ErrColor, color.Yellow, "WARNING:"), fmt.Sprintf(format, args...))
}

// Errorf writes an ERROR line to Err.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintf(p.Err, "%s %s\n", paint(p.ErrColor, color.Red, "ERROR:"), fmt.Sprintf(format, args...))
}

// Infof writes an INFO line to Out in verbose mode.
func (p *Printer) Infof(format string, args ...any) {
	if p.Verbosity < Verbose {
		return
	}
	fmt.Fprintf(p.Out, "%s %s\n", paint(p.Color, color.Green, "INFO:"), fmt.Sprintf(format, args...))
}

// Prompt writes a ":: msg" line introducing a question.
// It is written at every verbosity.
func (p *Printer) Prompt(format string, args ...any) {
	fmt.Fprintf(p.Out, "%s %s\n", paint(p.Color, color.Blue, "::"), fmt.Sprintf(format, args...))
}

// Action writes a "* action version" line unless quiet.
func (p *Printer) Action(action, version string) {
	if p.Verbosity < Normal {
		return
	}
	fmt.Fprintf(p.Out, "%s %s %s\n", paint(p.Color, color.Blue, "*"), action, version)
}

// Command writes the exact command line in verbose mode.
func (p *Printer) Command(argv []string) {
	p.Infof("Running: %s", strings.Join(argv, " "))
}
