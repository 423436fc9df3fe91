package initramfs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingRunner records every command; commands of a tool listed in
// failOn return the mapped error.
type recordingRunner struct {
	calls  [][]string
	failOn map[string]error
}

func (r *recordingRunner) Run(_ context.Context, argv []string) error {
	r.calls = append(r.calls, append([]string(nil), argv...))
	return r.failOn[argvTool(argv)]
}

// argvTool returns the tool name of argv, skipping a sudo prefix.
func argvTool(argv []string) string {
	if len(argv) > 1 && argv[0] == sudoTool {
		return argv[1]
	}
	if len(argv) > 0 {
		return argv[0]
	}
	return ""
}

// scriptedConfirmer returns answers in order and records every question.
type scriptedConfirmer struct {
	answers   []bool
	err       error
	questions []string
}

func (c *scriptedConfirmer) Confirm(question string) (bool, error) {
	c.questions = append(c.questions, question)
	if len(c.answers) == 0 {
		return false, c.err
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

// fakeDB is an in-memory PackageDB.
type fakeDB map[string][]string

func (db fakeDB) Package(name string) (*Package, error) {
	files, ok := db[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrPackageNotFound)
	}
	return &Package{Name: name, Files: files}, nil
}

// testPrinter returns a colorless printer writing into buffers.
func testPrinter(v Verbosity) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Printer{Out: &out, Err: &errOut, Verbosity: v}, &out, &errOut
}

// writeFile creates path (and its parents) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// kernelFiles returns a typical kernel package manifest for release.
func kernelFiles(release string) []string {
	return []string{
		"boot/",
		"usr/",
		"usr/lib/",
		"usr/lib/modules/",
		"usr/lib/modules/" + release + "/",
		"usr/lib/modules/" + release + "/pkgbase",
		"usr/lib/modules/" + release + "/vmlinuz",
	}
}

// countLines counts lines in s that start with prefix.
func countLines(s, prefix string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
