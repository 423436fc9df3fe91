package initramfs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer answers yes/no questions.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// AutoConfirm answers yes to every question.
type AutoConfirm struct{}

// Confirm always returns true.
func (AutoConfirm) Confirm(string) (bool, error) {
	return true, nil
}

// PromptConfirmer asks on Out and reads answers line by line from In.
// "Y", "y" and an empty line mean yes, "N" and "n" mean no.
// Any other answer repeats the question.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer creates a PromptConfirmer reading from in.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

// NewTerminalConfirmer creates a PromptConfirmer on stdin/stdout.
func NewTerminalConfirmer() *PromptConfirmer {
	return NewPromptConfirmer(os.Stdin, os.Stdout)
}

// Confirm prints question and waits for a valid answer.
// End of input is returned as an error together with a "no".
func (c *PromptConfirmer) Confirm(question string) (bool, error) {
	for {
		fmt.Fprint(c.out, question)
		line, err := c.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			fmt.Fprintln(c.out)
			return false, fmt.Errorf("read answer: %w", err)
		}

		switch strings.TrimRight(line, "\r\n") {
		case "Y", "y", "":
			return true, nil
		case "N", "n":
			return false, nil
		}
		fmt.Fprintln(c.out, "Please answer y/Y or n/N!")
		if err != nil {
			return false, fmt.Errorf("read answer: %w", err)
		}
	}
}

var (
	_ Confirmer = AutoConfirm{}
	_ Confirmer = (*PromptConfirmer)(nil)
)
