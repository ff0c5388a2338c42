// Package prompt implements the interactive terminal prompter used by
// mapping sessions: numbered single-choice menus, free-text input and
// yes/no confirmations over stdin.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrCancelled is returned when the operator aborts the session (EOF on
// stdin, e.g. Ctrl-D).
var ErrCancelled = errors.New("prompt: cancelled")

// Prompter is the interaction surface the mapping session consumes.
// Implementations return ErrCancelled when the operator aborts.
type Prompter interface {
	// Select presents options as a numbered menu and returns the chosen
	// index. def is the pre-selected index used when the operator just
	// hits enter; pass -1 for no default.
	Select(label string, options []string, def int) (int, error)
	// Input reads one line of free text, returning def on empty input.
	Input(label, def string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(label string, def bool) (bool, error)
}

// Terminal is a Prompter over an io.Reader/io.Writer pair, normally
// stdin/stdout.
type Terminal struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{scanner: bufio.NewScanner(in), out: out}
}

func (t *Terminal) readLine() (string, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrCancelled
	}
	return strings.TrimSpace(t.scanner.Text()), nil
}

func (t *Terminal) Select(label string, options []string, def int) (int, error) {
	fmt.Fprintf(t.out, "%s\n", label)
	for i, opt := range options {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(t.out, " %s %2d) %s\n", marker, i+1, opt)
	}
	for {
		if def >= 0 && def < len(options) {
			fmt.Fprintf(t.out, "choice [%d]: ", def+1)
		} else {
			fmt.Fprint(t.out, "choice: ")
		}
		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" && def >= 0 && def < len(options) {
			return def, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(t.out, "enter a number between 1 and %d\n", len(options))
	}
}

func (t *Terminal) Input(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(t.out, "%s: ", label)
	}
	line, err := t.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (t *Terminal) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(t.out, "%s (%s): ", label, hint)
		line, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
