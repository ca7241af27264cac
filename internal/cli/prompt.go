package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from a terminal or any line-oriented reader.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

// NewPrompter creates a Prompter. Passwords are read without echo when in
// is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// Printf writes to the prompt output
func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Line asks for a line of input. An empty answer yields def.
func (p *Prompter) Line(label, def string) (string, error) {
	if def != "" {
		p.Printf("%s [%s]: ", label, def)
	} else {
		p.Printf("%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Password asks for a secret.
func (p *Prompter) Password(label string) (string, error) {
	if !p.tty {
		return p.Line(label, "")
	}

	p.Printf("%s: ", label)
	b, err := term.ReadPassword(p.fd)
	p.Printf("\n")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// Choose asks for one of options by number or by name and returns its
// index.
func (p *Prompter) Choose(label string, options []string, def int) (int, error) {
	for {
		for i, o := range options {
			p.Printf("  %d) %s\n", i, o)
		}
		answer, err := p.Line(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 0 && n < len(options) {
			return n, nil
		}
		for i, o := range options {
			if strings.EqualFold(o, answer) {
				return i, nil
			}
		}
		p.Printf("Please choose one of the listed options\n")
	}
}
