package prompt

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/jhunt/go-ansi"
	"github.com/mattn/go-isatty"
	"golang.org/x/crypto/ssh/terminal"
)

var (
	in  *bufio.Reader
	out io.Writer = os.Stderr
)

// Use reads answers from r instead of standard input, and treats it as
// something other than a terminal.  Labels go to w.
func Use(r io.Reader, w io.Writer) {
	in = bufio.NewReader(r)
	out = w
	tty = func() bool { return false }
}

var tty = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd())
}

func readline() []byte {
	if in == nil {
		in = bufio.NewReader(os.Stdin)
	}

	b, _ := in.ReadBytes('\n')
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}

func Normal(label string, args ...interface{}) string {
	ansi.Fprintf(out, label, args...)
	return strings.TrimSpace(string(readline()))
}

// Secure reads a line without echoing it when standard input is a
// terminal.  The caller owns the returned buffer and should zero it.
func Secure(label string, args ...interface{}) []byte {
	if !tty() {
		return readline()
	}

	ansi.Fprintf(out, label, args...)
	b, _ := terminal.ReadPassword(int(os.Stdin.Fd()))
	ansi.Fprintf(out, "\n")
	return b
}

// Interactive reports whether prompts will be shown to a person.
func Interactive() bool {
	return tty()
}
