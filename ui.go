package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jhunt/go-ansi"
	"github.com/starkandwayne/passlite/derive"
	"github.com/starkandwayne/passlite/prompt"
)

// exit codes, so that scripts can tell "fix your input" apart from
// "try a different counter"
const (
	exitFailure      = 1
	exitInvalid      = 2
	exitEntropy      = 3
	exitCryptoFailed = 4
)

func exitCode(err error) int {
	switch {
	case derive.IsInvalidConfiguration(err):
		return exitInvalid
	case derive.IsInsufficientEntropy(err):
		return exitEntropy
	case derive.IsCryptoBackendError(err):
		return exitCryptoFailed
	}
	return exitFailure
}

func hint(err error) string {
	switch {
	case derive.IsInvalidConfiguration(err):
		return "@Y{check the length, counter, classes and symbols you asked for, and try again}"
	case derive.IsInsufficientEntropy(err):
		return "@Y{these inputs cannot produce a password; bump the} @C{--counter} @Y{and try again}"
	}
	return ""
}

func fail(err error) {
	if err != nil {
		ansi.Fprintf(os.Stderr, "failed: @R{%s}\n", err)
		if h := hint(err); h != "" {
			ansi.Fprintf(os.Stderr, h+"\n")
		}
		os.Exit(exitCode(err))
	}
}

// pr reads the master secret.  With confirm set, and a person at the
// keyboard, it is asked for twice until both entries agree.
func pr(label string, confirm bool) ([]byte, error) {
	if !confirm || !prompt.Interactive() {
		b := prompt.Secure("%s: ", label)
		if len(b) == 0 {
			return nil, fmt.Errorf("no %s given", label)
		}
		return b, nil
	}

	for {
		a := prompt.Secure("%s @Y{[hidden]:} ", label)
		b := prompt.Secure("%s @C{[confirm]:} ", label)

		if bytes.Equal(a, b) && len(a) != 0 {
			derive.Zero(b)
			ansi.Fprintf(os.Stderr, "\n")
			return a, nil
		}
		derive.Zero(a)
		derive.Zero(b)
		ansi.Fprintf(os.Stderr, "\n@Y{oops, try again }(Ctrl-C to cancel)\n\n")
	}
}
