package main

import (
	"io"
	"sort"
	"strconv"

	fmt "github.com/jhunt/go-ansi"
	"github.com/starkandwayne/passlite/rc"
)

// envPrintFunc abstracts the printing of environment variables for various
// shells.
type envPrintFunc func(io.Writer, map[string]string) error

// envVars maps a profile onto the PASSLITE_* variables that the
// derivation commands read.
func envVars(p rc.Profile) map[string]string {
	vars := map[string]string{
		"PASSLITE_LOGIN":   p.Login,
		"PASSLITE_LENGTH":  "",
		"PASSLITE_COUNTER": "",
		"PASSLITE_CLASSES": p.Classes,
		"PASSLITE_SYMBOLS": p.Symbols,
	}
	if p.Length != 0 {
		vars["PASSLITE_LENGTH"] = strconv.Itoa(p.Length)
	}
	if p.Counter != 0 {
		vars["PASSLITE_COUNTER"] = strconv.Itoa(p.Counter)
	}
	return vars
}

func names(vars map[string]string) []string {
	l := make([]string, 0, len(vars))
	for name := range vars {
		l = append(l, name)
	}
	sort.Strings(l)
	return l
}

func printEnv(out io.Writer, vars map[string]string) error {
	for _, name := range names(vars) {
		if value := vars[name]; value != "" {
			fmt.Fprintf(out, "  @B{%s}  @G{%s}\n", name, value)
		}
	}
	return nil
}

// printEnvForBash prints the given map to the writer so that it can be used
// directly within an `eval` call in Bash or ZSH.
func printEnvForBash(out io.Writer, vars map[string]string) error {
	for _, name := range names(vars) {
		if value := vars[name]; value != "" {
			fmt.Fprintf(out, "\\export %s=%s;\n", name, strconv.Quote(value))
		} else {
			fmt.Fprintf(out, "\\unset %s;\n", name)
		}
	}
	return nil
}

// printEnvForFish prints the given map to the writer so that it can be used
// directly within an `eval` call in Fish.
func printEnvForFish(out io.Writer, vars map[string]string) error {
	for _, name := range names(vars) {
		if value := vars[name]; value == "" {
			fmt.Fprintf(out, "set -e %s;\n", name)
		} else {
			fmt.Fprintf(out, "set -x %s %s;\n", name, strconv.Quote(value))
		}
	}
	return nil
}
