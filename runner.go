package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jhunt/go-ansi"
)

type Handler func(command string, args ...string) error

type Help struct {
	Summary     string
	Usage       string
	Type        string
	Description string
}

const (
	DerivationCommand     = "DERIVATION COMMANDS"
	ProfileCommand        = "PROFILE COMMANDS"
	AdministrativeCommand = "ADMINISTRATIVE COMMANDS"
)

type Runner struct {
	Handlers map[string]Handler
	Topics   map[string]*Help
	Aliases  map[string]string
}

func NewRunner() *Runner {
	return &Runner{
		Handlers: make(map[string]Handler),
		Topics:   make(map[string]*Help),
		Aliases:  make(map[string]string),
	}
}

func (r *Runner) Dispatch(command string, help *Help, fn Handler, aliases ...string) {
	r.Handlers[command] = fn
	if help != nil {
		r.Topics[command] = help
	}
	for _, alias := range aliases {
		r.Aliases[alias] = command
	}
}

func (r *Runner) canonical(command string) string {
	if alias, ok := r.Aliases[command]; ok {
		return alias
	}
	return command
}

func (r *Runner) Execute(command string, args ...string) error {
	if fn, ok := r.Handlers[r.canonical(command)]; ok {
		return fn(command, args...)
	}
	return fmt.Errorf("unknown command '%s'", command)
}

// Usage prints the full help for one command, or the command summary
// when topic is empty.
func (r *Runner) Usage(out io.Writer, topic string) error {
	if topic == "" {
		return r.Summary(out)
	}

	h, ok := r.Topics[r.canonical(topic)]
	if !ok {
		return fmt.Errorf("unknown command '%s'", topic)
	}
	ansi.Fprintf(out, "@G{%s} - %s\n\n", r.canonical(topic), h.Summary)
	ansi.Fprintf(out, "USAGE: @C{passlite %s}\n", h.Usage)
	if h.Description != "" {
		ansi.Fprintf(out, "\n%s\n", strings.TrimSpace(h.Description))
	}
	return nil
}

func (r *Runner) Summary(out io.Writer) error {
	byType := make(map[string][]string)
	width := 0
	for name, h := range r.Topics {
		byType[h.Type] = append(byType[h.Type], name)
		if len(name) > width {
			width = len(name)
		}
	}

	ansi.Fprintf(out, "Usage: @C{passlite} [-h] [-v] <command> [options] [args ...]\n")
	for _, t := range []string{DerivationCommand, ProfileCommand, AdministrativeCommand} {
		names := byType[t]
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		ansi.Fprintf(out, "\n%s\n", t)
		for _, name := range names {
			ansi.Fprintf(out, "  @G{%s}%s  %s\n", name, strings.Repeat(" ", width-len(name)), r.Topics[name].Summary)
		}
	}
	ansi.Fprintf(out, "\nRun `passlite help <command>` for details on a single command.\n")
	return nil
}
