package main

import (
	"fmt"
	"strings"

	"github.com/starkandwayne/passlite/derive"
	"github.com/starkandwayne/passlite/rc"
)

// builtin is the last layer of defaults, under the rc file.
var builtin = rc.Profile{
	Length:  16,
	Counter: 1,
	Classes: derive.JoinClasses(derive.DefaultClasses),
	Symbols: string(derive.ModernSymbols),
}

// params are the derivation options common to several commands, as given
// on the command line (or via the environment).
type params struct {
	Login   string
	Length  int
	Counter int
	Classes string
	Symbols string
}

func (p params) profile() rc.Profile {
	return rc.Profile{
		Login:   p.Login,
		Length:  p.Length,
		Counter: p.Counter,
		Classes: p.Classes,
		Symbols: p.Symbols,
	}
}

// layered resolves the effective profile for a site: explicit options,
// then the site's stored profile, then the rc defaults, then builtins.
func layered(cfg *rc.Config, site string, explicit rc.Profile) rc.Profile {
	stored, _ := cfg.Site(site)
	return rc.Merge(explicit, stored, cfg.Defaults, builtin)
}

// request turns a resolved profile into a derive.Request, without the
// master secret.
func request(site string, p rc.Profile) (derive.Request, error) {
	site = strings.TrimSpace(site)
	if site == "" {
		return derive.Request{}, derive.NewInvalidConfigurationError("no site given")
	}

	var classes []derive.Class
	if strings.ToLower(strings.TrimSpace(p.Classes)) != "none" {
		var err error
		if classes, err = derive.ParseClasses(p.Classes); err != nil {
			return derive.Request{}, err
		}
	}
	symbols, err := derive.ParseSymbolPolicy(p.Symbols)
	if err != nil {
		return derive.Request{}, err
	}

	req := derive.Request{
		Site:    site,
		Login:   strings.TrimSpace(p.Login),
		Length:  p.Length,
		Counter: p.Counter,
		Classes: classes,
		Symbols: symbols,
	}
	if err := req.Validate(); err != nil {
		return derive.Request{}, err
	}
	return req, nil
}

// describe is a one-line, secret-free summary of a request.
func describe(req derive.Request) string {
	login := req.Login
	if login == "" {
		login = "(no login)"
	}
	classes := derive.JoinClasses(req.Classes)
	if classes == "" {
		classes = "none"
	}
	return fmt.Sprintf("%s for %s, %d chars, counter %d, classes %s, symbols %s",
		req.Site, login, req.Length, req.Counter, classes, req.Symbols)
}
