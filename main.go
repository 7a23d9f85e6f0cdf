package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/jhunt/go-ansi"
	"github.com/jhunt/go-cli"
	env "github.com/jhunt/go-envirotron"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/starkandwayne/passlite/crypt"
	"github.com/starkandwayne/passlite/derive"
	"github.com/starkandwayne/passlite/prompt"
	"github.com/starkandwayne/passlite/rc"
)

var Version string

type Options struct {
	Help    bool `cli:"-h, --help"`
	Version bool `cli:"-v, --version"`

	Derive struct {
		Login   string `cli:"-u, --login"   env:"PASSLITE_LOGIN"`
		Length  int    `cli:"-l, --length"  env:"PASSLITE_LENGTH"`
		Counter int    `cli:"-c, --counter" env:"PASSLITE_COUNTER"`
		Classes string `cli:"-C, --classes" env:"PASSLITE_CLASSES"`
		Symbols string `cli:"-s, --symbols" env:"PASSLITE_SYMBOLS"`
		Format  string `cli:"-f, --format"  env:"PASSLITE_FORMAT"`
		Timeout string `cli:"-t, --timeout" env:"PASSLITE_TIMEOUT"`
		Confirm bool   `cli:"--confirm"`
	} `cli:"derive, gen, get"`

	Info struct {
		Login   string `cli:"-u, --login"   env:"PASSLITE_LOGIN"`
		Length  int    `cli:"-l, --length"  env:"PASSLITE_LENGTH"`
		Counter int    `cli:"-c, --counter" env:"PASSLITE_COUNTER"`
		Classes string `cli:"-C, --classes" env:"PASSLITE_CLASSES"`
		Symbols string `cli:"-s, --symbols" env:"PASSLITE_SYMBOLS"`
		JSON    bool   `cli:"--json"`
		YAML    bool   `cli:"--yaml"`
	} `cli:"info, plan"`

	Check struct {
		Login   string `cli:"-u, --login"   env:"PASSLITE_LOGIN"`
		Length  int    `cli:"-l, --length"  env:"PASSLITE_LENGTH"`
		Counter int    `cli:"-c, --counter" env:"PASSLITE_COUNTER"`
		Classes string `cli:"-C, --classes" env:"PASSLITE_CLASSES"`
		Symbols string `cli:"-s, --symbols" env:"PASSLITE_SYMBOLS"`
	} `cli:"check"`

	Batch struct {
		Workers int    `cli:"-w, --workers"`
		Format  string `cli:"-f, --format"  env:"PASSLITE_FORMAT"`
		Timeout string `cli:"-t, --timeout" env:"PASSLITE_TIMEOUT"`
		Confirm bool   `cli:"--confirm"`
	} `cli:"batch"`

	Sites struct{} `cli:"sites, ls"`

	Remember struct {
		Length  int    `cli:"-l, --length"`
		Counter int    `cli:"-c, --counter"`
		Classes string `cli:"-C, --classes"`
		Symbols string `cli:"-s, --symbols"`
	} `cli:"remember"`

	Forget struct{} `cli:"forget"`

	Env struct {
		Bash bool `cli:"--bash"`
		Fish bool `cli:"--fish"`
	} `cli:"env"`

	VersionCommand struct{} `cli:"version"`
	HelpCommand    struct{} `cli:"help"`
}

func main() {
	var opt Options
	env.Override(&opt)

	go Signals()

	d := &derive.Deriver{}
	if shouldDebug() {
		d.Trace = os.Stderr
	}

	r := NewRunner()

	r.Dispatch("version", &Help{
		Summary: "Print the version of passlite",
		Usage:   "version",
		Type:    AdministrativeCommand,
	}, func(command string, args ...string) error {
		if Version != "" {
			fmt.Printf("passlite v%s\n", Version)
		} else {
			fmt.Printf("passlite (development build)\n")
		}
		return nil
	})

	r.Dispatch("help", &Help{
		Summary: "Get detailed help with a specific command",
		Usage:   "help [command]",
		Type:    AdministrativeCommand,
	}, func(command string, args ...string) error {
		if len(args) > 1 {
			return fmt.Errorf("USAGE: help [command]")
		}
		topic := ""
		if len(args) == 1 {
			topic = args[0]
		}
		return r.Usage(os.Stderr, topic)
	})

	r.Dispatch("derive", &Help{
		Summary: "Derive the password for a site",
		Usage:   "derive [options] SITE [LOGIN]",
		Type:    DerivationCommand,
		Description: `
Prompts for the master secret, and prints the password for SITE.  The
same master secret and parameters always yield the same password; bump
the --counter to rotate it.

Options (each falls back to the site's remembered profile, the rc file
defaults, and finally the built-in defaults):

  -u, --login LOGIN      Account name at the site.
  -l, --length N         Password length (16).
  -c, --counter N        Generation counter (1).
  -C, --classes LIST     Comma-separated classes: lower, upper, digits,
                         or "none" (lower,upper,digits).
  -s, --symbols POLICY   none, modern or basic (modern).
  -f, --format FORMAT    plain, base64, bcrypt, crypt-md5, crypt-sha256
                         or crypt-sha512 (plain).
  -t, --timeout DURATION Give up after this long, e.g. 30s.
      --confirm          Ask for the master secret twice.
`,
	}, func(command string, args ...string) error {
		site, login, err := siteArgs(command, args)
		if err != nil {
			return err
		}
		o := opt.Derive
		if login != "" {
			o.Login = login
		}
		if !crypt.Valid(o.Format) {
			return fmt.Errorf("unrecognized format '%s' (try one of %s)", o.Format, strings.Join(crypt.Formats(), ", "))
		}
		timeout, err := duration(o.Timeout)
		if err != nil {
			return err
		}

		cfg, err := rc.Load()
		if err != nil {
			return err
		}
		req, err := request(site, layered(&cfg, site, params{
			Login:   o.Login,
			Length:  o.Length,
			Counter: o.Counter,
			Classes: o.Classes,
			Symbols: o.Symbols,
		}.profile()))
		if err != nil {
			return err
		}

		secret, err := pr("master secret", o.Confirm)
		if err != nil {
			return err
		}
		hold(secret)
		defer wipeHeld()
		req.MasterSecret = secret

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		pw, err := d.DeriveContext(ctx, req)
		if err != nil {
			return err
		}

		out, err := crypt.Format(pw, o.Format)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", out)
		return nil
	}, "gen", "get")

	r.Dispatch("info", &Help{
		Summary: "Explain how a site's password would be derived",
		Usage:   "info [options] SITE [LOGIN]",
		Type:    DerivationCommand,
		Description: `
Prints the parameters that derive would use for SITE: the alphabet, how
many characters are reserved for required classes, an entropy estimate,
the key stretching iterations and the salt.  No master secret is needed.

Takes the same --login, --length, --counter, --classes and --symbols
options as derive, plus:

  --json   Print the plan as JSON.
  --yaml   Print the plan as YAML.
`,
	}, func(command string, args ...string) error {
		site, login, err := siteArgs(command, args)
		if err != nil {
			return err
		}
		o := opt.Info
		if login != "" {
			o.Login = login
		}
		if o.JSON && o.YAML {
			return fmt.Errorf("--json and --yaml are mutually exclusive")
		}

		cfg, err := rc.Load()
		if err != nil {
			return err
		}
		req, err := request(site, layered(&cfg, site, params{
			Login:   o.Login,
			Length:  o.Length,
			Counter: o.Counter,
			Classes: o.Classes,
			Symbols: o.Symbols,
		}.profile()))
		if err != nil {
			return err
		}

		plan, err := d.Plan(req)
		if err != nil {
			return err
		}
		report := Report{plan: plan}

		switch {
		case o.JSON:
			b, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", string(b))
		case o.YAML:
			s, err := report.YAML()
			if err != nil {
				return err
			}
			fmt.Printf("---\n%s", s)
		default:
			fmt.Printf("%s", report)
		}
		return nil
	}, "plan")

	r.Dispatch("check", &Help{
		Summary: "Check that a site's parameters can derive a password",
		Usage:   "check [options] SITE [LOGIN]",
		Type:    DerivationCommand,
		Description: `
Resolves and validates the parameters for SITE, without asking for the
master secret.  Exits 0 if derive would accept them, and 2 if not.
`,
	}, func(command string, args ...string) error {
		site, login, err := siteArgs(command, args)
		if err != nil {
			return err
		}
		o := opt.Check
		if login != "" {
			o.Login = login
		}

		cfg, err := rc.Load()
		if err != nil {
			return err
		}
		req, err := request(site, layered(&cfg, site, params{
			Login:   o.Login,
			Length:  o.Length,
			Counter: o.Counter,
			Classes: o.Classes,
			Symbols: o.Symbols,
		}.profile()))
		if err != nil {
			return err
		}
		ansi.Fprintf(os.Stderr, "@G{ok} %s\n", describe(req))
		return nil
	})

	r.Dispatch("batch", &Help{
		Summary: "Derive passwords for a list of sites",
		Usage:   "batch [options] FILE",
		Type:    DerivationCommand,
		Description: `
Reads a YAML list of sites from FILE, prompts once for the master secret,
and prints a YAML map of every site's password.  Each entry takes the
same keys as the rc file's site profiles, plus the site itself:

  - site:   example.com
    login:  me@example.com
    length: 20

  -w, --workers N        Derive up to N passwords at once (1).
  -f, --format FORMAT    Output format, as for derive.
  -t, --timeout DURATION Give up on the whole batch after this long.
      --confirm          Ask for the master secret twice.
`,
	}, func(command string, args ...string) error {
		if len(args) != 1 {
			return fmt.Errorf("USAGE: batch [options] FILE")
		}
		o := opt.Batch
		if !crypt.Valid(o.Format) {
			return fmt.Errorf("unrecognized format '%s' (try one of %s)", o.Format, strings.Join(crypt.Formats(), ", "))
		}
		timeout, err := duration(o.Timeout)
		if err != nil {
			return err
		}

		b, err := ioutil.ReadFile(args[0])
		if err != nil {
			return err
		}
		entries, err := batchEntries(b)
		if err != nil {
			return fmt.Errorf("Unable to parse %s: %s", args[0], err)
		}

		cfg, err := rc.Load()
		if err != nil {
			return err
		}
		reqs := make([]derive.Request, len(entries))
		for i, e := range entries {
			req, err := request(e.Site, layered(&cfg, e.Site, e.Profile))
			if err != nil {
				return fmt.Errorf("entry #%d (%s): %s", i+1, e.Site, err)
			}
			reqs[i] = req
		}

		secret, err := pr("master secret", o.Confirm)
		if err != nil {
			return err
		}
		hold(secret)
		defer wipeHeld()
		for i := range reqs {
			reqs[i].MasterSecret = secret
		}

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		passwords, err := d.Batch(ctx, reqs, o.Workers)
		if err != nil {
			return err
		}

		out := make(yamlv2.MapSlice, len(reqs))
		for i, req := range reqs {
			pw, err := crypt.Format(passwords[i], o.Format)
			if err != nil {
				return err
			}
			out[i] = yamlv2.MapItem{Key: batchKey(req), Value: pw}
		}
		s, err := yamlv2.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Printf("---\n%s", string(s))
		return nil
	})

	r.Dispatch("sites", &Help{
		Summary: "List the sites with remembered profiles",
		Usage:   "sites",
		Type:    ProfileCommand,
	}, func(command string, args ...string) error {
		if len(args) != 0 {
			return fmt.Errorf("USAGE: sites")
		}
		cfg, err := rc.Load()
		if err != nil {
			return err
		}
		for _, site := range cfg.SiteNames() {
			p, _ := cfg.Site(site)
			req, err := request(site, rc.Merge(p, cfg.Defaults, builtin))
			if err != nil {
				ansi.Printf("@R{%s}  %s\n", site, err)
				continue
			}
			ansi.Printf("@G{%s}  %s\n", site, describe(req))
		}
		return nil
	}, "ls")

	r.Dispatch("remember", &Help{
		Summary: "Store a site's parameters in the rc file",
		Usage:   "remember [options] SITE [LOGIN]",
		Type:    ProfileCommand,
		Description: `
Saves the given --length, --counter, --classes and --symbols (and LOGIN)
as the profile for SITE, on top of whatever was remembered before.  The
master secret is never stored.
`,
	}, func(command string, args ...string) error {
		site, login, err := siteArgs(command, args)
		if err != nil {
			return err
		}
		o := opt.Remember

		cfg, err := rc.Load()
		if err != nil {
			return err
		}
		stored, _ := cfg.Site(site)
		p := rc.Merge(rc.Profile{
			Login:   login,
			Length:  o.Length,
			Counter: o.Counter,
			Classes: o.Classes,
			Symbols: o.Symbols,
		}, stored)

		/* refuse to remember anything derive would refuse */
		if _, err := request(site, rc.Merge(p, cfg.Defaults, builtin)); err != nil {
			return err
		}
		if err := cfg.Remember(site, p); err != nil {
			return err
		}
		if err := cfg.Write(); err != nil {
			return err
		}
		ansi.Fprintf(os.Stderr, "remembered @G{%s}\n", site)
		return nil
	})

	r.Dispatch("forget", &Help{
		Summary: "Remove a site's profile from the rc file",
		Usage:   "forget SITE",
		Type:    ProfileCommand,
	}, func(command string, args ...string) error {
		if len(args) != 1 {
			return fmt.Errorf("USAGE: forget SITE")
		}
		cfg, err := rc.Load()
		if err != nil {
			return err
		}
		if prompt.Interactive() {
			yn := prompt.Normal("forget the profile for @C{%s}? [y/N] ", args[0])
			if !strings.HasPrefix(strings.ToLower(yn), "y") {
				return nil
			}
		}
		if err := cfg.Forget(args[0]); err != nil {
			return err
		}
		return cfg.Write()
	})

	r.Dispatch("env", &Help{
		Summary: "Print the effective defaults as environment variables",
		Usage:   "env [--bash|--fish]",
		Type:    ProfileCommand,
		Description: `
Prints the defaults passlite would use for a site with no profile, as
PASSLITE_* variables.  With --bash or --fish the output is suitable for
eval in that shell.
`,
	}, func(command string, args ...string) error {
		if len(args) != 0 {
			return fmt.Errorf("USAGE: env [--bash|--fish]")
		}
		if opt.Env.Bash && opt.Env.Fish {
			return fmt.Errorf("--bash and --fish are mutually exclusive")
		}

		cfg, err := rc.Load()
		if err != nil {
			return err
		}
		vars := envVars(rc.Merge(cfg.Defaults, builtin))

		var printer envPrintFunc = printEnv
		if opt.Env.Bash {
			printer = printEnvForBash
		} else if opt.Env.Fish {
			printer = printEnvForFish
		}
		return printer(os.Stdout, vars)
	})

	command, args, err := cli.Parse(&opt)
	if err != nil {
		fail(err)
	}

	switch {
	case opt.Version:
		command, args = "version", nil
	case opt.Help:
		if command != "" {
			args = []string{command}
		}
		command = "help"
	case command == "" && len(args) == 0:
		command = "help"
	case command == "":
		command, args = args[0], args[1:]
	}

	fail(r.Execute(command, args...))
}

type batchEntry struct {
	Site string `json:"site"`
	rc.Profile
}

func batchEntries(b []byte) ([]batchEntry, error) {
	var entries []batchEntry
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no sites listed")
	}
	return entries, nil
}

func batchKey(req derive.Request) string {
	if req.Login == "" {
		return req.Site
	}
	return fmt.Sprintf("%s@%s", req.Login, req.Site)
}
