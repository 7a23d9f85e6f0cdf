package rc

import (
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
)

// A Profile remembers the non-secret half of a derivation.  Zero fields
// fall through to the next source of defaults.
type Profile struct {
	Login   string `json:"login,omitempty"`
	Length  int    `json:"length,omitempty"`
	Counter int    `json:"counter,omitempty"`
	Classes string `json:"classes,omitempty"`
	Symbols string `json:"symbols,omitempty"`
}

type Config struct {
	Version  string              `json:"version"`
	Defaults Profile             `json:"defaults"`
	Sites    map[string]*Profile `json:"sites,omitempty"`

	path string
}

// Path is where the rc file lives: $PASSLITE_RC, or ~/.passliterc.
func Path() string {
	if p := os.Getenv("PASSLITE_RC"); p != "" {
		return p
	}
	return fmt.Sprintf("%s/.passliterc", os.Getenv("HOME"))
}

// Load reads the rc file at Path().  A missing file is not an error; it
// yields an empty config that Write() will create.
func Load() (Config, error) {
	return LoadFrom(Path())
}

func LoadFrom(path string) (Config, error) {
	c := Config{path: path}

	b, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Version = "1"
			return c, nil
		}
		return c, err
	}

	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("Unable to parse %s: %s", path, err)
	}
	if c.Version == "" {
		c.Version = "1"
	}
	c.path = path
	return c, nil
}

func (c *Config) Write() error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	path := c.path
	if path == "" {
		path = Path()
	}
	return ioutil.WriteFile(path, b, 0600)
}

func key(site string) string {
	return strings.ToLower(strings.TrimSpace(site))
}

// Site returns the stored profile for a site, if any.  Site names are
// matched case-insensitively.
func (c *Config) Site(site string) (Profile, bool) {
	if c.Sites == nil {
		return Profile{}, false
	}
	p, ok := c.Sites[key(site)]
	if !ok || p == nil {
		return Profile{}, false
	}
	return *p, true
}

func (c *Config) Remember(site string, p Profile) error {
	if key(site) == "" {
		return fmt.Errorf("No site name given")
	}
	if c.Sites == nil {
		c.Sites = make(map[string]*Profile)
	}
	c.Sites[key(site)] = &p
	return nil
}

func (c *Config) Forget(site string) error {
	if _, ok := c.Site(site); !ok {
		return fmt.Errorf("Unknown site '%s'", site)
	}
	delete(c.Sites, key(site))
	return nil
}

// SiteNames lists the remembered sites, sorted.
func (c *Config) SiteNames() []string {
	l := make([]string, 0, len(c.Sites))
	for name := range c.Sites {
		l = append(l, name)
	}
	sort.Strings(l)
	return l
}

// Merge layers profiles: the first non-zero value of each field wins.
func Merge(layers ...Profile) Profile {
	var p Profile
	for _, l := range layers {
		if p.Login == "" {
			p.Login = l.Login
		}
		if p.Length == 0 {
			p.Length = l.Length
		}
		if p.Counter == 0 {
			p.Counter = l.Counter
		}
		if p.Classes == "" {
			p.Classes = l.Classes
		}
		if p.Symbols == "" {
			p.Symbols = l.Symbols
		}
	}
	return p
}
