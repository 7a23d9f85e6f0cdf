package derive

import (
	"fmt"
	"strings"
)

// A Class names one of the base character classes a password can be
// required to draw from.
type Class string

const (
	Lower  Class = "lower"
	Upper  Class = "upper"
	Digits Class = "digits"
)

// A SymbolPolicy picks which symbol alphabet, if any, is mixed in.
type SymbolPolicy string

const (
	NoSymbols     SymbolPolicy = "none"
	ModernSymbols SymbolPolicy = "modern"
	BasicSymbols  SymbolPolicy = "basic"
)

var classes = map[Class]string{
	Lower:  "abcdefghijklmnopqrstuvwxyz",
	Upper:  "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	Digits: "0123456789",
}

var symbols = map[SymbolPolicy]string{
	// safe for most modern web applications
	ModernSymbols: "!#$%&()*+,-./:;=?@[]^_{}~",
	// maximum compatibility with banks and older systems
	BasicSymbols: "!@#$%^&*()",
}

// DefaultClasses is what callers get when they do not ask for anything.
var DefaultClasses = []Class{Lower, Upper, Digits}

// Chars returns the alphabet for a single base class, or "" for an
// unknown class.
func (c Class) Chars() string {
	return classes[c]
}

func (c Class) valid() bool {
	_, ok := classes[c]
	return ok
}

// Chars returns the symbol alphabet for the policy; NoSymbols, the empty
// policy and anything unrecognized yield "".
func (p SymbolPolicy) Chars() string {
	return symbols[p]
}

func (p SymbolPolicy) valid() bool {
	if p == NoSymbols || p == "" {
		return true
	}
	_, ok := symbols[p]
	return ok
}

// Alphabet concatenates the requested base classes, in the order given,
// followed by the symbol alphabet of the policy.
func Alphabet(cc []Class, p SymbolPolicy) string {
	var b strings.Builder
	for _, c := range cc {
		b.WriteString(c.Chars())
	}
	b.WriteString(p.Chars())
	return b.String()
}

// ParseClasses turns a comma-separated list like "lower,upper,digits"
// into classes, keeping order and duplicates so that Validate can see
// them.
func ParseClasses(s string) ([]Class, error) {
	l := make([]Class, 0)
	for _, field := range strings.Split(s, ",") {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" {
			continue
		}
		c := Class(field)
		if !c.valid() {
			return nil, NewInvalidConfigurationError(fmt.Sprintf("unknown character class '%s' (expected lower, upper or digits)", field))
		}
		l = append(l, c)
	}
	return l, nil
}

// ParseSymbolPolicy recognizes none, modern and basic.  The empty
// string is treated as none.
func ParseSymbolPolicy(s string) (SymbolPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return NoSymbols, nil
	}
	p := SymbolPolicy(s)
	if !p.valid() {
		return "", NewInvalidConfigurationError(fmt.Sprintf("unknown symbol policy '%s' (expected none, modern or basic)", s))
	}
	return p, nil
}

// JoinClasses is the inverse of ParseClasses.
func JoinClasses(cc []Class) string {
	l := make([]string, len(cc))
	for i, c := range cc {
		l[i] = string(c)
	}
	return strings.Join(l, ",")
}
