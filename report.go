package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jhunt/go-ansi"
	"github.com/starkandwayne/passlite/derive"
	"gopkg.in/yaml.v2"
)

// A Report explains a derivation plan to a person, or to a script.
type Report struct {
	plan derive.Plan
}

type reportData struct {
	Site       string   `json:"site" yaml:"site"`
	Login      string   `json:"login" yaml:"login"`
	Length     int      `json:"length" yaml:"length"`
	Counter    int      `json:"counter" yaml:"counter"`
	Classes    []string `json:"classes" yaml:"classes"`
	Symbols    string   `json:"symbols" yaml:"symbols"`
	Alphabet   string   `json:"alphabet" yaml:"alphabet"`
	Size       int      `json:"alphabet_size" yaml:"alphabet_size"`
	Guaranteed int      `json:"guaranteed" yaml:"guaranteed"`
	Entropy    float64  `json:"entropy_bits" yaml:"entropy_bits"`
	Iterations int      `json:"iterations" yaml:"iterations"`
	PoolSize   int      `json:"pool_size" yaml:"pool_size"`
	Salt       string   `json:"salt" yaml:"salt"`
}

func (r Report) data() reportData {
	classes := make([]string, len(r.plan.Classes))
	for i, c := range r.plan.Classes {
		classes[i] = string(c)
	}
	return reportData{
		Site:       r.plan.Site,
		Login:      r.plan.Login,
		Length:     r.plan.Length,
		Counter:    r.plan.Counter,
		Classes:    classes,
		Symbols:    string(r.plan.Symbols),
		Alphabet:   r.plan.Alphabet,
		Size:       len(r.plan.Alphabet),
		Guaranteed: r.plan.Guaranteed,
		Entropy:    math.Round(r.plan.EntropyBits()*10) / 10,
		Iterations: r.plan.Iterations,
		PoolSize:   r.plan.PoolSize,
		Salt:       hex.EncodeToString(r.plan.Salt),
	}
}

func (r Report) String() string {
	d := r.data()

	login := d.Login
	if login == "" {
		login = "(none)"
	}
	classes := strings.Join(d.Classes, ", ")
	if classes == "" {
		classes = "(none)"
	}

	retArray := []string{
		ansi.Sprintf("Site @G{%s}, login @G{%s}", d.Site, login),
		ansi.Sprintf("Password is @Y{%d} characters, counter @Y{%d}", d.Length, d.Counter),
		ansi.Sprintf("Classes @C{%s}, symbols @C{%s}", classes, d.Symbols),
		ansi.Sprintf("Alphabet has @Y{%d} characters: %s", d.Size, d.Alphabet),
		ansi.Sprintf("@Y{%d} characters are reserved, one per required class", d.Guaranteed),
	}

	strength := "@G{%.1f bits}"
	if d.Entropy < 64 {
		strength = "@R{%.1f bits}"
	} else if d.Entropy < 80 {
		strength = "@Y{%.1f bits}"
	}
	retArray = append(retArray,
		ansi.Sprintf("Estimated strength is "+strength, d.Entropy),
		ansi.Sprintf("Key stretching uses @Y{%d} PBKDF2-SHA256 iterations into a @Y{%d} byte pool", d.Iterations, d.PoolSize),
		fmt.Sprintf("Salt is %s", d.Salt),
	)

	return strings.Join(retArray, "\n") + "\n"
}

func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.data())
}

func (r Report) YAML() (string, error) {
	b, err := yaml.Marshal(r.data())
	if err != nil {
		return "", err
	}
	return string(b), nil
}
