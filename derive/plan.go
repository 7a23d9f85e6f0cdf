package derive

import "math"

// A Plan describes how a request will be derived, without touching the
// master secret.  Everything in it is safe to display.
type Plan struct {
	Site       string
	Login      string
	Length     int
	Counter    int
	Classes    []Class
	Symbols    SymbolPolicy
	Alphabet   string
	Guaranteed int
	Iterations int
	PoolSize   int
	Salt       []byte
}

// Plan validates req and computes its derivation parameters.
// req.MasterSecret is ignored.
func (d *Deriver) Plan(req Request) (Plan, error) {
	if err := req.Validate(); err != nil {
		return Plan{}, err
	}

	sp := req.Symbols
	if sp == "" {
		sp = NoSymbols
	}
	return Plan{
		Site:       req.Site,
		Login:      req.Login,
		Length:     req.Length,
		Counter:    req.Counter,
		Classes:    append([]Class{}, req.Classes...),
		Symbols:    sp,
		Alphabet:   Alphabet(req.Classes, sp),
		Guaranteed: Guaranteed(req.Classes, sp),
		Iterations: Iterations(req.Counter),
		PoolSize:   PoolSize(req.Length),
		Salt:       Salt(d.Hash, req.Site, req.Login, req.Length, req.Counter),
	}, nil
}

// EntropyBits estimates the strength of the password on its own, for an
// attacker who knows every parameter but the master secret and cannot
// afford to guess that: log2 of each guaranteed class size plus log2 of
// the alphabet size for every fill position.  The ordering freedom added
// by the shuffle is not counted.
func (p Plan) EntropyBits() float64 {
	bits := 0.0
	if s := p.Symbols.Chars(); s != "" {
		bits += math.Log2(float64(len(s)))
	}
	for _, c := range p.Classes {
		bits += math.Log2(float64(len(c.Chars())))
	}
	if n := len(p.Alphabet); n > 0 {
		bits += float64(p.Length-p.Guaranteed) * math.Log2(float64(n))
	}
	return bits
}
