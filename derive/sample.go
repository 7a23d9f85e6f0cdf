package derive

// pick draws one character of chars from the pool without modulo bias.
func (p *pool) pick(chars string) (byte, bool) {
	b, ok := p.next(len(chars))
	if !ok {
		return 0, false
	}
	return chars[int(b)%len(chars)], true
}

// sample assembles the unshuffled password: one symbol (if the policy
// asks for one), one character per class in the caller's order, then
// length minus that many characters from the full alphabet.
func sample(p *pool, cc []Class, sp SymbolPolicy, length int) ([]byte, error) {
	out := make([]byte, 0, length)

	required := make([]string, 0, len(cc)+1)
	if s := sp.Chars(); s != "" {
		required = append(required, s)
	}
	for _, c := range cc {
		required = append(required, c.Chars())
	}

	for _, chars := range required {
		ch, ok := p.pick(chars)
		if !ok {
			Zero(out)
			return nil, NewInsufficientEntropyError("class selection", 0, 0, len(p.buf), p.usedCount())
		}
		out = append(out, ch)
	}

	alphabet := Alphabet(cc, sp)
	want := length - len(out)
	got := 0
	for got < want {
		ch, ok := p.pick(alphabet)
		if !ok {
			Zero(out)
			return nil, NewInsufficientEntropyError("fill", want, got, len(p.buf), p.usedCount())
		}
		out = append(out, ch)
		got++
	}
	return out, nil
}
