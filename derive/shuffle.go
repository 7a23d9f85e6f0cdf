package derive

// shuffle permutes s in place with Fisher-Yates, drawing from the back
// of the pool.  Bytes rejected here are spent, unlike in the sampler.
func shuffle(p *pool, s []byte) error {
	for i := len(s) - 1; i > 0; i-- {
		n := i + 1
		b, ok := p.prev(n)
		if !ok {
			return NewInsufficientEntropyError("shuffle", 0, 0, len(p.buf), p.consumed())
		}
		j := int(b) % n
		s[i], s[j] = s[j], s[i]
	}
	return nil
}
