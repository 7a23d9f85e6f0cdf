package derive

import "fmt"

// pool hands out bytes from one stretched buffer through two cursors.
//
// The forward cursor (next) serves the sampler: it scans from the front,
// skipping bytes already marked used, and accepts the first byte below the
// rejection threshold for the caller's alphabet size.  Rejected bytes are
// left unmarked, since a different alphabet size may still accept them.
//
// The backward cursor (prev) serves the shuffle: it walks from the last
// byte towards the first and consumes every byte it looks at, accepted or
// not.  It ignores the used markers.  PoolSize is chosen so the two cursors
// do not meet in practice; when they do, debug builds panic and release
// builds count the overlap.
type pool struct {
	buf  []byte
	used []bool

	low  int // every index below low is used
	high int // highest index the forward cursor has marked, or -1
	back int // next index the backward cursor examines

	overlaps int
}

func newPool(buf []byte) *pool {
	return &pool{
		buf:  buf,
		used: make([]bool, len(buf)),
		high: -1,
		back: len(buf) - 1,
	}
}

// threshold is the largest multiple of n not above 256; bytes at or past
// it would bias `b mod n` and are rejected.
func threshold(n int) int {
	return 256 - 256%n
}

// next returns the first unused byte usable for an alphabet of size n,
// marking it used.  The boolean is false once the pool has nothing left
// for that size.
func (p *pool) next(n int) (byte, bool) {
	if n < 1 || n > 256 {
		panic(fmt.Sprintf("derive: alphabet size %d out of range", n))
	}
	t := threshold(n)

	for p.low < len(p.buf) && p.used[p.low] {
		p.low++
	}
	for i := p.low; i < len(p.buf); i++ {
		if p.used[i] {
			continue
		}
		if int(p.buf[i]) < t {
			p.used[i] = true
			if i > p.high {
				p.high = i
			}
			return p.buf[i], true
		}
	}
	return 0, false
}

// prev returns the next byte from the back of the pool that is usable
// for a range of size n.  Every byte examined is consumed.
func (p *pool) prev(n int) (byte, bool) {
	if n < 1 || n > 256 {
		panic(fmt.Sprintf("derive: shuffle range %d out of range", n))
	}
	t := threshold(n)

	for p.back >= 0 {
		i := p.back
		p.back--
		p.check(i)
		if int(p.buf[i]) < t {
			return p.buf[i], true
		}
	}
	return 0, false
}

func (p *pool) check(i int) {
	if i < 0 || i >= len(p.buf) {
		panic(fmt.Sprintf("derive: pool index %d outside [0, %d)", i, len(p.buf)))
	}
	if i <= p.high {
		p.overlaps++
		if debugChecks {
			panic(fmt.Sprintf("derive: backward cursor reached index %d, already consumed by the sampler (forward high-water mark %d)", i, p.high))
		}
	}
}

// usedCount is the number of bytes the forward cursor has accepted.
func (p *pool) usedCount() int {
	n := 0
	for _, u := range p.used {
		if u {
			n++
		}
	}
	return n
}

// consumed is the number of bytes the backward cursor has examined.
func (p *pool) consumed() int {
	return len(p.buf) - 1 - p.back
}

func (p *pool) release() {
	for i := range p.used {
		p.used[i] = false
	}
	p.buf = nil
}
