// Package derive computes site passwords from a master secret.
//
// A password is a pure function of the master secret, the site, the login
// name, the length, a counter and the requested character classes.  Nothing
// is stored: deriving again with the same inputs gives the same password.
//
// The pipeline is:
//
//   - Validate the request.
//   - Salt with SHA-256(site|login|length|counter), and pick an iteration
//     count of min(100000+counter, 1000000).
//   - Stretch the master secret with PBKDF2-HMAC-SHA256 into a byte pool
//     of ceil(length*2.8)+96 bytes.
//   - Sample one character per required class, then fill the rest from the
//     full alphabet, by rejection sampling from the front of the pool.
//   - Shuffle with Fisher-Yates, drawing from the back of the pool.
//
// The copy of the master secret and the pool are zeroed before Derive
// returns, on every path.
package derive

import (
	"fmt"
	"hash"
	"io"
	"time"
)

// A Request carries everything a password depends on.
type Request struct {
	Site         string
	Login        string
	MasterSecret []byte
	Length       int
	Counter      int
	Classes      []Class
	Symbols      SymbolPolicy
}

// Validate checks the non-secret parameters of the request.
func (r Request) Validate() error {
	return Validate(r.Classes, r.Symbols, r.Length, r.Counter)
}

// A Deriver runs the pipeline with injectable primitives.  The zero value
// uses PBKDF2-HMAC-SHA256 and SHA-256.  A Deriver holds no per-call state
// and may be shared between goroutines.
type Deriver struct {
	// Stretcher produces the byte pool.  Nil means PBKDF2{Hash: Hash}.
	Stretcher Stretcher

	// Hash builds the salt digest.  Nil means sha256.New.
	Hash func() hash.Hash

	// Trace, if set, receives one line per pipeline step.  Only sizes,
	// counts and timings are written, never secret bytes.
	Trace io.Writer

	// acquired sees every Secret the Deriver allocates, before use.
	acquired func(name string, s *Secret)
}

// Default is the Deriver behind Password.
var Default = &Deriver{}

// Password derives with the Default deriver.
func Password(req Request) (string, error) {
	return Default.Derive(req)
}

// Derive validates req and computes its password.  req.MasterSecret is
// copied and left untouched; clearing it is up to the caller.
func (d *Deriver) Derive(req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return d.derive(req, d.acquire("master", CopySecret(req.MasterSecret)))
}

func (d *Deriver) derive(req Request, master *Secret) (string, error) {
	defer master.Wipe()

	salt := Salt(d.Hash, req.Site, req.Login, req.Length, req.Counter)
	iterations := Iterations(req.Counter)
	size := PoolSize(req.Length)

	d.tracef("stretching %d byte secret into %d bytes (%d iterations)", master.Len(), size, iterations)
	start := time.Now()
	raw, err := d.stretcher().Stretch(master.Bytes(), salt, iterations, size)
	buf := d.acquire("pool", NewSecret(raw))
	defer buf.Wipe()
	if err != nil {
		return "", NewCryptoBackendError(err)
	}
	if len(raw) != size {
		return "", NewCryptoBackendError(fmt.Errorf("stretcher returned %d bytes, expected %d", len(raw), size))
	}
	d.tracef("stretched in %s", time.Since(start))
	master.Wipe()

	p := newPool(buf.Bytes())
	defer p.release()

	chars, err := sample(p, req.Classes, req.Symbols, req.Length)
	if err != nil {
		d.tracef("sampling failed: %s", err)
		return "", err
	}
	defer Zero(chars)
	d.tracef("sampled %d characters from a %d character alphabet (%d of %d pool bytes used, front high-water mark %d)",
		len(chars), len(Alphabet(req.Classes, req.Symbols)), p.usedCount(), size, p.high)

	if err := shuffle(p, chars); err != nil {
		d.tracef("shuffle failed: %s", err)
		return "", err
	}
	d.tracef("shuffled using %d bytes from the back of the pool", p.consumed())
	if p.overlaps > 0 {
		d.tracef("WARNING: shuffle reused %d bytes already consumed by the sampler", p.overlaps)
	}

	return string(chars), nil
}

func (d *Deriver) stretcher() Stretcher {
	if d.Stretcher != nil {
		return d.Stretcher
	}
	return PBKDF2{Hash: d.Hash}
}

func (d *Deriver) acquire(name string, s *Secret) *Secret {
	if d.acquired != nil {
		d.acquired(name, s)
	}
	return s
}

func (d *Deriver) tracef(format string, args ...interface{}) {
	if d.Trace == nil {
		return
	}
	fmt.Fprintf(d.Trace, "derive: "+format+"\n", args...)
}
