package derive

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"math"
)

const (
	// BaseIterations is the stretch cost of counter zero.
	BaseIterations = 100000
	// MaxIterations caps the cost no matter how large the counter gets.
	MaxIterations = 1000000
)

// Iterations is min(BaseIterations + counter, MaxIterations).
func Iterations(counter int) int {
	if counter >= MaxIterations-BaseIterations {
		return MaxIterations
	}
	return BaseIterations + counter
}

// Salt hashes site, login, length and counter, joined with '|', so that
// ("example", "com") and ("ex", "amplecom") never share a salt.  A nil
// hash constructor means SHA-256.
func Salt(h func() hash.Hash, site, login string, length, counter int) []byte {
	if h == nil {
		h = sha256.New
	}
	d := h()
	fmt.Fprintf(d, "%s|%s|%d|%d", site, login, length, counter)
	return d.Sum(nil)
}

// PoolSize is the number of stretched bytes a password of the given
// length consumes from: ceil(length * 2.8) + 96.
//
// The forward sampler accepts one byte per character and walks past the
// rejected ones; the least favourable alphabet (87 characters) rejects
// 82 of every 256 bytes.  The shuffle takes length-1 bytes from the back
// and discards its rejects, at a rate that is zero for ranges dividing
// 256 and about 15% averaged over ranges 2..128.  At the maximum length
// that is roughly 190 bytes forward and 150 backward out of 455, so the
// cursors do not meet in practice; the 96-byte margin absorbs the
// variance at short lengths.  The product is taken in float64 so the size
// agrees with implementations that compute it the same way; the backward
// cursor reads from the end of the pool, so the size is part of the
// output.
func PoolSize(length int) int {
	return int(math.Ceil(float64(length)*2.8)) + 96
}
