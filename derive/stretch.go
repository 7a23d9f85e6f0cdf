package derive

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// A Stretcher turns a master secret and salt into size pseudorandom
// bytes.  It must be deterministic, and deliberately slow in proportion
// to iterations.
type Stretcher interface {
	Stretch(secret, salt []byte, iterations, size int) ([]byte, error)
}

// PBKDF2 is the default Stretcher.  A nil Hash means HMAC-SHA256.
type PBKDF2 struct {
	Hash func() hash.Hash
}

// Stretch runs PBKDF2 for the given number of iterations.
func (k PBKDF2) Stretch(secret, salt []byte, iterations, size int) ([]byte, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("pbkdf2: iteration count must be positive (got %d)", iterations)
	}
	if size < 1 {
		return nil, fmt.Errorf("pbkdf2: output size must be positive (got %d)", size)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("pbkdf2: empty salt")
	}

	h := k.Hash
	if h == nil {
		h = sha256.New
	}
	return pbkdf2.Key(secret, salt, iterations, size, h), nil
}
