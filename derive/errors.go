package derive

import (
	"errors"
	"fmt"
)

type invalidConfiguration struct {
	reason string
}

func (e invalidConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.reason)
}

type insufficientEntropy struct {
	phase     string
	requested int
	produced  int
	pool      int
	used      int
}

func (e insufficientEntropy) Error() string {
	if e.requested > 0 {
		return fmt.Sprintf("insufficient entropy during %s: needed %d characters but only produced %d (pool size %d, %d bytes used)",
			e.phase, e.requested, e.produced, e.pool, e.used)
	}
	return fmt.Sprintf("insufficient entropy during %s: byte pool of %d bytes exhausted (%d bytes used)",
		e.phase, e.pool, e.used)
}

type cryptoBackend struct {
	err error
}

func (e cryptoBackend) Error() string {
	return fmt.Sprintf("crypto backend error: %s", e.err)
}

func (e cryptoBackend) Unwrap() error {
	return e.err
}

//NewInvalidConfigurationError returns an error describing a request that
// can never succeed as given.  No secret material is consulted to produce it.
func NewInvalidConfigurationError(reason string) error {
	return invalidConfiguration{reason: reason}
}

//IsInvalidConfiguration returns true if the given error (or anything it
// wraps) was created with NewInvalidConfigurationError().
func IsInvalidConfiguration(err error) bool {
	var e invalidConfiguration
	return errors.As(err, &e)
}

//NewInsufficientEntropyError returns an error for a byte pool that ran dry
// during the named phase.  requested and produced may be zero when the
// phase draws a single byte at a time.
func NewInsufficientEntropyError(phase string, requested, produced, pool, used int) error {
	return insufficientEntropy{
		phase:     phase,
		requested: requested,
		produced:  produced,
		pool:      pool,
		used:      used,
	}
}

//IsInsufficientEntropy returns true if the given error (or anything it
// wraps) was created with NewInsufficientEntropyError().  Retrying with the
// same inputs is pointless; a different counter changes the pool.
func IsInsufficientEntropy(err error) bool {
	var e insufficientEntropy
	return errors.As(err, &e)
}

//NewCryptoBackendError wraps a failure from the hash or key stretching
// primitives.
func NewCryptoBackendError(err error) error {
	return cryptoBackend{err: err}
}

//IsCryptoBackendError returns true if the given error (or anything it
// wraps) was created with NewCryptoBackendError().
func IsCryptoBackendError(err error) bool {
	var e cryptoBackend
	return errors.As(err, &e)
}
