package derive

// A Secret owns a buffer of sensitive bytes.  Whoever acquires one is
// expected to `defer s.Wipe()` straight away; Wipe overwrites the buffer
// with zeros and is safe to call more than once.
type Secret struct {
	b []byte
}

// NewSecret takes ownership of b.  The caller must not keep using b
// after the Secret has been wiped.
func NewSecret(b []byte) *Secret {
	return &Secret{b: b}
}

// CopySecret returns a Secret holding its own copy of b, leaving b alone.
func CopySecret(b []byte) *Secret {
	c := make([]byte, len(b))
	copy(c, b)
	return NewSecret(c)
}

// Bytes exposes the underlying buffer.  Nil once wiped.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Len is the size of the buffer, zero once wiped.
func (s *Secret) Len() int {
	return len(s.Bytes())
}

// Wipe zeroes the buffer and drops the reference to it.
func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	Zero(s.b)
	s.b = nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
