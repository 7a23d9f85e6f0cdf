package derive

import "fmt"

// MaxLength is the longest password Derive will produce.
const MaxLength = 128

// Guaranteed is the number of characters reserved for class coverage:
// one per base class, plus one for the symbol alphabet.
func Guaranteed(cc []Class, p SymbolPolicy) int {
	n := len(cc)
	if p != NoSymbols && p != "" {
		n++
	}
	return n
}

// Validate rejects requests that cannot be satisfied, before any secret
// material is touched.
func Validate(cc []Class, p SymbolPolicy, length, counter int) error {
	if counter < 1 {
		return NewInvalidConfigurationError(fmt.Sprintf("counter must be at least 1 (got %d)", counter))
	}

	if !p.valid() {
		return NewInvalidConfigurationError(fmt.Sprintf("unknown symbol policy '%s'", p))
	}
	for _, c := range cc {
		if !c.valid() {
			return NewInvalidConfigurationError(fmt.Sprintf("unknown character class '%s'", c))
		}
	}

	min := Guaranteed(cc, p)
	if min == 0 {
		return NewInvalidConfigurationError("at least one character class or a symbol policy must be selected")
	}
	if length < min {
		return NewInvalidConfigurationError(fmt.Sprintf("length must be at least %d to fit every required class (got %d)", min, length))
	}

	seen := make(map[Class]bool, len(cc))
	for _, c := range cc {
		if seen[c] {
			return NewInvalidConfigurationError(fmt.Sprintf("character class '%s' requested more than once", c))
		}
		seen[c] = true
	}

	if length > MaxLength {
		return NewInvalidConfigurationError(fmt.Sprintf("length must not exceed %d (got %d)", MaxLength, length))
	}
	return nil
}
