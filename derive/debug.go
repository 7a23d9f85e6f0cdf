//go:build passlite_debug
// +build passlite_debug

package derive

// Built with -tags passlite_debug: pool cursor overlap panics.
const debugChecks = true
