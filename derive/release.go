//go:build !passlite_debug
// +build !passlite_debug

package derive

const debugChecks = false
