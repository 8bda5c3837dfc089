//go:build !phasefair_debug

package opt

// Debug_ enables invariant assertions on every phase transition.
// Use: go test -tags=phasefair_debug
const Debug_ = false
