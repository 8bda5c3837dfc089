//go:build phasefair_debug

package opt

// Debug_ enables invariant assertions on every phase transition.
// Assertions are enabled via the phasefair_debug build tag.
const Debug_ = true
