//go:build !race

package opt

// Race_ reports whether the race detector is compiled in.
const Race_ = false
