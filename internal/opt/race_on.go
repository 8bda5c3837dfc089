//go:build race

package opt

// Race_ reports whether the race detector is compiled in.
// Stress workloads shrink under the detector, it slows lock handoffs by
// an order of magnitude.
const Race_ = true
