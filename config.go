package phasefair

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// ============================================================================
// Configuration
// ============================================================================

// Config defines configurable options for RWLock initialization.
// The zero RWLock behaves as if built with an empty Config.
type Config struct {
	// clock is the time source for the deadlines of TryLockFor and
	// TryRLockFor. If nil, the wall clock is used.
	// Tests inject a fake clock to step deadlines deterministically.
	clock clockwork.Clock

	// logger receives diagnostics about abandoned waits and phase repairs.
	// If nil, nothing is logged.
	logger *zap.Logger
}

// WithClock configures the time source used for deadlines.
// Pass nil to use the wall clock.
//
// Usage:
//
//	clk := clockwork.NewFakeClock()
//	l := NewRWLock(WithClock(clk))
func WithClock(clock clockwork.Clock) func(*Config) {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithLogger configures the logger for timeout repairs and, with the
// phasefair_debug build tag, invariant violations.
func WithLogger(logger *zap.Logger) func(*Config) {
	return func(c *Config) {
		c.logger = logger
	}
}

var (
	wallClock = clockwork.NewRealClock()
	nopLogger = zap.NewNop()
)

func (c *Config) timeSource() clockwork.Clock {
	if c.clock == nil {
		return wallClock
	}
	return c.clock
}

func (c *Config) log() *zap.Logger {
	if c.logger == nil {
		return nopLogger
	}
	return c.logger
}
