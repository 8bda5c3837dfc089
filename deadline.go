package phasefair

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// deadline bundles the ways a parked acquisition can give up.
// The zero deadline never expires.
type deadline struct {
	clock clockwork.Clock
	at    time.Time
	timer clockwork.Timer
	ctx   context.Context
}

func newTimeout(clock clockwork.Clock, timeout time.Duration) *deadline {
	return &deadline{
		clock: clock,
		at:    clock.Now().Add(timeout),
		timer: clock.NewTimer(timeout),
	}
}

func newContextDeadline(ctx context.Context) *deadline {
	return &deadline{ctx: ctx}
}

// expired reports whether the caller must give up, regardless of whether
// its last wait was interrupted.
func (d *deadline) expired() bool {
	if d.ctx != nil && d.ctx.Err() != nil {
		return true
	}
	return d.timer != nil && !d.clock.Now().Before(d.at)
}

// wait blocks until sig is ready or the deadline passes.
// It reports false on expiry; the caller re-checks its predicate either way.
func (d *deadline) wait(sig <-chan struct{}) bool {
	var expire <-chan time.Time
	if d.timer != nil {
		expire = d.timer.Chan()
	}
	var done <-chan struct{}
	if d.ctx != nil {
		done = d.ctx.Done()
	}
	select {
	case <-sig:
		return true
	case <-expire:
		return false
	case <-done:
		return false
	}
}

func (d *deadline) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
}
