package phasefair

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/llxisdsh/phasefair/internal/opt"
)

// ErrInvariant is wrapped by the panics raised when a lock built with the
// phasefair_debug tag finds its state inconsistent. That only happens after
// misuse, such as unlocking a lock that is not held.
var ErrInvariant = errors.New("phasefair: invariant violated")

// check asserts the lock invariants in debug builds. Called with l.mu held
// at the end of every transition.
func (l *RWLock) check() {
	if !opt.Debug_ {
		return
	}
	if err := l.verify(); err != nil {
		l.fail(err)
	}
}

func (l *RWLock) assertPhase(want Phase) {
	if opt.Debug_ && l.phase != want {
		l.fail(fmt.Errorf("%w: phase is %v, want %v", ErrInvariant, l.phase, want))
	}
}

func (l *RWLock) fail(err error) {
	l.cfg.log().Error("phasefair: inconsistent lock state",
		zap.Error(err),
		zap.Stringer("phase", l.phase),
		zap.Int32("readersRunning", l.readersRun),
		zap.Int32("readersWaiting", l.readersWait),
		zap.Int32("writersQueued", l.queued))
	panic(err)
}

// verify reports the first invariant that does not hold. l.mu must be held.
func (l *RWLock) verify() error {
	if l.readersRun < 0 || l.readersWait < 0 {
		return fmt.Errorf("%w: negative reader count (running %d, waiting %d)",
			ErrInvariant, l.readersRun, l.readersWait)
	}
	if (l.head == nil) != (l.tail == nil) {
		return fmt.Errorf("%w: queue head and tail disagree on emptiness", ErrInvariant)
	}

	// Walk at most queued+1 links so a cycle cannot hang the check.
	var n int32
	last := l.head
	for t := l.head; t != nil; t = t.next {
		n++
		if n > l.queued {
			return fmt.Errorf("%w: queue longer than %d or cyclic", ErrInvariant, l.queued)
		}
		last = t
	}
	if n != l.queued {
		return fmt.Errorf("%w: queue holds %d tickets, want %d", ErrInvariant, n, l.queued)
	}
	if last != l.tail {
		return fmt.Errorf("%w: tail is not the last ticket", ErrInvariant)
	}

	switch l.phase {
	case Idle:
		if l.head != nil {
			return fmt.Errorf("%w: %d writers queued while %v", ErrInvariant, n, l.phase)
		}
	case ReadersDraining, WriterHandoff:
		if l.head == nil {
			return fmt.Errorf("%w: no writer queued while %v", ErrInvariant, l.phase)
		}
	case WriterActive:
	default:
		return fmt.Errorf("%w: unknown %v", ErrInvariant, l.phase)
	}
	if l.readersRun > 0 && l.phase != Idle && l.phase != ReadersDraining {
		return fmt.Errorf("%w: %d readers running while %v", ErrInvariant, l.readersRun, l.phase)
	}
	if l.readersWait > 0 && l.phase == Idle {
		return fmt.Errorf("%w: %d readers waiting while %v", ErrInvariant, l.readersWait, l.phase)
	}
	return nil
}
