package phasefair

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RWLock is a phase-fair reader-writer lock.
//
// Readers share access; writers get exclusive access. Unlike sync.RWMutex,
// fairness is defined in phases:
//   - Writers are handed the lock strictly in arrival order (FIFO).
//   - Once a writer is queued, new readers wait; the readers already running
//     finish (the reading phase drains) and the writer goes next.
//   - When a writer releases and readers are waiting, the whole batch of
//     waiting readers is admitted together before the next queued writer.
//
// A queued writer therefore waits for at most one reading phase, and a
// waiting reader for at most one writer.
//
// Implementation:
// A sync.Mutex guards a small state machine (see Phase), an intrusive FIFO
// queue of writer tickets and a free list of retired tickets. The guard is
// only held for O(1) work and is always dropped before parking. A writer
// parks on its own ticket and is woken individually (targeted handoff);
// readers park on a shared channel that is closed to admit them all
// (broadcast).
//
// It is zero-value usable. Use NewRWLock to inject a clock or a logger.
// An RWLock must not be copied after first use.
type RWLock struct {
	_  noCopy
	mu sync.Mutex

	phase       Phase
	readersRun  int32
	readersWait int32

	// head is the next writer to be handed the lock, tail the last to
	// arrive. Both are nil iff the queue is empty.
	head   *ticket
	tail   *ticket
	queued int32
	free   *ticket

	// batch is the broadcast signal of the readers waiting for the next
	// reading phase. Closed (and replaced) when that phase begins.
	batch *readerBatch

	cfg   Config
	stats counters
}

type readerBatch struct {
	admit chan struct{}
}

// NewRWLock creates an RWLock configured with the given options.
func NewRWLock(options ...func(*Config)) *RWLock {
	l := &RWLock{}
	for _, o := range options {
		o(&l.cfg)
	}
	return l
}

// Lock acquires the write lock. Blocks until the lock is available.
func (l *RWLock) Lock() {
	l.mu.Lock()
	if !l.lockFast() {
		l.lockSlow(&deadline{})
	}
	l.mu.Unlock()
}

// TryLock acquires the write lock only if that is possible without
// waiting and without overtaking a queued writer.
func (l *RWLock) TryLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.head != nil {
		return false
	}
	return l.lockFast()
}

// TryLockFor acquires the write lock, waiting at most timeout.
// It reports whether the lock was acquired. A failed call leaves the lock
// exactly as if it had never been made.
func (l *RWLock) TryLockFor(timeout time.Duration) bool {
	l.mu.Lock()
	if l.lockFast() {
		l.mu.Unlock()
		return true
	}
	if timeout <= 0 {
		l.mu.Unlock()
		return false
	}
	d := newTimeout(l.cfg.timeSource(), timeout)
	ok := l.lockSlow(d)
	l.mu.Unlock()
	d.stop()
	return ok
}

// LockContext acquires the write lock, giving up when ctx is done.
// It returns nil on success and ctx.Err() otherwise.
func (l *RWLock) LockContext(ctx context.Context) error {
	l.mu.Lock()
	if l.lockFast() {
		l.mu.Unlock()
		return nil
	}
	if err := ctx.Err(); err != nil {
		l.mu.Unlock()
		return err
	}
	ok := l.lockSlow(newContextDeadline(ctx))
	l.mu.Unlock()
	if !ok {
		return ctx.Err()
	}
	return nil
}

// Unlock releases the write lock.
// It is a run-time error if l is not locked for writing on entry.
func (l *RWLock) Unlock() {
	l.mu.Lock()
	l.unlockWrite()
	l.mu.Unlock()
}

// RLock acquires a read lock. Blocks while a writer holds or waits for
// the lock.
func (l *RWLock) RLock() {
	l.mu.Lock()
	if !l.rlockFast() {
		l.rlockSlow(&deadline{})
	}
	l.mu.Unlock()
}

// TryRLock acquires a read lock only if the current phase admits readers.
func (l *RWLock) TryRLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rlockFast()
}

// TryRLockFor acquires a read lock, waiting at most timeout.
// It reports whether the lock was acquired.
func (l *RWLock) TryRLockFor(timeout time.Duration) bool {
	l.mu.Lock()
	if l.rlockFast() {
		l.mu.Unlock()
		return true
	}
	if timeout <= 0 {
		l.mu.Unlock()
		return false
	}
	d := newTimeout(l.cfg.timeSource(), timeout)
	ok := l.rlockSlow(d)
	l.mu.Unlock()
	d.stop()
	return ok
}

// RLockContext acquires a read lock, giving up when ctx is done.
// It returns nil on success and ctx.Err() otherwise.
func (l *RWLock) RLockContext(ctx context.Context) error {
	l.mu.Lock()
	if l.rlockFast() {
		l.mu.Unlock()
		return nil
	}
	if err := ctx.Err(); err != nil {
		l.mu.Unlock()
		return err
	}
	ok := l.rlockSlow(newContextDeadline(ctx))
	l.mu.Unlock()
	if !ok {
		return ctx.Err()
	}
	return nil
}

// RUnlock releases a single read lock.
// It is a run-time error if l is not locked for reading on entry.
func (l *RWLock) RUnlock() {
	l.mu.Lock()
	l.unlockRead()
	l.mu.Unlock()
}

// Release releases whichever kind of access the current phase says is
// held: the write lock while a writer is active, a read lock otherwise.
//
// It is only correct when called by the goroutine (or on behalf of the
// holder) that owns that access. Prefer Unlock or RUnlock when the kind is
// known at the call site.
func (l *RWLock) Release() {
	l.mu.Lock()
	if l.phase == WriterActive {
		l.unlockWrite()
	} else {
		l.unlockRead()
	}
	l.mu.Unlock()
}

// RLocker returns a sync.Locker that calls RLock and RUnlock.
func (l *RWLock) RLocker() sync.Locker {
	return (*rlocker)(l)
}

type rlocker RWLock

func (r *rlocker) Lock()   { (*RWLock)(r).RLock() }
func (r *rlocker) Unlock() { (*RWLock)(r).RUnlock() }

// ============================================================================
// State machine. Everything below runs with l.mu held.
// ============================================================================

func (l *RWLock) lockFast() bool {
	if l.phase == Idle && l.readersRun == 0 {
		l.phase = WriterActive
		l.stats.writeFastPaths++
		return true
	}
	return false
}

// lockSlow queues the caller as a writer and waits for the handoff.
func (l *RWLock) lockSlow(d *deadline) bool {
	t := l.acquireTicket()
	l.enqueue(t)

	// Wait for our turn at the head of the queue.
	for l.head != t {
		if !l.park(d, t.wake) && l.head != t {
			l.abandonWrite(t)
			return false
		}
	}
	// A deadline that passed while we were moving up must not take
	// ownership of the phase.
	if d.expired() {
		l.abandonWrite(t)
		return false
	}

	if l.phase == Idle {
		if l.readersRun == 0 {
			l.phase = WriterHandoff
		} else {
			// Announce ourselves: new readers wait from now on.
			l.phase = ReadersDraining
		}
	}
	for l.phase != WriterHandoff {
		if !l.park(d, t.wake) && l.phase != WriterHandoff {
			l.abandonWrite(t)
			return false
		}
	}

	l.phase = WriterActive
	l.dequeueHead()
	l.releaseTicket(t)
	l.check()
	return true
}

// abandonWrite unlinks a writer that gave up and repairs the phase if it
// was the head. t is not recycled: its owner still holds it.
func (l *RWLock) abandonWrite(t *ticket) {
	wasHead := l.head == t
	l.remove(t)
	l.stats.writeTimeouts++
	if !wasHead {
		l.check()
		return
	}
	switch l.phase {
	case ReadersDraining:
		// The next writer, if any, inherits the draining phase and is woken
		// when the readers are done.
		if l.head == nil {
			l.cfg.log().Debug("phasefair: last queued writer gave up, readers resume",
				zap.Int32("readersRunning", l.readersRun),
				zap.Int32("readersWaiting", l.readersWait))
			l.phase = Idle
			l.admitReaders()
		}
	case WriterHandoff:
		if l.head != nil {
			l.cfg.log().Debug("phasefair: handoff passed to next writer",
				zap.Int32("writersQueued", l.queued))
			l.stats.handoffs++
			l.head.signal()
		} else {
			l.cfg.log().Debug("phasefair: handoff abandoned, readers resume",
				zap.Int32("readersWaiting", l.readersWait))
			l.phase = Idle
			l.admitReaders()
		}
	}
	l.check()
}

func (l *RWLock) unlockWrite() {
	l.assertPhase(WriterActive)
	switch {
	case l.readersWait > 0:
		// Start a reading phase for everyone waiting. With writers queued
		// the phase drains straight away so the head goes next.
		if l.head == nil {
			l.phase = Idle
		} else {
			l.phase = ReadersDraining
		}
		l.admitReaders()
	case l.head != nil:
		l.phase = WriterHandoff
		l.stats.handoffs++
		l.head.signal()
	default:
		l.phase = Idle
	}
	l.check()
}

func (l *RWLock) rlockFast() bool {
	if l.phase == Idle {
		l.readersRun++
		l.stats.readFastPaths++
		return true
	}
	return false
}

// rlockSlow waits for the next reading phase. Admission is decided by
// admitReaders, which counts the whole batch into readersRun.
func (l *RWLock) rlockSlow(d *deadline) bool {
	if l.batch == nil {
		l.batch = &readerBatch{admit: make(chan struct{})}
	}
	b := l.batch
	l.readersWait++
	if l.park(d, b.admit) {
		return true
	}
	return l.abandonRead(b)
}

// abandonRead withdraws a reader whose deadline fired while it waited on b.
// A batch admitted before the guard was retaken already counts the reader
// as running, so it keeps the lock.
func (l *RWLock) abandonRead(b *readerBatch) bool {
	select {
	case <-b.admit:
		return true
	default:
	}
	l.readersWait--
	l.stats.readTimeouts++
	l.check()
	return false
}

func (l *RWLock) unlockRead() {
	l.readersRun--
	if l.readersRun == 0 && l.phase == ReadersDraining {
		l.phase = WriterHandoff
		l.stats.handoffs++
		l.head.signal()
	}
	l.check()
}

// admitReaders starts a reading phase for every waiting reader.
func (l *RWLock) admitReaders() {
	if l.readersWait == 0 {
		return
	}
	l.readersRun += l.readersWait
	l.readersWait = 0
	close(l.batch.admit)
	l.batch = nil
	l.stats.readPhases++
}

// park drops the guard, waits for sig or the deadline, and retakes the
// guard.
func (l *RWLock) park(d *deadline, sig <-chan struct{}) bool {
	l.stats.suspensions++
	l.mu.Unlock()
	ok := d.wait(sig)
	l.mu.Lock()
	return ok
}

// noCopy makes go vet's copylocks check flag copies of RWLock and Group.
// Keep it as a named field: embedding would promote Lock and Unlock.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
