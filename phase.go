// Package phasefair provides a phase-fair reader-writer lock.
//
// Readers and writers alternate in phases: a batch of readers, then a
// single writer, then the next batch of readers. A queued writer waits for
// at most the reading phase that is already in progress, and writers are
// served strictly in arrival order.
package phasefair

import "strconv"

// Phase is the admission mode of an RWLock.
type Phase uint8

const (
	// Idle admits readers freely (including zero readers); no writer waits.
	Idle Phase = iota
	// ReadersDraining means a writer waits for the running readers to
	// finish. New readers must wait for the next reading phase.
	ReadersDraining
	// WriterHandoff means the head of the writer queue has been woken and
	// is about to become active.
	WriterHandoff
	// WriterActive means a writer holds exclusive access.
	WriterActive
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case ReadersDraining:
		return "readers-draining"
	case WriterHandoff:
		return "writer-handoff"
	case WriterActive:
		return "writer-active"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}
