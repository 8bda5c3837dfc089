package phasefair

// Stats is a point-in-time snapshot of an RWLock.
//
// The first four fields describe the current state; the rest are counters
// that only grow over the lifetime of the lock.
type Stats struct {
	Phase          Phase
	ReadersRunning int
	ReadersWaiting int
	WritersQueued  int

	// WriteFastPaths and ReadFastPaths count acquisitions that neither
	// queued nor parked.
	WriteFastPaths uint64
	ReadFastPaths  uint64
	// Suspensions counts every time a goroutine parked on the lock.
	Suspensions uint64
	// Handoffs counts targeted wakes of the head writer.
	Handoffs uint64
	// ReadPhases counts batches of waiting readers admitted together.
	ReadPhases uint64
	// WriteTimeouts and ReadTimeouts count acquisitions that gave up after
	// queueing, on a deadline or a done context.
	WriteTimeouts uint64
	ReadTimeouts  uint64
	// TicketsAllocated and TicketsReused describe the writer ticket pool.
	TicketsAllocated uint64
	TicketsReused    uint64
}

type counters struct {
	writeFastPaths   uint64
	readFastPaths    uint64
	suspensions      uint64
	handoffs         uint64
	readPhases       uint64
	writeTimeouts    uint64
	readTimeouts     uint64
	ticketsAllocated uint64
	ticketsReused    uint64
}

// Stats returns a snapshot of the lock state and counters.
func (l *RWLock) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Phase:            l.phase,
		ReadersRunning:   int(l.readersRun),
		ReadersWaiting:   int(l.readersWait),
		WritersQueued:    int(l.queued),
		WriteFastPaths:   l.stats.writeFastPaths,
		ReadFastPaths:    l.stats.readFastPaths,
		Suspensions:      l.stats.suspensions,
		Handoffs:         l.stats.handoffs,
		ReadPhases:       l.stats.readPhases,
		WriteTimeouts:    l.stats.writeTimeouts,
		ReadTimeouts:     l.stats.readTimeouts,
		TicketsAllocated: l.stats.ticketsAllocated,
		TicketsReused:    l.stats.ticketsReused,
	}
}
