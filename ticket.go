package phasefair

// ticket is one waiting writer's place in the queue.
// It owns a single-waiter wake signal; only the queue head is ever woken.
type ticket struct {
	next *ticket
	wake chan struct{}
}

// signal wakes the goroutine parked on t, if any.
// A pending token is kept so a wake that races the park is not lost.
func (t *ticket) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// All of the following must be called with l.mu held.

// acquireTicket pops a retired ticket from the free list, or allocates one.
func (l *RWLock) acquireTicket() *ticket {
	t := l.free
	if t != nil {
		l.free = t.next
		t.next = nil
		// Drop a token left over from the previous owner's handoff.
		select {
		case <-t.wake:
		default:
		}
		l.stats.ticketsReused++
		return t
	}
	l.stats.ticketsAllocated++
	return &ticket{wake: make(chan struct{}, 1)}
}

// releaseTicket returns t to the free list. t must be detached from the
// queue and its owner must never touch it again.
func (l *RWLock) releaseTicket(t *ticket) {
	t.next = l.free
	l.free = t
}

// enqueue appends t to the tail of the writer queue.
func (l *RWLock) enqueue(t *ticket) {
	if l.tail == nil {
		l.head = t
		l.tail = t
	} else {
		l.tail.next = t
		l.tail = t
	}
	l.queued++
}

// dequeueHead removes the head of the writer queue.
func (l *RWLock) dequeueHead() {
	t := l.head
	l.head = t.next
	if l.head == nil {
		l.tail = nil
	}
	t.next = nil
	l.queued--
}

// remove unlinks t from anywhere in the queue. It reports whether t was
// found.
func (l *RWLock) remove(t *ticket) bool {
	if l.head == t {
		l.dequeueHead()
		return true
	}
	for p := l.head; p != nil; p = p.next {
		if p.next == t {
			p.next = t.next
			if p.next == nil {
				l.tail = p
			}
			t.next = nil
			l.queued--
			return true
		}
	}
	return false
}
