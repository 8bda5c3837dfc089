package phasefair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueOf(l *RWLock) []*ticket {
	var out []*ticket
	for t := l.head; t != nil; t = t.next {
		out = append(out, t)
	}
	return out
}

func TestTicketQueue_FIFO(t *testing.T) {
	var l RWLock
	a, b, c := l.acquireTicket(), l.acquireTicket(), l.acquireTicket()
	l.enqueue(a)
	l.enqueue(b)
	l.enqueue(c)
	require.Equal(t, []*ticket{a, b, c}, queueOf(&l))
	assert.Same(t, c, l.tail)
	assert.EqualValues(t, 3, l.queued)

	l.dequeueHead()
	require.Equal(t, []*ticket{b, c}, queueOf(&l))
	assert.Nil(t, a.next)

	l.dequeueHead()
	l.dequeueHead()
	assert.Nil(t, l.head)
	assert.Nil(t, l.tail)
	assert.EqualValues(t, 0, l.queued)
}

func TestTicketQueue_Remove(t *testing.T) {
	var l RWLock
	a, b, c := l.acquireTicket(), l.acquireTicket(), l.acquireTicket()
	l.enqueue(a)
	l.enqueue(b)
	l.enqueue(c)

	// Middle.
	require.True(t, l.remove(b))
	require.Equal(t, []*ticket{a, c}, queueOf(&l))
	assert.Same(t, c, l.tail)

	// Tail moves back.
	require.True(t, l.remove(c))
	require.Equal(t, []*ticket{a}, queueOf(&l))
	assert.Same(t, a, l.tail)

	// Not queued any more.
	assert.False(t, l.remove(c))

	// Head empties the queue.
	require.True(t, l.remove(a))
	assert.Nil(t, l.head)
	assert.Nil(t, l.tail)
	assert.EqualValues(t, 0, l.queued)
	require.NoError(t, l.verify())
}

func TestTicketPool_Reuse(t *testing.T) {
	var l RWLock
	a := l.acquireTicket()
	b := l.acquireTicket()
	assert.NotSame(t, a, b)

	l.releaseTicket(a)
	l.releaseTicket(b)

	// LIFO free list.
	assert.Same(t, b, l.acquireTicket())
	assert.Same(t, a, l.acquireTicket())
	assert.Nil(t, a.next)

	s := l.Stats()
	assert.EqualValues(t, 2, s.TicketsAllocated)
	assert.EqualValues(t, 2, s.TicketsReused)
}

func TestTicketPool_DrainsStaleWake(t *testing.T) {
	var l RWLock
	a := l.acquireTicket()
	a.signal()
	a.signal() // coalesced into the single pending token
	l.releaseTicket(a)

	a = l.acquireTicket()
	select {
	case <-a.wake:
		t.Fatal("recycled ticket carried a wake token")
	default:
	}
}
