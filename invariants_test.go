package phasefair

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	cases := []struct {
		name  string
		setup func(l *RWLock)
		ok    bool
	}{
		{"zero", func(l *RWLock) {}, true},
		{"readers running", func(l *RWLock) { l.readersRun = 3 }, true},
		{"writer active", func(l *RWLock) { l.phase = WriterActive }, true},
		{"draining with head", func(l *RWLock) {
			l.enqueue(l.acquireTicket())
			l.phase = ReadersDraining
			l.readersRun = 1
		}, true},
		{"idle with queue", func(l *RWLock) { l.enqueue(l.acquireTicket()) }, false},
		{"handoff without queue", func(l *RWLock) { l.phase = WriterHandoff }, false},
		{"readers during writer", func(l *RWLock) {
			l.phase = WriterActive
			l.readersRun = 1
		}, false},
		{"waiting readers while idle", func(l *RWLock) { l.readersWait = 1 }, false},
		{"negative readers", func(l *RWLock) { l.readersRun = -1 }, false},
		{"stale tail", func(l *RWLock) {
			l.phase = WriterActive
			l.enqueue(l.acquireTicket())
			l.enqueue(l.acquireTicket())
			l.tail = l.head
		}, false},
		{"cycle", func(l *RWLock) {
			l.phase = WriterActive
			l.enqueue(l.acquireTicket())
			l.enqueue(l.acquireTicket())
			l.tail.next = l.head
		}, false},
		{"unknown phase", func(l *RWLock) { l.phase = 9 }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var l RWLock
			c.setup(&l)
			err := l.verify()
			if c.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvariant)
			}
		})
	}
}
