package phasefair

import (
	"time"

	"github.com/llxisdsh/pb"
)

// Group allows phase-fair reader-writer locking on arbitrary keys.
//
// Features:
//   - RLock/RUnlock for shared read access.
//   - Lock/Unlock for exclusive write access.
//   - Writers on the same key are served FIFO, as with RWLock.
//   - Infinite Keys & Auto-Cleanup: a key's lock exists only while it is
//     held or waited for.
//
// Usage:
//
//	var group Group[string]
//
//	// Readers
//	group.RLock("config")
//	read(config)
//	group.RUnlock("config")
//
//	// Writer
//	group.Lock("config")
//	write(config)
//	group.Unlock("config")
//
// Every lock of a Group shares the Group's configuration.
type Group[K comparable] struct {
	_       noCopy
	m       pb.MapOf[K, *groupEntry]
	options []func(*Config)
}

type groupEntry struct {
	mu  RWLock
	ref int32
}

// NewGroup creates a Group whose per-key locks are built with options.
func NewGroup[K comparable](options ...func(*Config)) *Group[K] {
	return &Group[K]{options: options}
}

// Lock acquires the write lock of k.
func (g *Group[K]) Lock(k K) {
	g.acquire(k).Lock()
}

// TryLockFor acquires the write lock of k, waiting at most timeout.
func (g *Group[K]) TryLockFor(k K, timeout time.Duration) bool {
	if g.acquire(k).TryLockFor(timeout) {
		return true
	}
	g.release(k)
	return false
}

// Unlock releases the write lock of k.
func (g *Group[K]) Unlock(k K) {
	v, ok := g.m.Load(k)
	if !ok {
		return
	}
	v.mu.Unlock()
	g.release(k)
}

// RLock acquires a read lock of k.
func (g *Group[K]) RLock(k K) {
	g.acquire(k).RLock()
}

// TryRLockFor acquires a read lock of k, waiting at most timeout.
func (g *Group[K]) TryRLockFor(k K, timeout time.Duration) bool {
	if g.acquire(k).TryRLockFor(timeout) {
		return true
	}
	g.release(k)
	return false
}

// RUnlock releases a read lock of k.
func (g *Group[K]) RUnlock(k K) {
	v, ok := g.m.Load(k)
	if !ok {
		return
	}
	v.mu.RUnlock()
	g.release(k)
}

// Stats returns the snapshot of k's lock, and false if no goroutine holds
// or waits for k.
func (g *Group[K]) Stats(k K) (Stats, bool) {
	v, ok := g.m.Load(k)
	if !ok {
		return Stats{}, false
	}
	return v.mu.Stats(), true
}

// acquire pins the entry of k, creating it on first use.
func (g *Group[K]) acquire(k K) *RWLock {
	v, _ := g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil {
				l.Value.ref++
				return l, l.Value, true
			}
			e := &groupEntry{ref: 1}
			for _, o := range g.options {
				o(&e.mu.cfg)
			}
			return &pb.EntryOf[K, *groupEntry]{Value: e}, e, false
		},
	)
	return &v.mu
}

// release unpins the entry of k and drops it once nobody references it.
func (g *Group[K]) release(k K) {
	g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l == nil {
				return nil, nil, false
			}
			l.Value.ref--
			if l.Value.ref <= 0 {
				return nil, l.Value, true
			}
			return l, l.Value, true
		},
	)
}
