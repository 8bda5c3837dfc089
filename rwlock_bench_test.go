package phasefair

import (
	"sync"
	"testing"
)

func BenchmarkRWLock_Uncontended(b *testing.B) {
	var l RWLock
	for b.Loop() {
		l.Lock()
		l.Unlock()
	}
}

func BenchmarkRWLock_WriteParallel(b *testing.B) {
	var l RWLock
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.Lock()
			l.Unlock()
		}
	})
}

func BenchmarkRWLock_ReadMostly(b *testing.B) {
	var l RWLock
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%16 == 0 {
				l.Lock()
				l.Unlock()
			} else {
				l.RLock()
				l.RUnlock()
			}
			i++
		}
	})
}

func BenchmarkSyncRWMutex_ReadMostly(b *testing.B) {
	var l sync.RWMutex
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%16 == 0 {
				l.Lock()
				l.Unlock()
			} else {
				l.RLock()
				l.RUnlock()
			}
			i++
		}
	})
}
