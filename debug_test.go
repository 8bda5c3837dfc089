//go:build phasefair_debug

package phasefair

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDebug_UnlockWithoutLockPanics(t *testing.T) {
	var l RWLock
	require.Panics(t, func() { l.Unlock() })
}

func TestDebug_RUnlockWithoutLockPanics(t *testing.T) {
	var l RWLock
	require.Panics(t, func() { l.RUnlock() })
}
