package phasefair

import (
	"testing"

	"go.uber.org/goleak"
)

// Every parked goroutine must be released by the tests that park it.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
