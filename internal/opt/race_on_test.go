//go:build race

package opt

import "testing"

func TestRaceDetected(t *testing.T) {
	if !Race_ {
		t.Fatal("Race_ = false in a -race build")
	}
}
