package phasefair

import "testing"

func TestPhase_String(t *testing.T) {
	cases := []struct {
		p    Phase
		want string
	}{
		{Idle, "idle"},
		{ReadersDraining, "readers-draining"},
		{WriterHandoff, "writer-handoff"},
		{WriterActive, "writer-active"},
		{Phase(7), "phase(7)"},
	}
	for _, c := range cases {
		if got := c.p.String(); got != c.want {
			t.Fatalf("Phase(%d).String() = %q, want %q", c.p, got, c.want)
		}
	}
}
