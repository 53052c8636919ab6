package costas

import (
	"math"
	"testing"
)

func TestOmegaClampedToMaxDeviation(t *testing.T) {
	l := New(0.7071, 0.005, 0.01)
	in := make([]complex128, 2000)
	for i := range in {
		// Strong, consistently positive phase error input to drive
		// omega hard against its clamp.
		in[i] = complex(1, 1)
	}
	out := make([]complex128, len(in))
	l.Process(out, in)
	if math.Abs(l.Omega) > 0.01+1e-9 {
		t.Fatalf("omega %v exceeds max deviation 0.01", l.Omega)
	}
}

func TestPhiStaysWrapped(t *testing.T) {
	l := New(0.7071, 0.1, 1)
	in := make([]complex128, 100000)
	for i := range in {
		in[i] = complex(1, 1)
	}
	out := make([]complex128, len(in))
	l.Process(out, in)
	if l.Phi > 2*math.Pi || l.Phi < -2*math.Pi {
		t.Fatalf("phi %v outside (-2pi, 2pi)", l.Phi)
	}
}

func TestLockedSignalStaysLocked(t *testing.T) {
	l := New(0.7071, 0.005, 0.01)
	in := make([]complex128, 1000)
	for i := range in {
		in[i] = complex(1, 0) // already on-phase BPSK: no rotation needed.
	}
	out := make([]complex128, len(in))
	l.Process(out, in)
	if math.Abs(l.Omega) > 1e-6 {
		t.Fatalf("omega drifted from zero on an already-locked signal: %v", l.Omega)
	}
}
