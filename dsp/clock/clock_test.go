package clock

import "testing"

func TestOmegaStaysWithinTolerance(t *testing.T) {
	r := New(8, 0.05, 0.0005, 0.035)
	in := make([]complex128, 4000)
	for i := range in {
		if (i/8)%2 == 0 {
			in[i] = complex(1, 0)
		} else {
			in[i] = complex(-1, 0)
		}
	}
	out := r.Process(nil, in)
	if len(out) == 0 {
		t.Fatal("expected at least one recovered symbol")
	}
	if r.Omega < 8*0.965 || r.Omega > 8*1.035 {
		t.Fatalf("omega %v outside +/-3.5%% of nominal 8", r.Omega)
	}
}

func TestOutputRoughlyOneSamplePerSymbol(t *testing.T) {
	r := New(4, 0.05, 0.0005, 0.035)
	in := make([]complex128, 4*500)
	for i := range in {
		in[i] = complex(1, 0)
	}
	out := r.Process(nil, in)
	// With omega=4 samples/symbol we expect roughly len(in)/4 symbols.
	want := len(in) / 4
	if out := len(out); out < want-5 || out > want+5 {
		t.Fatalf("got %d symbols, want close to %d", out, want)
	}
}

func TestMuStaysInUnitInterval(t *testing.T) {
	r := New(5, 0.05, 0.0005, 0.035)
	in := make([]complex128, 5*200)
	for i := range in {
		in[i] = complex(1, 0.2)
	}
	r.Process(nil, in)
	if r.Mu < 0 || r.Mu >= 1 {
		t.Fatalf("mu %v outside [0,1)", r.Mu)
	}
}
