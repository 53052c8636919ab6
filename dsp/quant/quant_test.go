package quant

import "testing"

func TestSaturation(t *testing.T) {
	in := []complex128{complex(10, 0), complex(-10, 0), complex(0.5, 0)}
	out := Process(nil, in, 100)
	want := []int8{127, -127, 50}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestSignIsHardBit(t *testing.T) {
	in := []complex128{complex(3, 99), complex(-3, -99)}
	out := Process(nil, in, 1)
	if out[0] <= 0 || out[1] >= 0 {
		t.Fatalf("expected sign(out) == sign(real(in)), got %v", out)
	}
}
