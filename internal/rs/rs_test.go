package rs

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestBasisConversionIsInvolution(t *testing.T) {
	for x := 0; x < 256; x++ {
		dual := ConvToDual(byte(x))
		back := DualToConv(dual)
		if back != byte(x) {
			t.Fatalf("ConvToDual/DualToConv round trip broke at %d: got %d", x, back)
		}
	}
}

// TestConvToDualMatchesLiteralTable pins ConvToDual against a literal,
// independently-derived CCSDS dual-basis value rather than round-tripping
// through the package's own inverse pair, since a direction-swap bug
// between ConvToDual and DualToConv would otherwise still pass every
// self-referential round-trip/bijection check.
func TestConvToDualMatchesLiteralTable(t *testing.T) {
	if got := ConvToDual(0x01); got != 0x7B {
		t.Fatalf("ConvToDual(0x01) = 0x%02X, want 0x7B", got)
	}
}

func TestBasisConversionIsBijective(t *testing.T) {
	seen := make(map[byte]bool)
	for x := 0; x < 256; x++ {
		d := DualToConv(byte(x))
		if seen[d] {
			t.Fatalf("DualToConv is not injective: duplicate output %d", d)
		}
		seen[d] = true
	}
}

func buildBody(rng *rand.Rand, withErrors bool) ([BodyLen]byte, [MessageLen]byte) {
	var body [BodyLen]byte
	var want [MessageLen]byte

	for lane := 0; lane < InterleaveDepth; lane++ {
		var msg [DataLen]byte
		rng.Read(msg[:])
		codeword := Encode(msg)

		if withErrors {
			// Flip up to NRoots/2 distinct symbols, the code's
			// guaranteed-correctable limit.
			perm := rng.Perm(CodewordLen)[:NRoots/2]
			for _, idx := range perm {
				codeword[idx] ^= 0xff
			}
		}

		for i := 0; i < CodewordLen; i++ {
			body[i*InterleaveDepth+lane] = ConvToDual(codeword[i])
		}
		for i := 0; i < DataLen; i++ {
			// Decode hands back dual-basis bytes, the same convention
			// as its input, so the expected message is also converted.
			want[i*InterleaveDepth+lane] = ConvToDual(msg[i])
		}
	}
	return body, want
}

func TestDecodeNoErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	body, want := buildBody(rng, false)

	var out [MessageLen]byte
	corrected := Decode(&body, &out)
	if corrected != 0 {
		t.Fatalf("expected 0 corrections on a clean body, got %d", corrected)
	}
	if !bytes.Equal(out[:], want[:]) {
		t.Fatalf("decoded message mismatch on a clean body")
	}
}

func TestDecodeCorrectsUpToCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	body, want := buildBody(rng, true)

	var out [MessageLen]byte
	corrected := Decode(&body, &out)
	if corrected < 0 {
		t.Fatalf("decoder declared an uncorrectable error within its correction capacity")
	}
	if !bytes.Equal(out[:], want[:]) {
		t.Fatalf("decoded message mismatch after correcting errors within capacity")
	}
}

func TestDecodeReportsUncorrectable(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	var body [BodyLen]byte

	var msg [DataLen]byte
	rng.Read(msg[:])
	codeword := Encode(msg)

	// Corrupt more symbols than the code can correct in lane 0.
	perm := rng.Perm(CodewordLen)[:NRoots/2+4]
	for _, idx := range perm {
		codeword[idx] ^= 0xff
	}
	for i := 0; i < CodewordLen; i++ {
		body[i*InterleaveDepth+0] = ConvToDual(codeword[i])
	}

	var out [MessageLen]byte
	if corrected := Decode(&body, &out); corrected != -1 {
		t.Fatalf("expected -1 for an over-capacity error burst, got %d", corrected)
	}
}

func TestEncodeProducesZeroSyndromes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var msg [DataLen]byte
	rng.Read(msg[:])
	codeword := Encode(msg)

	s := syndromes(codeword[:])
	for i, v := range s {
		if v != 0 {
			t.Fatalf("syndrome[%d] = %d, want 0 for a clean codeword", i, v)
		}
	}
}
