package rice

import (
	"math/rand"
	"testing"
)

func TestEncodeDecodeRoundTripsSmoothLine(t *testing.T) {
	params := Params{BitsPerPixel: 8, PixelsPerBlock: 16}
	line := make([]byte, 64)
	v := byte(20)
	for i := range line {
		v += byte(i%3) - 1
		line[i] = v
	}

	encoded := Encode(params, line)
	got, err := Decode(params, encoded, len(line))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for i := range line {
		if got[i] != line[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], line[i])
		}
	}
}

func TestEncodeDecodeRoundTripsRandomLine(t *testing.T) {
	params := Params{BitsPerPixel: 8, PixelsPerBlock: 8}
	rng := rand.New(rand.NewSource(1))
	line := make([]byte, 37)
	for i := range line {
		line[i] = byte(rng.Intn(256))
	}

	encoded := Encode(params, line)
	got, err := Decode(params, encoded, len(line))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for i := range line {
		if got[i] != line[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], line[i])
		}
	}
}

func TestDecodeFailsOnTruncatedInput(t *testing.T) {
	params := Params{BitsPerPixel: 8, PixelsPerBlock: 16}
	line := make([]byte, 64)
	for i := range line {
		line[i] = byte(i)
	}
	encoded := Encode(params, line)

	if _, err := Decode(params, encoded[:len(encoded)/2], len(line)); err == nil {
		t.Fatalf("Decode() on truncated input succeeded, want error")
	}
}

func TestDecodeFailsOnMismatchedScanlineLength(t *testing.T) {
	params := Params{BitsPerPixel: 8, PixelsPerBlock: 16}
	line := make([]byte, 30)
	for i := range line {
		line[i] = byte(i * 7)
	}
	encoded := Encode(params, line)

	if _, err := Decode(params, encoded, len(line)*4); err == nil {
		t.Fatalf("Decode() against an oversized scanline length succeeded, want error")
	}
}
