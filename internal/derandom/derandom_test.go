package derandom

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestFirstByteIsAllOnes(t *testing.T) {
	// The all-ones LFSR state immediately emits an all-ones first byte.
	if sequence[0] != 0xff {
		t.Fatalf("sequence[0] = %#x, want 0xff", sequence[0])
	}
}

func TestProcessIsAnInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	orig := make([]byte, 1020)
	rng.Read(orig)

	got := make([]byte, len(orig))
	copy(got, orig)
	Process(got)
	Process(got)

	if !bytes.Equal(got, orig) {
		t.Fatalf("Process applied twice did not return the original data")
	}
}

func TestProcessChangesData(t *testing.T) {
	data := make([]byte, 64)
	Process(data)

	allZero := true
	for _, b := range data {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Fatalf("derandomizing an all-zero buffer produced all zeros")
	}
}
