package frame

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/ausocean/goesrx/internal/derandom"
	"github.com/ausocean/goesrx/internal/rs"
	"github.com/ausocean/goesrx/internal/viterbi"
)

// buildCycle constructs one full encoded acquisition cycle (sync word,
// prelude, frame) for a given 892-byte VCDU message, exactly inverting
// the packetizer's decode chain, and converts it into a confident
// noiseless soft-bit stream.
func buildCycle(t *testing.T, msg [rs.MessageLen]byte, syncType Type) []int8 {
	t.Helper()

	var bodyArr [rs.BodyLen]byte
	for lane := 0; lane < rs.InterleaveDepth; lane++ {
		var data [rs.DataLen]byte
		for i := 0; i < rs.DataLen; i++ {
			// The decoder returns dual-basis bytes, so the message
			// is converted to conventional basis before encoding.
			data[i] = rs.DualToConv(msg[i*rs.InterleaveDepth+lane])
		}
		codeword := rs.Encode(data)
		for i := 0; i < rs.CodewordLen; i++ {
			bodyArr[i*rs.InterleaveDepth+lane] = rs.ConvToDual(codeword[i])
		}
	}

	body := append([]byte{}, bodyArr[:]...)
	derandom.Process(body) // transmit-side randomizing is the same XOR involution.

	frame := make([]byte, 0, frameBytes)
	frame = append(frame, []byte{0xaa, 0x55, 0xaa, 0x55}...) // arbitrary 4-byte sync echo
	frame = append(frame, body...)
	if len(frame) != frameBytes {
		t.Fatalf("internal test error: frame length %d, want %d", len(frame), frameBytes)
	}
	if syncType == LRITPhase180 {
		// decodeLocked complements the decoded frame on LockedLRIT180 to
		// undo the 180-degree ambiguity, so a cycle built to be decoded
		// under that state must carry the complemented frame going in.
		for i := range frame {
			frame[i] = ^frame[i]
		}
	}

	packet := make([]byte, 0, preludeBytes+frameBytes)
	packet = append(packet, []byte{0, 0, 0, 0}...) // prelude warm-up bits
	packet = append(packet, frame...)

	encoded := viterbi.Encode(packet, PreludeBits+FrameBits)

	soft := make([]int8, 0, cycleBits)
	soft = append(soft, encodedBitsToSoft(encodedSyncWords[syncType], EncodedSyncWordBits)...)
	soft = append(soft, bytesToSoft(encoded, EncodedPreludeBits+EncodedFrameBits)...)
	return soft
}

func encodedBitsToSoft(pattern uint64, nBits int) []int8 {
	out := make([]int8, nBits)
	for i := 0; i < nBits; i++ {
		bit := (pattern >> uint(nBits-1-i)) & 1
		if bit == 0 {
			out[i] = 100
		} else {
			out[i] = -100
		}
	}
	return out
}

func bytesToSoft(encoded []byte, nBits int) []int8 {
	out := make([]int8, nBits)
	for i := 0; i < nBits; i++ {
		b := (encoded[i/8] >> (7 - uint(i%8))) & 1
		if b == 0 {
			out[i] = 100
		} else {
			out[i] = -100
		}
	}
	return out
}

func TestPacketizerAcquiresAndDecodes(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var msg [rs.MessageLen]byte
	rng.Read(msg[:])

	soft := buildCycle(t, msg, LRITPhase000)
	// Prepend noise so the packetizer must search for the sync word.
	noise := make([]int8, 200)
	for i := range noise {
		noise[i] = int8(50 - 2*(i%100))
	}
	stream := append(noise, soft...)

	p := NewPacketizer(293883)
	p.Feed(stream)

	var pkt *Packet
	for i := 0; i < 1000; i++ {
		got, ok := p.Next()
		if ok {
			pkt = got
			break
		}
		if p.Buffered() == 0 {
			break
		}
	}

	if pkt == nil {
		t.Fatalf("packetizer never produced a packet")
	}
	if !pkt.OK {
		t.Fatalf("packet decode reported failure (rs errors=%d)", pkt.ReedSolomonByteErrors)
	}
	if !bytes.Equal(pkt.Bytes[:], msg[:]) {
		t.Fatalf("decoded VCDU mismatch:\n got  %x\n want %x", pkt.Bytes, msg)
	}
}

// TestPacketizerHandlesLRITPhaseFlipAcrossFrames exercises spec.md §8
// scenario 5: a second cycle arrives 180 degrees out of phase with the
// first. The packetizer must recognize the new orientation, stay
// Locked rather than falling back to Unlocked reacquisition, and still
// decode the frame correctly.
func TestPacketizerHandlesLRITPhaseFlipAcrossFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	var msg1, msg2 [rs.MessageLen]byte
	rng.Read(msg1[:])
	rng.Read(msg2[:])

	p := NewPacketizer(293883)
	p.Feed(buildCycle(t, msg1, LRITPhase000))

	pkt1, ok := p.Next()
	if !ok {
		t.Fatalf("first cycle did not produce a packet")
	}
	if !pkt1.OK {
		t.Fatalf("first packet decode reported failure (rs errors=%d)", pkt1.ReedSolomonByteErrors)
	}
	if !bytes.Equal(pkt1.Bytes[:], msg1[:]) {
		t.Fatalf("first packet mismatch:\n got  %x\n want %x", pkt1.Bytes, msg1)
	}
	if p.State() != LockedLRIT000 {
		t.Fatalf("expected LockedLRIT000 after the first cycle, got %v", p.State())
	}

	p.Feed(buildCycle(t, msg2, LRITPhase180))

	pkt2, ok := p.Next()
	if !ok {
		t.Fatalf("phase-inverted cycle did not produce a packet")
	}
	if !pkt2.OK {
		t.Fatalf("phase-inverted packet decode reported failure (rs errors=%d)", pkt2.ReedSolomonByteErrors)
	}
	if !bytes.Equal(pkt2.Bytes[:], msg2[:]) {
		t.Fatalf("phase-inverted packet mismatch:\n got  %x\n want %x", pkt2.Bytes, msg2)
	}
	if p.State() != LockedLRIT180 {
		t.Fatalf("expected packetizer to stay Locked as LockedLRIT180 after the phase flip, got %v", p.State())
	}
}
