/*
NAME
  packetizer.go - frame acquisition, Viterbi decode and Reed-Solomon
  decode of the raw soft-bit stream into VCDUs.

DESCRIPTION
  Packetizer implements the acquisition state machine of spec §9:
  {Unlocked, Locked-LRIT-000, Locked-LRIT-180, Locked-HRIT-000,
  Locked-HRIT-180}. While Unlocked it slides a search window over the
  soft-bit stream looking for one of the four known sync patterns; once
  Locked it checks only the expected sync position each cycle, detects
  LRIT phase flips and applies the HRIT NRZ-M differential decode, then
  Viterbi-decodes, derandomizes and Reed-Solomon-decodes each frame
  into an 892-byte VCDU.

AUTHORS
  Grounded on original_source/src/decoder/packetizer.cc's frame/sync/
  prelude byte geometry and its NRZ-M decode formula, and on
  ausocean-av/codec/h264/h264dec's stateful "feed bytes, drain decoded
  units" decoder shape (Feed/Next rather than a single blocking call),
  adapted to a streaming soft-bit buffer.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import (
	"time"

	"github.com/ausocean/goesrx/internal/derandom"
	"github.com/ausocean/goesrx/internal/rs"
	"github.com/ausocean/goesrx/internal/viterbi"
)

// Frame geometry, in bits and their Viterbi-encoded (rate 1/2) sizes.
const (
	FrameBits   = 8192
	PreludeBits = 32

	EncodedFrameBits   = 2 * FrameBits
	EncodedPreludeBits = 2 * PreludeBits

	// cycleBits is the total encoded bit length of one acquisition
	// cycle: sync word, prelude and frame.
	cycleBits = EncodedSyncWordBits + EncodedPreludeBits + EncodedFrameBits

	frameBytes   = FrameBits / 8   // 1024
	preludeBytes = PreludeBits / 8 // 4
	syncBytes    = SyncWordBits / 8
)

// Packet is one decoded VCDU plus the packetizer's per-packet
// telemetry, per spec §4.7.
type Packet struct {
	Bytes                 [rs.MessageLen]byte
	OK                    bool
	ViterbiBitErrors      int
	ReedSolomonByteErrors int
	SkippedSymbols        int
	RelativeTime          time.Duration
}

// Packetizer turns a continuous soft-bit stream into a sequence of
// Packets, tracking acquisition state across calls to Feed/Next.
type Packetizer struct {
	state LockState

	buf []int8

	symbolsConsumed uint64
	symbolRate      float64

	skippedSymbols int // accumulated during Unlocked search, since the last emitted packet.

	hritB0 uint8 // NRZ-M running state, carried while Locked on HRIT.
}

// NewPacketizer returns a Packetizer for a stream at the given symbol
// rate (symbol/sec), used to compute each packet's RelativeTime.
func NewPacketizer(symbolRate float64) *Packetizer {
	return &Packetizer{symbolRate: symbolRate}
}

// Feed appends newly arrived soft bits to the packetizer's internal
// buffer.
func (p *Packetizer) Feed(soft []int8) {
	p.buf = append(p.buf, soft...)
}

// Buffered returns the number of soft bits currently held.
func (p *Packetizer) Buffered() int { return len(p.buf) }

// State returns the packetizer's current acquisition state.
func (p *Packetizer) State() LockState { return p.state }

// Next attempts to produce the next packet from buffered soft bits. It
// returns ok=false when there isn't yet enough data, in which case the
// caller should Feed more and try again.
func (p *Packetizer) Next() (pkt *Packet, ok bool) {
	if p.state == Unlocked {
		return p.acquire()
	}
	return p.decodeLocked()
}

// acquire runs one step of the Unlocked search: it slides a window the
// size of one full cycle across the buffer, finds the best-correlating
// offset, and either discards the skipped symbols and reports no
// packet yet, or locks and decodes immediately when the sync word is
// already at the front.
func (p *Packetizer) acquire() (*Packet, bool) {
	if len(p.buf) < cycleBits {
		return nil, false
	}

	off, t, score := Correlate(p.buf[:cycleBits])
	if off < 0 || score < EncodedSyncWordBits/2 {
		// No usable correlation in this window at all; drop a frame's
		// worth of symbols and keep searching.
		p.skippedSymbols += cycleBits
		p.discard(cycleBits)
		return nil, false
	}
	if off > 0 {
		p.skippedSymbols += off
		p.discard(off)
		return nil, false
	}

	p.state = lockStateFor(t)
	p.hritB0 = 0
	return p.decodeLocked()
}

// decodeLocked decodes one frame while already Locked: it verifies the
// sync word at the expected position, updates phase-flip state, and on
// success Viterbi-decodes, derandomizes and Reed-Solomon-decodes the
// frame body into a Packet.
func (p *Packetizer) decodeLocked() (*Packet, bool) {
	if len(p.buf) < cycleBits {
		return nil, false
	}

	t, score := CorrelateAt(p.buf, 0)
	if score < EncodedSyncWordBits/2 || t.IsLRIT() != p.state.isLRIT() {
		// Lost the lock entirely; fall back to full reacquisition.
		p.state = Unlocked
		return p.acquire()
	}

	newState := lockStateFor(t)
	if newState != p.state {
		// A phase flip within the same family (LRIT 000<->180, or the
		// HRIT equivalent); stay Locked, just update orientation.
		p.state = newState
	}

	payload := p.buf[EncodedSyncWordBits:cycleBits]
	decoded := viterbi.DecodeSoft(payload, PreludeBits+FrameBits)
	bitErrors := viterbi.CompareSoft(payload, decoded, PreludeBits+FrameBits)

	frame := append([]byte{}, decoded[preludeBytes:]...) // drop the prelude

	switch p.state {
	case LockedLRIT180:
		for i := range frame {
			frame[i] = ^frame[i]
		}
	case LockedHRIT000, LockedHRIT180:
		nrzmDecode(frame, &p.hritB0)
	}

	body := frame[syncBytes:] // drop the echoed sync word
	derandom.Process(body)

	var message [rs.MessageLen]byte
	var bodyArr [rs.BodyLen]byte
	copy(bodyArr[:], body)
	corrected := rs.Decode(&bodyArr, &message)

	pkt := &Packet{
		Bytes:                 message,
		OK:                    corrected >= 0,
		ViterbiBitErrors:      bitErrors,
		ReedSolomonByteErrors: corrected,
		SkippedSymbols:        p.skippedSymbols,
		RelativeTime:          p.relativeTime(),
	}
	p.skippedSymbols = 0

	p.discard(cycleBits)
	if corrected < 0 {
		p.state = Unlocked
	}
	return pkt, true
}

// nrzmDecode reverses HRIT's NRZ-M differential encoding in place,
// carrying the last decoded bit across calls via b0.
func nrzmDecode(data []byte, b0 *uint8) {
	for i := range data {
		m := (*b0 << 7) | ((data[i] >> 1) & 0x7f)
		*b0 = data[i] & 1
		data[i] ^= m
	}
}

func (p *Packetizer) discard(n int) {
	p.buf = p.buf[n:]
	p.symbolsConsumed += uint64(n)
}

func (p *Packetizer) relativeTime() time.Duration {
	if p.symbolRate <= 0 {
		return 0
	}
	seconds := float64(p.symbolsConsumed) / p.symbolRate
	return time.Duration(seconds * float64(time.Second))
}

func (s LockState) isLRIT() bool {
	return s == LockedLRIT000 || s == LockedLRIT180
}
