/*
NAME
  derandom.go - CCSDS pseudo-randomizer / derandomizer.

DESCRIPTION
  The GOES downlink XORs each frame body with a fixed, periodic
  pseudo-random byte sequence before transmission (to guarantee
  adequate bit transitions for symbol-timing recovery); Process
  reverses this by XORing the same sequence back in, since the
  generator is an involution.

AUTHORS
  Grounded on the CCSDS polynomial (x^8+x^7+x^5+x^3+1, all-ones seed,
  255-byte period) specified in original_source/src/decoder/packetizer.cc;
  implemented as a small LFSR-driven package-level table built once at
  init, in the style of ausocean-av/codec/adpcm's small stateful
  codecs.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package derandom implements the CCSDS pseudo-randomizer used to
// whiten GOES downlink frame bodies.
package derandom

// Period is the length, in bytes, of the CCSDS randomizer sequence
// before it repeats.
const Period = 255

var sequence [Period]byte

func init() {
	// x^8 + x^7 + x^5 + x^3 + 1, all-ones initial state. Each output
	// byte is eight consecutive MSB-first bits of the shift register.
	reg := uint8(0xff)
	nextBit := func() uint8 {
		out := reg >> 7
		fb := ((reg >> 7) ^ (reg >> 5) ^ (reg >> 3) ^ reg) & 1
		reg = (reg << 1) | fb
		return out
	}
	for i := 0; i < Period; i++ {
		var b uint8
		for j := 0; j < 8; j++ {
			b = (b << 1) | nextBit()
		}
		sequence[i] = b
	}
}

// Process XORs data in place with the randomizer sequence, restarting
// the sequence at byte 0 for every call: each GOES frame body is
// derandomized independently.
func Process(data []byte) {
	for i := range data {
		data[i] ^= sequence[i%Period]
	}
}
