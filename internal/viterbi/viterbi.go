/*
NAME
  viterbi.go - rate 1/2, constraint-7 soft-decision convolutional codec.

DESCRIPTION
  Encode implements the CCSDS convolutional encoder used on the GOES
  downlink (generator polynomials 0x4F, 0x6D); DecodeSoft implements the
  corresponding Viterbi maximum-likelihood decoder over 8-bit soft
  (confidence-weighted) input, per spec §4.7/§6.

AUTHORS
  Grounded on the bit-level stateful codec style of
  ausocean-av/codec/adpcm (Encoder/Decoder with small integer state
  advanced one unit at a time) and ausocean-av/codec/h264/h264dec/bits
  (bit-oriented reader), reimplemented here as a from-scratch Viterbi
  trellis decoder — there is no convolutional/Viterbi library among the
  example dependencies, so this is hand-rolled (see DESIGN.md).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package viterbi implements the rate 1/2, constraint length 7
// convolutional code used on the GOES LRIT/HRIT downlink, including a
// soft-decision Viterbi decoder.
package viterbi

import "math/bits"

// ConstraintLength is K for this code; the encoder's shift register
// holds ConstraintLength-1 bits of history.
const ConstraintLength = 7

// Generator polynomials, as used by the downlink's convolutional coder.
const (
	poly0 = 0x4f
	poly1 = 0x6d
)

const numStates = 1 << (ConstraintLength - 1) // 64
const stateMask = numStates - 1

// Encode convolutionally encodes the message bits in msg (MSB-first
// within each byte, nBits total) at rate 1/2, returning 2*nBits output
// bits packed MSB-first into bytes (the final byte is zero-padded).
func Encode(msg []byte, nBits int) []byte {
	out := make([]byte, (2*nBits+7)/8)
	var state uint8
	var outPos int

	writeBit := func(b uint8) {
		if b != 0 {
			out[outPos/8] |= 1 << (7 - uint(outPos%8))
		}
		outPos++
	}

	for i := 0; i < nBits; i++ {
		b := (msg[i/8] >> (7 - uint(i%8))) & 1
		window := ((state << 1) | b) & 0x7f
		writeBit(parity(window & poly0))
		writeBit(parity(window & poly1))
		state = window & stateMask
	}
	return out
}

func parity(v uint8) uint8 {
	return uint8(bits.OnesCount8(v) & 1)
}

// branch describes one trellis transition: the previous state, the
// input bit taken, and the two encoder output bits it produces.
type branch struct {
	prevState uint8
	input     uint8
	out0      uint8
	out1      uint8
}

// transitions[state] holds the two branches that lead INTO state,
// indexed by the oldest bit of the previous state (prev>>5). Both
// branches carry the same input bit, state&1.
var transitions [numStates][2]branch

func init() {
	for prev := uint8(0); prev < numStates; prev++ {
		for b := uint8(0); b < 2; b++ {
			window := ((prev << 1) | b) & 0x7f
			next := window & stateMask
			transitions[next][prev>>5] = branch{
				prevState: prev,
				input:     b,
				out0:      parity(window & poly0),
				out1:      parity(window & poly1),
			}
		}
	}
}

// DecodeSoft decodes nBits message bits from soft, a stream of
// 2*nBits 8-bit soft values (sign = received hard bit, 0 = bit 0,
// negative = bit 1; magnitude = confidence). It returns the decoded
// message bits packed MSB-first into bytes.
func DecodeSoft(soft []int8, nBits int) []byte {
	const inf = int64(1) << 40

	metric := make([]int64, numStates)
	for i := 1; i < numStates; i++ {
		metric[i] = inf
	}

	// survivor[t][s] holds the input bit chosen for the best path
	// arriving at state s after step t.
	survivor := make([][numStates]uint8, nBits)
	prevStateOf := make([][numStates]uint8, nBits)

	next := make([]int64, numStates)
	for t := 0; t < nBits; t++ {
		r0, r1 := soft[2*t], soft[2*t+1]
		for s := range next {
			next[s] = inf
		}

		for s := uint8(0); s < numStates; s++ {
			for b := uint8(0); b < 2; b++ {
				br := transitions[s][b]
				if metric[br.prevState] >= inf {
					continue
				}
				cost := metric[br.prevState] + branchCost(br.out0, r0) + branchCost(br.out1, r1)
				if cost < next[s] {
					next[s] = cost
					survivor[t][s] = br.input
					prevStateOf[t][s] = br.prevState
				}
			}
		}
		copy(metric, next)
	}

	// Choose the surviving state with the lowest final metric.
	best := uint8(0)
	for s := uint8(1); s < numStates; s++ {
		if metric[s] < metric[best] {
			best = s
		}
	}

	bitsOut := make([]uint8, nBits)
	state := best
	for t := nBits - 1; t >= 0; t-- {
		bitsOut[t] = survivor[t][state]
		state = prevStateOf[t][state]
	}

	out := make([]byte, (nBits+7)/8)
	for i, b := range bitsOut {
		if b != 0 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

// branchCost returns the soft-decision cost of receiving soft value r
// when expected is the encoder's hard output bit (0 or 1). The cost is
// zero when the hard decisions agree and grows with confidence
// (magnitude) when they disagree, so confident disagreements are
// penalized more than marginal ones.
func branchCost(expected uint8, r int8) int64 {
	hard := uint8(0)
	if r < 0 {
		hard = 1
	}
	mag := int64(r)
	if mag < 0 {
		mag = -mag
	}
	if hard == expected {
		return 0
	}
	return mag + 1
}

// CompareSoft re-encodes msg (nBits message bits) and counts the
// positions where the resulting hard bits disagree with the hard bits
// implied by the sign of original, a stream of 2*nBits soft values.
// This is used to estimate the number of Viterbi-corrected bit errors.
func CompareSoft(original []int8, msg []byte, nBits int) int {
	encoded := Encode(msg, nBits)
	errors := 0
	for i := 0; i < 2*nBits; i++ {
		encBit := (encoded[i/8] >> (7 - uint(i%8))) & 1
		hard := uint8(0)
		if original[i] < 0 {
			hard = 1
		}
		if encBit != hard {
			errors++
		}
	}
	return errors
}
