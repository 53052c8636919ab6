/*
NAME
  quant.go - soft-bit quantizer.

DESCRIPTION
  Quantize maps the in-phase component of a recovered symbol to a
  saturating int8 soft bit: sign is the hard bit, magnitude is the
  Viterbi confidence, per spec §4.6.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package quant converts recovered symbols into signed 8-bit soft bits.
package quant

// Process converts the in-phase component of each symbol in in into a
// saturating int8 soft bit, appending to dst and returning the extended
// slice. A scale factor maps the expected symbol amplitude onto the
// int8 range before saturation.
func Process(dst []int8, in []complex128, scale float64) []int8 {
	for _, s := range in {
		v := real(s) * scale
		switch {
		case v > 127:
			v = 127
		case v < -127:
			v = -127
		}
		dst = append(dst, int8(v))
	}
	return dst
}
