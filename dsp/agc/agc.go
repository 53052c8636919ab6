/*
NAME
  agc.go - automatic gain control for the receive front end.

DESCRIPTION
  AGC applies a scalar gain to every sample of a block and adapts that
  gain from the envelope of one sample in four, per spec §4.2.

AUTHORS
  Grounded on the block-processing style of ausocean-av's filter and
  codec stages, and on the envelope-tracking AGC structure described in
  doismellburning-samoyed's demodulator state (agc_fast_attack/
  agc_slow_decay fields) translated into a minimal, idiomatic Go form.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package agc implements automatic gain control on complex sample blocks.
package agc

import (
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// AGC normalizes signal magnitude toward a target envelope of 0.5 by
// adapting a scalar gain from every fourth sample of a block.
type AGC struct {
	Gain float64

	alpha    float64
	min, max float64
}

// New returns an AGC with the given adaptation rate and gain clamp range,
// starting at the given initial gain.
func New(alpha, min, max, initGain float64) *AGC {
	return &AGC{Gain: initGain, alpha: alpha, min: min, max: max}
}

// Process scales in by the current gain into out (which may alias in),
// adapting the gain from every fourth input sample. len(in) must be a
// multiple of 4; out must be at least as long as in.
func (a *AGC) Process(out, in []complex128) {
	if len(in)%4 != 0 {
		panic("agc: input block length must be a multiple of 4")
	}

	for i := 0; i < len(in); i += 4 {
		for j := i; j < i+4; j++ {
			out[j] = in[j] * complex(a.Gain, 0)
		}
		env := cmplx.Abs(out[i])
		a.Gain += a.alpha * (0.5 - env)
		a.Gain = floats.Max([]float64{a.min, floats.Min([]float64{a.max, a.Gain})})
	}
}
