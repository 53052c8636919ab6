/*
NAME
  costas.go - order-2 Costas loop for BPSK carrier recovery.

DESCRIPTION
  Loop tracks residual carrier phase and frequency on a BPSK signal per
  spec §4.4: mix by exp(-jphi), derive a phase error from I*Q clamped to
  [-1,1], update omega and phi with loop gains derived from a damping
  factor and loop bandwidth.

AUTHORS
  Grounded on the phase-locked-loop state fields (lo_phase, lo_step,
  pll_*) in doismellburning-samoyed's demodulator state, reimplemented
  as a minimal, idiomatic Go second-order Costas loop.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package costas implements a second-order Costas loop for BPSK carrier
// recovery.
package costas

import "math"

// Loop is a second-order Costas loop.
type Loop struct {
	Phi   float64 // accumulated phase, radians.
	Omega float64 // accumulated frequency, radians/sample.

	alpha, beta  float64
	maxDeviation float64
}

// New returns a Loop tuned for damping zeta and natural loop bandwidth
// bw (radians/sample), clamping the tracked frequency to
// +/-maxDeviation radians/sample.
func New(zeta, bw, maxDeviation float64) *Loop {
	// Standard PLL gain derivation for a proportional-plus-integrator
	// loop filter targeting damping zeta and bandwidth bw.
	theta := bw / (zeta + 1/(4*zeta))
	d := 1 + 2*zeta*theta + theta*theta
	alpha := (4 * zeta * theta) / d
	beta := (4 * theta * theta) / d

	return &Loop{alpha: alpha, beta: beta, maxDeviation: maxDeviation}
}

// Process mixes each sample of in by exp(-jPhi) into dst (which may
// alias in), updating the loop's phase and frequency estimate from the
// BPSK phase error I*Q of the mixed sample.
func (l *Loop) Process(dst, in []complex128) {
	for i, s := range in {
		mix := complex(math.Cos(-l.Phi), math.Sin(-l.Phi))
		y := s * mix
		dst[i] = y

		e := real(y) * imag(y)
		if e > 1 {
			e = 1
		} else if e < -1 {
			e = -1
		}

		l.Omega += l.beta * e
		if l.Omega > l.maxDeviation {
			l.Omega = l.maxDeviation
		} else if l.Omega < -l.maxDeviation {
			l.Omega = -l.maxDeviation
		}

		l.Phi += l.alpha*e + l.Omega
		for l.Phi > 2*math.Pi {
			l.Phi -= 2 * math.Pi
		}
		for l.Phi < -2*math.Pi {
			l.Phi += 2 * math.Pi
		}
	}
}
