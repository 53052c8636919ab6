/*
NAME
  clock.go - Mueller-Müller symbol timing recovery.

DESCRIPTION
  Recovery tracks samples-per-symbol Omega and fractional interpolation
  offset Mu, interpolating the carrier-recovered stream with a 4-tap
  polynomial and outputting one sample per recovered symbol, per
  spec §4.5.

AUTHORS
  Grounded on the DPLL-based symbol timing recovery (data_clock_pll,
  pll_step_per_sample, slicer.prev_demod_data fields) in
  doismellburning-samoyed's demodulator state, reimplemented as a
  continuous-time Mueller-Müller recovery loop in idiomatic Go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package clock implements Mueller-Müller symbol timing recovery.
package clock

// Recovery recovers symbol timing from a carrier-recovered complex
// stream using the Mueller-Müller algorithm.
type Recovery struct {
	Omega float64 // current samples-per-symbol estimate.
	Mu    float64 // current fractional interpolation offset, [0,1).

	gainMu, gainOmega      float64
	omegaMin, omegaMax     float64
	cursor                 float64 // float index into the working buffer.
	history                [3]complex128
	prevInterp, prevDecide float64
}

// New returns a Recovery with initial samples-per-symbol omegaInit,
// loop gains gainMu/gainOmega, and omega clamped to
// omegaInit*(1 +/- omegaTolFrac).
func New(omegaInit, gainMu, gainOmega, omegaTolFrac float64) *Recovery {
	return &Recovery{
		Omega:     omegaInit,
		gainMu:    gainMu,
		gainOmega: gainOmega,
		omegaMin:  omegaInit * (1 - omegaTolFrac),
		omegaMax:  omegaInit * (1 + omegaTolFrac),
		cursor:    3, // past the 3-sample history prefix.
	}
}

// Process recovers symbols from in, appending results to dst and
// returning the extended slice.
func (r *Recovery) Process(dst []complex128, in []complex128) []complex128 {
	buf := make([]complex128, 3+len(in))
	copy(buf, r.history[:])
	copy(buf[3:], in)

	for {
		i := int(r.cursor)
		if i < 1 || i+2 >= len(buf) {
			break
		}
		mu := r.cursor - float64(i)
		y := interpolate(buf[i-1], buf[i], buf[i+1], buf[i+2], mu)

		decide := 1.0
		if real(y) < 0 {
			decide = -1.0
		}

		// Mueller-Müller timing error, computed on the in-phase
		// component: the cross terms between the current and
		// previous decisions/interpolated samples.
		err := decide*r.prevInterp - r.prevDecide*real(y)

		r.Omega += r.gainOmega * err
		if r.Omega > r.omegaMax {
			r.Omega = r.omegaMax
		} else if r.Omega < r.omegaMin {
			r.Omega = r.omegaMin
		}

		r.cursor += r.Omega + r.gainMu*err
		r.Mu = r.cursor - float64(int(r.cursor))

		r.prevInterp = real(y)
		r.prevDecide = decide

		dst = append(dst, y)
	}

	// Carry the last 3 samples of buf forward and rebase cursor onto
	// the next call's coordinate frame.
	shift := len(buf) - 3
	copy(r.history[:], buf[len(buf)-3:])
	r.cursor -= float64(shift)

	return dst
}

// interpolate evaluates a 4-tap Farrow cubic interpolant through
// samples at integer offsets -1, 0, 1, 2 at fractional position mu in
// [0,1) between samples 0 and 1.
func interpolate(ym1, y0, y1, y2 complex128, mu float64) complex128 {
	c0 := y0
	c1 := 0.5 * (y1 - ym1)
	c2 := ym1 - 2.5*y0 + 2*y1 - 0.5*y2
	c3 := 0.5*(y2-ym1) + 1.5*(y0-y1)
	return c0 + complex(mu, 0)*(c1+complex(mu, 0)*(c2+complex(mu, 0)*c3))
}
