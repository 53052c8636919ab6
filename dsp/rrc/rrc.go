/*
NAME
  rrc.go - root-raised-cosine matched filter.

DESCRIPTION
  Filter is a fixed-tap-count FIR that pulse-shapes the AGC'd signal and
  optionally decimates by an integer factor, per spec §4.3. A tail of
  NTaps-1 samples is carried across calls so that no samples are lost at
  block boundaries.

AUTHORS
  Grounded on the fixed-tap-count FIR convolution style used for RRC/low
  pass filtering in doismellburning-samoyed's demodulator state
  (rrc_width_sym, rrc_rolloff, lp_filter_taps fields), reimplemented from
  the standard RRC impulse response formula in idiomatic Go using
  gonum/floats for the inner-product accumulation.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rrc implements a root-raised-cosine matched filter with
// optional integer decimation.
package rrc

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Filter is a root-raised-cosine FIR filter with a carried tail.
type Filter struct {
	taps []float64 // precomputed tap set, length NTaps.
	dec  int        // decimation factor, D>=1.

	tail []complex128 // last NTaps-1 input samples from the previous call.
}

// New builds the RRC tap set for the given sample rate, symbol rate,
// roll-off factor beta and tap count, with decimation factor dec.
func New(sampleRate, symbolRate float64, beta float64, nTaps, dec int) *Filter {
	if dec < 1 {
		dec = 1
	}
	return &Filter{
		taps: taps(sampleRate, symbolRate, beta, nTaps),
		dec:  dec,
		tail: make([]complex128, nTaps-1),
	}
}

// NTaps returns the number of filter taps.
func (f *Filter) NTaps() int { return len(f.taps) }

// taps computes the RRC impulse response sampled at sampleRate for symbols
// of rate symbolRate and roll-off beta, producing n coefficients centered
// on the filter.
func taps(sampleRate, symbolRate, beta float64, n int) []float64 {
	t := make([]float64, n)
	symPeriod := sampleRate / symbolRate // samples per symbol
	mid := float64(n-1) / 2

	for i := 0; i < n; i++ {
		x := (float64(i) - mid) / symPeriod // time in symbol periods
		t[i] = impulse(x, beta)
	}

	// Normalize to unit energy so the filter neither amplifies nor
	// attenuates the AGC'd envelope.
	var energy float64
	for _, v := range t {
		energy += v * v
	}
	if energy > 0 {
		norm := 1 / math.Sqrt(energy)
		for i := range t {
			t[i] *= norm
		}
	}
	return t
}

// impulse evaluates the RRC impulse response at time x, measured in
// symbol periods, for roll-off beta.
func impulse(x, beta float64) float64 {
	const eps = 1e-8

	if math.Abs(x) < eps {
		return 1 + beta*(4/math.Pi-1)
	}

	if beta > 0 && math.Abs(math.Abs(4*beta*x)-1) < eps {
		return (beta / math.Sqrt2) * (((1 + 2/math.Pi) * math.Sin(math.Pi/(4*beta))) +
			((1 - 2/math.Pi) * math.Cos(math.Pi/(4*beta))))
	}

	num := math.Sin(math.Pi*x*(1-beta)) + 4*beta*x*math.Cos(math.Pi*x*(1+beta))
	den := math.Pi * x * (1 - math.Pow(4*beta*x, 2))
	return num / den
}

// Process filters in, appending len(in)/dec output samples to dst and
// returning the extended slice. len(in) must be a multiple of dec and
// the sample-block multiple-of-4 invariant.
func (f *Filter) Process(dst []complex128, in []complex128) []complex128 {
	if len(in)%f.dec != 0 {
		panic("rrc: input length must be a multiple of the decimation factor")
	}

	// buf is the tail followed by the new input, giving every output
	// sample NTaps-1 samples of history.
	buf := make([]complex128, len(f.tail)+len(in))
	copy(buf, f.tail)
	copy(buf[len(f.tail):], in)

	re := make([]float64, len(f.taps))
	im := make([]float64, len(f.taps))
	for i := 0; i+len(f.taps) <= len(buf); i += f.dec {
		window := buf[i : i+len(f.taps)]
		for j, v := range window {
			re[j] = real(v)
			im[j] = imag(v)
		}
		dst = append(dst, complex(floats.Dot(re, f.taps), floats.Dot(im, f.taps)))
	}

	// Carry the last NTaps-1 samples forward.
	copy(f.tail, buf[len(buf)-len(f.tail):])

	return dst
}
