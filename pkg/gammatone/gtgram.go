package gammatone

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Frames returns the number of analysis frames a waveform of n samples
// yields for the given window and hop sizes, or 0 when the waveform is
// shorter than one window.
func Frames(n, windowSize, hopSize int) int {
	if n < windowSize || windowSize <= 0 || hopSize <= 0 {
		return 0
	}
	return (n-windowSize)/hopSize + 1
}

// windowSamples converts a duration in seconds to a sample count, rounding
// half away from zero to match the reference windowing convention.
func windowSamples(seconds, sampleRate float64) int {
	return int(math.Floor(seconds*sampleRate + 0.5))
}

// Gtgram computes the gammatone spectrogram of a waveform: the waveform is
// passed through an ERB-spaced filterbank between lowFreq and sampleRate/2,
// then each band output has its energy integrated over windows of
// windowTime seconds advancing by hopTime seconds.
//
// The result has one row per channel, highest center frequency first (the
// ERBSpace convention), and one column per frame; each value is the RMS of
// the band signal inside the window, hence nonnegative.
func Gtgram(wave []float64, sampleRate float64, windowTime, hopTime float64, numChannels int, lowFreq float64) [][]float64 {
	centerFreqs := ERBSpace(lowFreq, sampleRate/2, numChannels)
	coefs := MakeERBFilters(sampleRate, centerFreqs)
	bands := Filterbank(wave, coefs)

	nwin := windowSamples(windowTime, sampleRate)
	hop := windowSamples(hopTime, sampleRate)
	frames := Frames(len(wave), nwin, hop)

	out := make([][]float64, numChannels)
	for ch, band := range bands {
		row := make([]float64, frames)
		for f := 0; f < frames; f++ {
			seg := band[f*hop : f*hop+nwin]
			row[f] = math.Sqrt(floats.Dot(seg, seg) / float64(nwin))
		}
		out[ch] = row
	}
	return out
}
