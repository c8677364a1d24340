// Package gammatone implements an ERB-spaced gammatone filterbank and its
// windowed energy representation (a gammatone spectrogram).
//
// The filter design follows Slaney's all-pole approximation (Apple TR #35):
// each channel is a cascade of four second-order sections derived from the
// channel center frequency and its equivalent rectangular bandwidth.
package gammatone

import "math"

// Glasberg & Moore ERB scale constants
const (
	earQ  = 9.26449
	minBW = 24.7
)

// ERBWidth returns the equivalent rectangular bandwidth in Hz at the given
// center frequency.
func ERBWidth(centerFreq float64) float64 {
	return centerFreq/earQ + minBW
}

// ERBSpace returns numChannels center frequencies equally spaced on the ERB
// scale between lowFreq and highFreq, highest frequency first. Callers that
// want ascending channels reverse the result.
func ERBSpace(lowFreq, highFreq float64, numChannels int) []float64 {
	if numChannels < 1 {
		return nil
	}

	c := earQ * minBW
	step := (math.Log(lowFreq+c) - math.Log(highFreq+c)) / float64(numChannels)

	cf := make([]float64, numChannels)
	for i := range cf {
		cf[i] = -c + math.Exp(float64(i+1)*step)*(highFreq+c)
	}
	return cf
}

// reverse flips a slice in place.
func reverse[S ~[]E, E any](s S) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
