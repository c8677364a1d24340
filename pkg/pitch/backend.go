// Package pitch estimates pitch and probability of voicing by driving an
// external extractor as a subprocess.
package pitch

import "context"

// Trace holds the per-frame output of a pitch extractor: POV is the
// probability of voicing (NCCF, in [-1, 1], higher for voiced frames) and
// Pitch is in Hz. Both slices always have the same length; the frame size
// is owned by the extractor, not by this package.
type Trace struct {
	POV   []float64 `json:"pov"`
	Pitch []float64 `json:"pitch"`
}

// Frames returns the number of analysis frames in the trace.
func (t *Trace) Frames() int {
	return len(t.Pitch)
}

// VoicedRatio returns the fraction of frames whose POV exceeds the
// threshold.
func (t *Trace) VoicedRatio(threshold float64) float64 {
	if len(t.POV) == 0 {
		return 0
	}
	voiced := 0
	for _, p := range t.POV {
		if p > threshold {
			voiced++
		}
	}
	return float64(voiced) / float64(len(t.POV))
}

// Backend is the capability interface for pitch extraction. The concrete
// Kaldi tool lives behind it so tests can substitute a double without
// spawning processes.
type Backend interface {
	// Extract runs the extractor on the given waveform file and returns
	// the voicing and pitch traces. Failures are *ExtractorError values
	// and abort the run; nothing is retried.
	Extract(ctx context.Context, wavPath string, sampleRate int) (*Trace, error)
}
