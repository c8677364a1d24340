package gammatone

import (
	"fmt"
	"math"

	"github.com/prosodylab/prosolia/pkg/logging"
)

// Compression selects the elementwise compression applied to filterbank
// energies.
type Compression string

const (
	CompressionNone  Compression = "none"
	CompressionLog   Compression = "log"   // 20*log10(x), dB
	CompressionCubic Compression = "cubic" // signed cube root
)

// Spec configures the filterbank energy computation.
type Spec struct {
	NumChannels int         `mapstructure:"nb_channels" yaml:"nb_channels" json:"nb_channels"`
	LowCF       float64     `mapstructure:"low_frequency" yaml:"low_frequency" json:"low_frequency"`
	WindowTime  float64     `mapstructure:"window_time" yaml:"window_time" json:"window_time"`
	HopTime     float64     `mapstructure:"overlap_time" yaml:"overlap_time" json:"overlap_time"`
	Compression Compression `mapstructure:"compression" yaml:"compression" json:"compression"`
}

// Validate checks the spec against a sample rate. An unknown compression
// identifier is rejected here rather than silently ignored downstream.
func (s Spec) Validate(sampleRate int) error {
	if s.NumChannels < 1 {
		return fmt.Errorf("nb_channels must be >= 1, got %d", s.NumChannels)
	}
	if s.LowCF <= 0 {
		return fmt.Errorf("low_frequency must be positive, got %g", s.LowCF)
	}
	if nyquist := float64(sampleRate) / 2; s.LowCF >= nyquist {
		return fmt.Errorf("low_frequency %g Hz must be below the Nyquist frequency %g Hz", s.LowCF, nyquist)
	}
	if s.WindowTime <= 0 {
		return fmt.Errorf("window_time must be positive, got %g", s.WindowTime)
	}
	if s.HopTime <= 0 || s.HopTime > s.WindowTime {
		return fmt.Errorf("overlap_time must be in (0, window_time], got %g", s.HopTime)
	}
	switch s.Compression {
	case CompressionNone, CompressionLog, CompressionCubic, "":
		return nil
	default:
		return fmt.Errorf("unknown compression mode %q (use none, log or cubic)", s.Compression)
	}
}

// EnergyResult holds the filterbank response to one waveform.
type EnergyResult struct {
	// Energy rows are time frames, columns are frequency channels in
	// ascending center-frequency order. Values are nonnegative unless
	// log compression made them dB.
	Energy [][]float64

	// CenterFrequencies has one entry per Energy column, strictly
	// ascending, in Hz.
	CenterFrequencies []float64
}

// Frames returns the number of time frames in the result.
func (r *EnergyResult) Frames() int {
	return len(r.Energy)
}

// Energy computes the gammatone filterbank energy of a waveform.
//
// The raw spectrogram and the raw center-frequency sequence are both
// generated highest-frequency-first; they are reversed together so columns
// and frequencies line up in ascending order. Compression runs elementwise
// afterwards. Log compression of a zero energy yields -Inf; that is an
// accepted edge case of the dB scale, not an error.
func Energy(wave []float64, sampleRate int, spec Spec) (*EnergyResult, error) {
	if err := spec.Validate(sampleRate); err != nil {
		return nil, fmt.Errorf("invalid filterbank spec: %w", err)
	}

	nwin := windowSamples(spec.WindowTime, float64(sampleRate))
	if len(wave) < nwin {
		return nil, fmt.Errorf("waveform too short: %d samples, analysis window needs %d", len(wave), nwin)
	}

	logging.Debug("Computing filterbank energy", logging.Fields{
		"component":   "filterbank",
		"nb_channels": spec.NumChannels,
		"low_cf":      spec.LowCF,
		"window_time": spec.WindowTime,
		"hop_time":    spec.HopTime,
		"compression": spec.Compression,
	})

	raw := Gtgram(wave, float64(sampleRate), spec.WindowTime, spec.HopTime, spec.NumChannels, spec.LowCF)

	centerFreqs := ERBSpace(spec.LowCF, float64(sampleRate)/2, spec.NumChannels)
	reverse(centerFreqs) // ascending
	reverse(raw)         // channel rows now ascending too

	// transpose to time-major and compress
	frames := 0
	if len(raw) > 0 {
		frames = len(raw[0])
	}
	energy := make([][]float64, frames)
	for f := range energy {
		row := make([]float64, spec.NumChannels)
		for ch := range row {
			row[ch] = compress(raw[ch][f], spec.Compression)
		}
		energy[f] = row
	}

	return &EnergyResult{
		Energy:            energy,
		CenterFrequencies: centerFreqs,
	}, nil
}

func compress(x float64, mode Compression) float64 {
	switch mode {
	case CompressionLog:
		return 20 * math.Log10(x)
	case CompressionCubic:
		return math.Cbrt(x)
	default:
		return x
	}
}
