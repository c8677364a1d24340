package gammatone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineWave returns a sine of the given frequency and duration.
func sineWave(freq float64, sampleRate int, seconds float64) []float64 {
	n := int(seconds * float64(sampleRate))
	wave := make([]float64, n)
	for i := range wave {
		wave[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return wave
}

func defaultSpec() Spec {
	return Spec{
		NumChannels: 20,
		LowCF:       20,
		WindowTime:  0.5,
		HopTime:     0.1,
		Compression: CompressionNone,
	}
}

func TestERBSpace(t *testing.T) {
	cf := ERBSpace(20, 8000, 20)
	require.Len(t, cf, 20)

	// generator convention: highest frequency first
	for i := 1; i < len(cf); i++ {
		assert.Less(t, cf[i], cf[i-1], "center frequencies must descend")
	}

	// endpoints: first channel at the high edge, last at the low edge
	assert.InDelta(t, 20.0, cf[len(cf)-1], 1e-6)
	assert.Less(t, cf[0], 8000.0)
	assert.Greater(t, cf[0], 4000.0)
}

func TestERBWidth(t *testing.T) {
	// Glasberg & Moore: ERB(1000 Hz) is about 132.6 Hz
	assert.InDelta(t, 132.6, ERBWidth(1000), 0.5)
}

func TestFrames(t *testing.T) {
	// 1 s at 16 kHz, 0.5 s window, 0.1 s hop
	assert.Equal(t, 6, Frames(16000, 8000, 1600))
	// waveform shorter than one window
	assert.Equal(t, 0, Frames(4000, 8000, 1600))
	// exact fit
	assert.Equal(t, 1, Frames(8000, 8000, 1600))
}

func TestEnergyShape(t *testing.T) {
	wave := sineWave(440, 16000, 1.0)

	res, err := Energy(wave, 16000, defaultSpec())
	require.NoError(t, err)

	assert.Equal(t, 6, res.Frames())
	for _, frame := range res.Energy {
		require.Len(t, frame, 20)
		for _, v := range frame {
			assert.GreaterOrEqual(t, v, 0.0, "uncompressed energy must be nonnegative")
		}
	}

	require.Len(t, res.CenterFrequencies, 20)
	for i := 1; i < len(res.CenterFrequencies); i++ {
		assert.Greater(t, res.CenterFrequencies[i], res.CenterFrequencies[i-1],
			"center frequencies must be strictly ascending")
	}
}

func TestEnergyConcentratesNearToneFrequency(t *testing.T) {
	wave := sineWave(1000, 16000, 1.0)

	res, err := Energy(wave, 16000, defaultSpec())
	require.NoError(t, err)

	// the strongest channel should sit close to the tone
	best, bestVal := 0, 0.0
	for ch, v := range res.Energy[0] {
		if v > bestVal {
			best, bestVal = ch, v
		}
	}
	assert.InDelta(t, 1000, res.CenterFrequencies[best], 300)
}

func TestCompressionRoundTrip(t *testing.T) {
	wave := sineWave(440, 16000, 1.0)
	spec := defaultSpec()

	plain, err := Energy(wave, 16000, spec)
	require.NoError(t, err)

	spec.Compression = CompressionCubic
	cubic, err := Energy(wave, 16000, spec)
	require.NoError(t, err)

	spec.Compression = CompressionLog
	logged, err := Energy(wave, 16000, spec)
	require.NoError(t, err)

	for f := range plain.Energy {
		for ch := range plain.Energy[f] {
			x := plain.Energy[f][ch]

			cubed := math.Pow(cubic.Energy[f][ch], 3)
			assert.InDelta(t, x, cubed, 1e-9*math.Max(1, math.Abs(x)))

			undb := math.Pow(10, logged.Energy[f][ch]/20)
			assert.InDelta(t, x, undb, 1e-9*math.Max(1, math.Abs(x)))
		}
	}
}

func TestEnergyTooShort(t *testing.T) {
	wave := sineWave(440, 16000, 0.25) // shorter than the 0.5 s window

	_, err := Energy(wave, 16000, defaultSpec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr string
	}{
		{"valid", func(s *Spec) {}, ""},
		{"zero channels", func(s *Spec) { s.NumChannels = 0 }, "nb_channels"},
		{"negative low cf", func(s *Spec) { s.LowCF = -5 }, "low_frequency"},
		{"low cf above nyquist", func(s *Spec) { s.LowCF = 9000 }, "Nyquist"},
		{"zero window", func(s *Spec) { s.WindowTime = 0 }, "window_time"},
		{"hop exceeds window", func(s *Spec) { s.HopTime = 1.0 }, "overlap_time"},
		{"unknown compression", func(s *Spec) { s.Compression = "sqrt" }, "unknown compression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := defaultSpec()
			tt.mutate(&spec)

			err := spec.Validate(16000)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFilterbankImpulseResponse(t *testing.T) {
	// an impulse must produce a decaying, nonzero response in every band
	impulse := make([]float64, 4000)
	impulse[0] = 1

	cf := ERBSpace(100, 8000, 8)
	coefs := MakeERBFilters(16000, cf)
	bands := Filterbank(impulse, coefs)

	require.Len(t, bands, 8)
	for ch, band := range bands {
		energy := 0.0
		for _, v := range band {
			energy += v * v
		}
		assert.Greater(t, energy, 0.0, "band %d has no response", ch)

		// the response must die out well before the end of the buffer
		tail := 0.0
		for _, v := range band[3500:] {
			tail += v * v
		}
		assert.Less(t, tail, energy*1e-3, "band %d response does not decay", ch)
	}
}
