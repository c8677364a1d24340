package pipeline

// FeatureBundle is the terminal aggregate of one pipeline run. It is built
// once, after every branch has succeeded, and never mutated afterwards; a
// failed run produces no bundle at all.
type FeatureBundle struct {
	// Source is the path of the analyzed waveform file.
	Source string `json:"source" yaml:"source"`

	// SampleRate of the source waveform in Hz.
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`

	// CenterFrequencies of the filterbank channels in Hz, strictly
	// ascending, one per Energy column.
	CenterFrequencies []float64 `json:"center_frequencies" yaml:"center_frequencies"`

	// Energy rows are time frames, columns are frequency channels.
	Energy [][]float64 `json:"energy" yaml:"energy"`

	// DCT rows are kept coefficients, columns are the Energy time frames.
	DCT [][]float64 `json:"dct" yaml:"dct"`

	// POV is the per-frame probability of voicing (NCCF, in [-1, 1]) on
	// the pitch extractor's own time axis.
	POV []float64 `json:"pov" yaml:"pov"`

	// Pitch is the per-frame pitch estimate in Hz, same length as POV.
	Pitch []float64 `json:"pitch" yaml:"pitch"`
}

// EnergyFrames returns the number of time frames in the spectral branch.
func (b *FeatureBundle) EnergyFrames() int {
	return len(b.Energy)
}

// PitchFrames returns the number of frames in the pitch branch.
func (b *FeatureBundle) PitchFrames() int {
	return len(b.Pitch)
}
