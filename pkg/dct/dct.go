// Package dct compresses the frequency axis of a filterbank energy matrix
// with a type-II discrete cosine transform.
package dct

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/prosodylab/prosolia/pkg/logging"
)

// NormalizeOrtho scales the transform so the coefficient matrix is
// orthonormal. Any other value of Spec.Normalize means unnormalized.
const NormalizeOrtho = "ortho"

// Spec configures the spectral compression.
type Spec struct {
	// Normalize is "ortho" for the orthonormal transform; anything else
	// (including empty) selects the unnormalized transform.
	Normalize string `mapstructure:"normalize" yaml:"normalize" json:"normalize"`

	// Size is the number of low-order coefficients to keep,
	// 1 <= Size <= channel count.
	Size int `mapstructure:"size" yaml:"size" json:"size"`
}

// Matrix returns the Size x n DCT-II coefficient matrix for inputs of n
// channels. Unnormalized rows follow the scipy.fftpack convention
// y_k = 2 * sum_n x_n * cos(pi*k*(2n+1)/(2N)); orthonormal rows carry the
// sqrt(1/N) (k=0) and sqrt(2/N) (k>0) scale factors instead.
func (s Spec) Matrix(n int) [][]float64 {
	m := make([][]float64, s.Size)
	for k := range m {
		row := make([]float64, n)
		scale := 2.0
		if s.Normalize == NormalizeOrtho {
			if k == 0 {
				scale = math.Sqrt(1.0 / float64(n))
			} else {
				scale = math.Sqrt(2.0 / float64(n))
			}
		}
		for j := range row {
			row[j] = scale * math.Cos(math.Pi*float64(k)*(float64(j)+0.5)/float64(n))
		}
		m[k] = row
	}
	return m
}

// Compress returns the first Size DCT-II coefficients of the energy matrix,
// computed along the frequency axis independently for each time frame.
// Input rows are time frames with one column per channel; output rows are
// coefficients (ascending order index) with one column per time frame, so
// the time axis carries over unchanged.
//
// Size larger than the channel count is an invalid-parameter error, never a
// silent truncation.
func Compress(energy [][]float64, spec Spec) ([][]float64, error) {
	if len(energy) == 0 {
		return nil, fmt.Errorf("empty energy matrix")
	}
	channels := len(energy[0])

	if spec.Size < 1 {
		return nil, fmt.Errorf("dct size must be >= 1, got %d", spec.Size)
	}
	if spec.Size > channels {
		return nil, fmt.Errorf("dct size %d exceeds channel count %d", spec.Size, channels)
	}

	logging.Debug("Computing DCT on energy", logging.Fields{
		"component": "dct",
		"size":      spec.Size,
		"normalize": spec.Normalize,
		"frames":    len(energy),
	})

	basis := spec.Matrix(channels)

	out := make([][]float64, spec.Size)
	for k := range out {
		out[k] = make([]float64, len(energy))
	}
	for f, frame := range energy {
		if len(frame) != channels {
			return nil, fmt.Errorf("ragged energy matrix: frame %d has %d channels, want %d", f, len(frame), channels)
		}
		for k, row := range basis {
			out[k][f] = floats.Dot(row, frame)
		}
	}

	return out, nil
}
