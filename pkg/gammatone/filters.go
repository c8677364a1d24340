package gammatone

import (
	"math"
	"math/cmplx"
)

// FilterCoefs holds the Slaney all-pole gammatone coefficients for one
// channel: a cascade of four second-order sections sharing the same
// feedback polynomial, plus an overall gain applied to the first section.
type FilterCoefs struct {
	CenterFreq float64

	A0, A2     float64
	A11, A12   float64
	A13, A14   float64
	B0, B1, B2 float64
	Gain       float64
}

// MakeERBFilters computes gammatone filter coefficients for every center
// frequency at the given sample rate.
func MakeERBFilters(sampleRate float64, centerFreqs []float64) []FilterCoefs {
	coefs := make([]FilterCoefs, len(centerFreqs))
	t := 1.0 / sampleRate

	for i, cf := range centerFreqs {
		b := 1.019 * 2 * math.Pi * ERBWidth(cf)
		arg := 2 * cf * math.Pi * t

		cosArg := math.Cos(arg)
		sinArg := math.Sin(arg)
		expBT := math.Exp(b * t)

		rtPos := math.Sqrt(3 + math.Pow(2, 1.5))
		rtNeg := math.Sqrt(3 - math.Pow(2, 1.5))
		common := -t / expBT

		c := FilterCoefs{
			CenterFreq: cf,
			A0:         t,
			A2:         0,
			A11:        common * (cosArg + rtPos*sinArg),
			A12:        common * (cosArg - rtPos*sinArg),
			A13:        common * (cosArg + rtNeg*sinArg),
			A14:        common * (cosArg - rtNeg*sinArg),
			B0:         1,
			B1:         -2 * cosArg / expBT,
			B2:         math.Exp(-2 * b * t),
		}

		// Gain normalizes the cascade to unit response at the center
		// frequency, evaluated on the unit circle at z = exp(i*arg).
		vec := cmplx.Exp(complex(0, 2*arg))
		pole := complex(2*t, 0) * cmplx.Exp(complex(-b*t, arg))

		g1 := -2*vec*complex(t, 0) + pole*complex(cosArg-rtNeg*sinArg, 0)
		g2 := -2*vec*complex(t, 0) + pole*complex(cosArg+rtNeg*sinArg, 0)
		g3 := -2*vec*complex(t, 0) + pole*complex(cosArg-rtPos*sinArg, 0)
		g4 := -2*vec*complex(t, 0) + pole*complex(cosArg+rtPos*sinArg, 0)
		den := complex(-2/math.Exp(2*b*t), 0) - 2*vec + complex(2/expBT, 0)*(complex(1, 0)+vec)

		c.Gain = cmplx.Abs(g1 * g2 * g3 * g4 / (den * den * den * den))

		coefs[i] = c
	}

	return coefs
}

// Filterbank passes the waveform through every channel filter and returns
// one output row per channel, in the order of the coefficients.
func Filterbank(wave []float64, coefs []FilterCoefs) [][]float64 {
	out := make([][]float64, len(coefs))
	for i, c := range coefs {
		y := filter2(wave, c.A0/c.Gain, c.A11/c.Gain, c.A2/c.Gain, c.B1, c.B2)
		y = filter2(y, c.A0, c.A12, c.A2, c.B1, c.B2)
		y = filter2(y, c.A0, c.A13, c.A2, c.B1, c.B2)
		y = filter2(y, c.A0, c.A14, c.A2, c.B1, c.B2)
		out[i] = y
	}
	return out
}

// filter2 applies a second-order IIR filter (direct form II transposed)
// with normalized feedback coefficient a0 = 1.
func filter2(x []float64, b0, b1, b2, a1, a2 float64) []float64 {
	y := make([]float64, len(x))
	var z1, z2 float64
	for n, xn := range x {
		yn := b0*xn + z1
		z1 = b1*xn - a1*yn + z2
		z2 = b2*xn - a2*yn
		y[n] = yn
	}
	return y
}
