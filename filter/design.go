package filter

import "math"

// butterworthQ is the quality factor of a second-order Butterworth section.
const butterworthQ = math.Sqrt2 / 2

// ButterworthLowPass designs a second-order Butterworth low-pass section with
// the bilinear transform.
func ButterworthLowPass(sampleRate, cutoff float64) Coefficients {
	cw, alpha := prewarp(sampleRate, cutoff)

	b0 := (1 - cw) / 2

	return normalize(b0, 1-cw, b0, 1+alpha, -2*cw, 1-alpha)
}

// ButterworthHighPass designs a second-order Butterworth high-pass section
// with the bilinear transform.
func ButterworthHighPass(sampleRate, cutoff float64) Coefficients {
	cw, alpha := prewarp(sampleRate, cutoff)

	b0 := (1 + cw) / 2

	return normalize(b0, -(1 + cw), b0, 1+alpha, -2*cw, 1-alpha)
}

func prewarp(sampleRate, cutoff float64) (cw, alpha float64) {
	w0 := 2 * math.Pi * cutoff / sampleRate
	sw, cw := math.Sincos(w0)

	return cw, sw / (2 * butterworthQ)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
