package filter

import (
	"math"
	"math/cmplx"
)

// Coefficients holds the transfer function of a second-order section with a0
// normalised to 1:
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
type Coefficients struct {
	B0, B1, B2 float64 // feedforward
	A1, A2     float64 // feedback
}

// Response returns the complex frequency response at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := cmplx.Exp(complex(0, -2*w))

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// Stage is a biquad section processed in Direct Form I. It keeps the last two
// inputs and outputs between calls.
type Stage struct {
	Coefficients

	x1, x2 float64
	y1, y2 float64
}

// NewStage returns a stage with the given coefficients and empty history.
func NewStage(c Coefficients) *Stage {
	return &Stage{Coefficients: c}
}

// SetCoefficients replaces the coefficients and keeps the history.
func (s *Stage) SetCoefficients(c Coefficients) {
	s.Coefficients = c
}

// ProcessSample filters one sample.
func (s *Stage) ProcessSample(x float64) float64 {
	y := s.B0*x + s.B1*s.x1 + s.B2*s.x2 - s.A1*s.y1 - s.A2*s.y2

	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y

	return y
}

// ProcessBlock filters buf in place.
func (s *Stage) ProcessBlock(buf []float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	x1, x2, y1, y2 := s.x1, s.x2, s.y1, s.y2

	for i, x := range buf {
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		buf[i] = y
	}

	s.x1, s.x2, s.y1, s.y2 = x1, x2, y1, y2
}

// Reset clears the history.
func (s *Stage) Reset() {
	s.x1, s.x2 = 0, 0
	s.y1, s.y2 = 0, 0
}

// State returns the history as [x1, x2, y1, y2], most recent first.
func (s *Stage) State() [4]float64 {
	return [4]float64{s.x1, s.x2, s.y1, s.y2}
}
