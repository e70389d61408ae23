package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/wavio/sample"
	"github.com/tphakala/simd/f64"
)

// ErrArgumentRange is returned for a non-positive or non-finite sample rate
// or cutoff.
var ErrArgumentRange = errors.New("filter: argument out of range")

// Kind selects the response of a Crossover.
type Kind int

const (
	LowPass Kind = iota
	HighPass
)

func (k Kind) String() string {
	switch k {
	case LowPass:
		return "low-pass"
	case HighPass:
		return "high-pass"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Crossover is a fourth-order Linkwitz-Riley filter: two identical
// Butterworth stages in series. The sample rate is fixed at construction;
// the cutoff is supplied with every buffer.
//
// A Crossover holds history and must be used by one channel only.
type Crossover struct {
	kind       Kind
	sampleRate float64
	stages     [2]Stage
}

// NewLowPass returns a low-pass crossover for sampleRate.
func NewLowPass(sampleRate float64) (*Crossover, error) {
	return newCrossover(LowPass, sampleRate)
}

// NewHighPass returns a high-pass crossover for sampleRate.
func NewHighPass(sampleRate float64) (*Crossover, error) {
	return newCrossover(HighPass, sampleRate)
}

func newCrossover(kind Kind, sampleRate float64) (*Crossover, error) {
	if !positiveFinite(sampleRate) {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrArgumentRange, sampleRate)
	}

	return &Crossover{kind: kind, sampleRate: sampleRate}, nil
}

// Kind returns the response type.
func (c *Crossover) Kind() Kind { return c.kind }

// SampleRate returns the sample rate in Hz.
func (c *Crossover) SampleRate() float64 { return c.sampleRate }

// Stages returns the two stages in processing order.
func (c *Crossover) Stages() []*Stage {
	return []*Stage{&c.stages[0], &c.stages[1]}
}

// Reset clears the history of both stages.
func (c *Crossover) Reset() {
	c.stages[0].Reset()
	c.stages[1].Reset()
}

// Process designs both stages for cutoff and filters buf in place. History
// carries over from the previous call.
func (c *Crossover) Process(buf []float64, cutoff float64) error {
	coeffs, err := c.design(cutoff)
	if err != nil {
		return err
	}

	c.stages[0].SetCoefficients(coeffs)
	c.stages[1].SetCoefficients(coeffs)
	c.stages[0].ProcessBlock(buf)
	c.stages[1].ProcessBlock(buf)

	return nil
}

// Response returns the complex response of the cascade at freqHz for the
// given cutoff.
func (c *Crossover) Response(freqHz, cutoff float64) (complex128, error) {
	coeffs, err := c.design(cutoff)
	if err != nil {
		return 0, err
	}

	h := coeffs.Response(freqHz, c.sampleRate)

	return h * h, nil
}

func (c *Crossover) design(cutoff float64) (Coefficients, error) {
	if !positiveFinite(cutoff) {
		return Coefficients{}, fmt.Errorf("%w: cutoff must be positive, got %v", ErrArgumentRange, cutoff)
	}

	if c.kind == HighPass {
		return ButterworthHighPass(c.sampleRate, cutoff), nil
	}

	return ButterworthLowPass(c.sampleRate, cutoff), nil
}

// Apply filters buf through c at cutoff and returns a new buffer of the same
// length. Integer results are rounded and saturated; uint8 samples are
// filtered around their 128 midpoint.
func Apply[T sample.Type](c *Crossover, buf sample.Buffer[T], cutoff float64) (sample.Buffer[T], error) {
	work := buf.Float64s()

	offset := sample.Offset[T]()
	if offset != 0 {
		for i := range work {
			work[i] -= offset
		}
	}

	if err := c.Process(work, cutoff); err != nil {
		return nil, err
	}

	if offset != 0 {
		for i := range work {
			work[i] += offset
		}
	}

	return sample.FromFloat64s[T](work), nil
}

// Energy returns the sum of squares of x.
func Energy(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return f64.DotProduct(x, x)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
