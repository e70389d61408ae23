// Package sample defines the buffer type exchanged between channel streams,
// filters and generators.
package sample

import (
	"math"

	"github.com/go-audio/audio"
	"github.com/tphakala/simd/f64"
)

// Type lists the sample representations a Buffer can hold.
//
// Integer types carry full-scale values of their own width (int16 spans
// -32768..32767, uint8 is offset binary centred on 128). Float types carry
// normalised values in [-1, 1] when decoded from PCM.
type Type interface {
	uint8 | int8 | int16 | int32 | int64 | float32 | float64
}

// Buffer is a fixed-length run of samples for a single channel. Index 0 is
// the oldest sample.
type Buffer[T Type] []T

// New returns a zeroed buffer of n samples.
func New[T Type](n int) Buffer[T] {
	if n <= 0 {
		return Buffer[T]{}
	}

	return make(Buffer[T], n)
}

// Len returns the number of samples.
func (b Buffer[T]) Len() int {
	return len(b)
}

// Clone returns an independent copy of b.
func (b Buffer[T]) Clone() Buffer[T] {
	return append(Buffer[T](nil), b...)
}

// Float64s returns the raw sample values widened to float64 without any
// rescaling.
func (b Buffer[T]) Float64s() []float64 {
	out := make([]float64, len(b))
	for i, v := range b {
		out[i] = float64(v)
	}

	return out
}

// FromFloat64s converts raw values into a buffer of T. Integer targets are
// rounded and saturated to the range of T.
func FromFloat64s[T Type](src []float64) Buffer[T] {
	out := make(Buffer[T], len(src))
	for i, v := range src {
		out[i] = Saturate[T](v)
	}

	return out
}

// Scaled returns a copy of b multiplied by gain.
func (b Buffer[T]) Scaled(gain float64) Buffer[T] {
	raw := b.Float64s()
	f64.Scale(raw, raw, gain)

	return FromFloat64s[T](raw)
}

// AsFloatBuffer wraps the samples in a go-audio buffer. Integer samples are
// normalised to [-1, 1].
func (b Buffer[T]) AsFloatBuffer(sampleRate int) *audio.FloatBuffer {
	data := b.Float64s()
	if scale := FullScale[T](); scale != 1 {
		offset := Offset[T]()
		for i := range data {
			data[i] = (data[i] - offset) / scale
		}
	}

	return &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   data,
	}
}

// AsIntBuffer wraps integer samples in a go-audio buffer. Float samples are
// scaled to bitDepth, which must be 8, 16, 24 or 32.
func (b Buffer[T]) AsIntBuffer(sampleRate, bitDepth int) *audio.IntBuffer {
	out := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(b)),
		SourceBitDepth: bitDepth,
	}

	scale := math.Ldexp(1, bitDepth-1)
	for i, v := range b {
		norm := (float64(v) - Offset[T]()) / FullScale[T]()
		q := math.Round(norm * scale)
		q = math.Max(-scale, math.Min(scale-1, q))

		if bitDepth == 8 {
			q += scale
		}

		out.Data[i] = int(q)
	}

	return out
}

// FullScale returns the magnitude that maps to 1.0 for T: 2^(bits-1) for
// integers and 1 for floats.
func FullScale[T Type]() float64 {
	var zero T

	switch any(zero).(type) {
	case uint8, int8:
		return 1 << 7
	case int16:
		return 1 << 15
	case int32:
		return 1 << 31
	case int64:
		return 1 << 63
	default:
		return 1
	}
}

// Offset returns the value that represents silence for T: 128 for uint8 and
// 0 for every other type.
func Offset[T Type]() float64 {
	var zero T
	if _, ok := any(zero).(uint8); ok {
		return 1 << 7
	}

	return 0
}

// Saturate rounds v to T, clamping it to the representable range.
func Saturate[T Type](v float64) T {
	var out T

	switch p := any(&out).(type) {
	case *float64:
		*p = v
	case *float32:
		*p = float32(v)
	case *int64:
		switch {
		case math.IsNaN(v):
			*p = 0
		case v >= math.MaxInt64:
			*p = math.MaxInt64
		case v <= math.MinInt64:
			*p = math.MinInt64
		default:
			*p = int64(math.Round(v))
		}
	case *int32:
		*p = int32(clampRound(v, math.MinInt32, math.MaxInt32))
	case *int16:
		*p = int16(clampRound(v, math.MinInt16, math.MaxInt16))
	case *int8:
		*p = int8(clampRound(v, math.MinInt8, math.MaxInt8))
	case *uint8:
		*p = uint8(clampRound(v, 0, math.MaxUint8))
	}

	return out
}

func clampRound(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Max(lo, math.Min(hi, math.Round(v)))
}
