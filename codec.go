package wavio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cwbudde/wavio/sample"
	"github.com/go-audio/audio"
)

// Samples move between the container and a sample.Buffer through one of two
// intermediates: a left-justified int64 (full scale is math.MinInt64 to
// math.MaxInt64) for integer buffers, and a float64 for float buffers. PCM
// containers normalise the float64 to [-1, 1]; IEEE float containers store
// it as is.
type sampleCodec interface {
	size() int
	decodeInt(b []byte) int64
	decodeFloat(b []byte) float64
	encodeInt(b []byte, v int64)
	encodeFloat(b []byte, v float64)
}

const fullScaleInt64 = 1 << 63

func newSampleCodec(h *Header) (sampleCodec, error) {
	switch h.SampleFormat {
	case PCM:
		switch h.BitDepth {
		case 8, 16, 24, 32, 64, 128:
			return &pcmCodec{bytes: int(h.BitDepth) / 8, validBits: int(h.ValidBits)}, nil
		}
	case IEEEFloat:
		switch h.BitDepth {
		case 32, 64, 128:
			return &floatCodec{bytes: int(h.BitDepth) / 8}, nil
		}
	}

	return nil, fmt.Errorf("%w: no codec for %d-bit %s samples", ErrUnrecognisedFormat, h.BitDepth, h.SampleFormat)
}

func decodeSample[T sample.Type](c sampleCodec, b []byte) T {
	var out T

	switch p := any(&out).(type) {
	case *float64:
		*p = c.decodeFloat(b)
	case *float32:
		*p = float32(c.decodeFloat(b))
	case *int64:
		*p = c.decodeInt(b)
	case *int32:
		*p = int32(c.decodeInt(b) >> 32)
	case *int16:
		*p = int16(c.decodeInt(b) >> 48)
	case *int8:
		*p = int8(c.decodeInt(b) >> 56)
	case *uint8:
		*p = uint8(c.decodeInt(b)>>56) ^ 0x80
	}

	return out
}

func encodeSample[T sample.Type](c sampleCodec, b []byte, v T) {
	switch x := any(v).(type) {
	case float64:
		c.encodeFloat(b, x)
	case float32:
		c.encodeFloat(b, float64(x))
	case int64:
		c.encodeInt(b, x)
	case int32:
		c.encodeInt(b, int64(x)<<32)
	case int16:
		c.encodeInt(b, int64(x)<<48)
	case int8:
		c.encodeInt(b, int64(x)<<56)
	case uint8:
		c.encodeInt(b, int64(int8(x^0x80))<<56)
	}
}

// pcmCodec handles little-endian integer samples. 8-bit samples are unsigned,
// all wider ones are signed. 128-bit samples keep their upper 64 bits.
type pcmCodec struct {
	bytes     int
	validBits int
}

func (c *pcmCodec) size() int { return c.bytes }

func (c *pcmCodec) decodeInt(b []byte) int64 {
	switch c.bytes {
	case 1:
		return int64(int8(b[0]^0x80)) << 56
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b))) << 48
	case 3:
		return int64(audio.Int24LETo32(b[:3])) << 40
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b))) << 32
	case 8:
		return int64(binary.LittleEndian.Uint64(b))
	default:
		return int64(binary.LittleEndian.Uint64(b[c.bytes-8:]))
	}
}

func (c *pcmCodec) decodeFloat(b []byte) float64 {
	return float64(c.decodeInt(b)) / fullScaleInt64
}

func (c *pcmCodec) encodeInt(b []byte, v int64) {
	if c.validBits > 0 && c.validBits < 64 {
		v &= math.MinInt64 >> (c.validBits - 1)
	}

	switch c.bytes {
	case 1:
		b[0] = byte(v>>56) ^ 0x80
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v>>48))
	case 3:
		copy(b[:3], audio.Int32toInt24LEBytes(int32(v>>40)))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v>>32))
	case 8:
		binary.LittleEndian.PutUint64(b, uint64(v))
	default:
		clear(b[:c.bytes-8])
		binary.LittleEndian.PutUint64(b[c.bytes-8:], uint64(v))
	}
}

// encodeFloat quantises at the container resolution so that a value read
// back from the same container encodes to the same bytes.
func (c *pcmCodec) encodeFloat(b []byte, v float64) {
	bitsUsed := min(c.bytes*8, 64)
	c.encodeInt(b, quantize(v, bitsUsed))
}

// quantize maps a normalised value to a left-justified int64 with bitsUsed
// significant bits.
func quantize(v float64, bitsUsed int) int64 {
	if math.IsNaN(v) {
		return 0
	}

	v = clampFloat64(v, -1, 1)
	scale := math.Ldexp(1, bitsUsed-1)

	q := math.Round(v * scale)
	if q >= scale {
		q = scale - 1
	}

	if bitsUsed == 64 {
		if q >= fullScaleInt64 {
			return math.MaxInt64
		}

		return int64(q)
	}

	return int64(q) << (64 - bitsUsed)
}

// floatCodec handles little-endian IEEE 754 samples of 32, 64 or 128 bits.
type floatCodec struct {
	bytes int
}

func (c *floatCodec) size() int { return c.bytes }

func (c *floatCodec) decodeFloat(b []byte) float64 {
	switch c.bytes {
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		return quadToFloat64(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:16]))
	}
}

func (c *floatCodec) decodeInt(b []byte) int64 {
	return quantize(c.decodeFloat(b), 64)
}

func (c *floatCodec) encodeFloat(b []byte, v float64) {
	switch c.bytes {
	case 4:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	case 8:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	default:
		lo, hi := float64ToQuad(v)
		binary.LittleEndian.PutUint64(b[:8], lo)
		binary.LittleEndian.PutUint64(b[8:16], hi)
	}
}

func (c *floatCodec) encodeInt(b []byte, v int64) {
	c.encodeFloat(b, float64(v)/fullScaleInt64)
}

func clampFloat64(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}
