package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.Equal(t, 0, New[int16](0).Len())
	assert.Equal(t, 0, New[int16](-3).Len())

	buf := New[float32](16)
	require.Equal(t, 16, buf.Len())

	for _, v := range buf {
		assert.Zero(t, v)
	}
}

func TestClone(t *testing.T) {
	buf := Buffer[int16]{1, 2, 3}
	cp := buf.Clone()
	cp[0] = 42

	assert.Equal(t, int16(1), buf[0])
	assert.Equal(t, Buffer[int16]{42, 2, 3}, cp)
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int16 in range", Saturate[int16](1234.4), int16(1234)},
		{"int16 rounds", Saturate[int16](-2.5), int16(-3)},
		{"int16 high", Saturate[int16](40000), int16(math.MaxInt16)},
		{"int16 low", Saturate[int16](-40000), int16(math.MinInt16)},
		{"int8 high", Saturate[int8](300), int8(math.MaxInt8)},
		{"uint8 low", Saturate[uint8](-1), uint8(0)},
		{"uint8 high", Saturate[uint8](256), uint8(255)},
		{"int32 high", Saturate[int32](1e12), int32(math.MaxInt32)},
		{"int64 high", Saturate[int64](1e30), int64(math.MaxInt64)},
		{"int64 low", Saturate[int64](-1e30), int64(math.MinInt64)},
		{"int64 nan", Saturate[int64](math.NaN()), int64(0)},
		{"float32", Saturate[float32](0.25), float32(0.25)},
		{"float64 passthrough", Saturate[float64](3.5), 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFloat64sRoundTrip(t *testing.T) {
	buf := Buffer[int32]{-5, 0, 7, math.MaxInt32}
	assert.Equal(t, buf, FromFloat64s[int32](buf.Float64s()))
}

func TestScaled(t *testing.T) {
	buf := Buffer[int16]{100, -100, 20000}
	got := buf.Scaled(2)

	assert.Equal(t, Buffer[int16]{200, -200, math.MaxInt16}, got)
	assert.Equal(t, int16(100), buf[0], "source must not change")
}

func TestFullScale(t *testing.T) {
	assert.InDelta(t, 128.0, FullScale[uint8](), 0)
	assert.InDelta(t, 32768.0, FullScale[int16](), 0)
	assert.InDelta(t, 2147483648.0, FullScale[int32](), 0)
	assert.InDelta(t, 1.0, FullScale[float32](), 0)
}

func TestAsFloatBuffer(t *testing.T) {
	buf := Buffer[int16]{-32768, 0, 16384}
	fb := buf.AsFloatBuffer(48000)

	require.NotNil(t, fb.Format)
	assert.Equal(t, 1, fb.Format.NumChannels)
	assert.Equal(t, 48000, fb.Format.SampleRate)
	assert.InDeltaSlice(t, []float64{-1, 0, 0.5}, fb.Data, 1e-12)

	u8 := Buffer[uint8]{0, 128, 255}
	assert.InDeltaSlice(t, []float64{-1, 0, 127.0 / 128}, u8.AsFloatBuffer(8000).Data, 1e-12)
}

func TestAsIntBuffer(t *testing.T) {
	buf := Buffer[float64]{-1, 0, 0.5, 1}
	ib := buf.AsIntBuffer(44100, 16)

	assert.Equal(t, 16, ib.SourceBitDepth)
	assert.Equal(t, []int{-32768, 0, 16384, 32767}, ib.Data)

	u8 := buf.AsIntBuffer(44100, 8)
	assert.Equal(t, []int{0, 128, 192, 255}, u8.Data)

	fromInt := Buffer[int16]{-32768, 1000}.AsIntBuffer(44100, 24)
	assert.Equal(t, []int{-8388608, 256000}, fromInt.Data)
}
