package wavio

import (
	"math"
	"math/bits"
)

// IEEE 754 binary128 helpers for 128-bit float containers. Precision is
// limited to float64: the low 60 fraction bits are dropped on decode and
// written as zero on encode.

const (
	quadExpBias    = 16383
	quadExpMask    = 0x7FFF
	quadFracHiBits = 48
	float64ExpBias = 1023
	float64Frac    = 52
)

func float64ToQuad(v float64) (lo, hi uint64) {
	u := math.Float64bits(v)
	sign := u >> 63
	exp := int((u >> float64Frac) & 0x7FF)
	frac := u & (1<<float64Frac - 1)

	switch {
	case exp == 0 && frac == 0:
		return 0, sign << 63
	case exp == 0x7FF:
		exp = quadExpMask
	case exp == 0:
		shift := bits.LeadingZeros64(frac) - 11
		frac = (frac << shift) & (1<<float64Frac - 1)
		exp = 1 - shift - float64ExpBias + quadExpBias
	default:
		exp = exp - float64ExpBias + quadExpBias
	}

	hi = sign<<63 | uint64(exp)<<quadFracHiBits | frac>>4
	lo = frac << 60

	return lo, hi
}

func quadToFloat64(lo, hi uint64) float64 {
	negative := hi>>63 == 1
	exp := int((hi >> quadFracHiBits) & quadExpMask)
	frac := (hi&(1<<quadFracHiBits-1))<<4 | lo>>60

	var v float64

	switch exp {
	case 0:
		v = 0
	case quadExpMask:
		if frac != 0 || lo&(1<<60-1) != 0 {
			return math.NaN()
		}

		v = math.Inf(1)
	default:
		v = math.Ldexp(1+float64(frac)/(1<<float64Frac), exp-quadExpBias)
	}

	if negative {
		return -v
	}

	return v
}
