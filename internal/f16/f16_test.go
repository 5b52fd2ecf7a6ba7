package f16

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat32_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		in   Bits
		want float32
	}{
		{"+0", 0x0000, 0},
		{"+1", 0x3C00, 1},
		{"-1", 0xBC00, -1},
		{"+2", 0x4000, 2},
		{"max finite", 0x7BFF, 65504},
		{"+Inf", 0x7C00, float32(math.Inf(1))},
		{"-Inf", 0xFC00, float32(math.Inf(-1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToFloat32(tt.in))
		})
	}
}

func TestToFloat32_NegativeZero(t *testing.T) {
	got := ToFloat32(0x8000)
	assert.Equal(t, uint32(0x80000000), math.Float32bits(got))
}

func TestToFloat32_SubnormalMin(t *testing.T) {
	// Smallest positive binary16 subnormal: 2^-24.
	assert.Equal(t, float32(math.Ldexp(1, -24)), ToFloat32(0x0001))
}

func TestFromFloat32_ZeroSigns(t *testing.T) {
	assert.Equal(t, Bits(0x0000), FromFloat32(0))
	assert.Equal(t, Bits(0x8000), FromFloat32(float32(math.Copysign(0, -1))))
}

func TestFromFloat32_Float32SubnormalFlushesToZero(t *testing.T) {
	sub := math.Float32frombits(0x00000001)
	assert.Equal(t, Bits(0x0000), FromFloat32(sub))
	assert.Equal(t, Bits(0x8000), FromFloat32(-sub))
}

func TestFromFloat32_InfNaN(t *testing.T) {
	assert.Equal(t, Bits(0x7C00), FromFloat32(float32(math.Inf(1))))
	assert.Equal(t, Bits(0xFC00), FromFloat32(float32(math.Inf(-1))))
	// NaN payload is dropped: the result is infinity, not NaN.
	assert.Equal(t, Bits(0x7C00), FromFloat32(float32(math.NaN())))
	assert.Equal(t, Bits(0xFC00), FromFloat32(math.Float32frombits(0xFFC00001)))
}

func TestFromFloat32_Overflow(t *testing.T) {
	for _, f := range []float32{65536, 1e6, math.MaxFloat32} {
		assert.True(t, math.IsInf(float64(ToFloat32(FromFloat32(f))), 1), "f=%g", f)
		assert.True(t, math.IsInf(float64(ToFloat32(FromFloat32(-f))), -1), "f=%g", -f)
	}
}

func TestFromFloat32_Underflow(t *testing.T) {
	// Below the smallest binary16 normal (2^-14) everything flushes to zero.
	for _, f := range []float32{float32(math.Ldexp(1, -15)), 1e-7, 1e-20} {
		assert.Equal(t, Bits(0), FromFloat32(f), "f=%g", f)
	}
	assert.Equal(t, float32(math.Ldexp(1, -14)), ToFloat32(FromFloat32(float32(math.Ldexp(1, -14)))))
}

func TestFromFloat32_Truncates(t *testing.T) {
	// 1 + 1.9 ulp truncates to 1 + 1 ulp rather than rounding up.
	step := float32(math.Ldexp(1, -10))
	assert.Equal(t, Bits(0x3C01), FromFloat32(1+1.9*step))
	assert.Equal(t, Bits(0xBC01), FromFloat32(-(1 + 1.9*step)))
}

func TestRoundTrip_WithinOnePercent(t *testing.T) {
	values := []float32{0.001, 0.1, 0.5, 1, 1.2345, 3.14159, 42, 1000.5, 65000, -0.25, -7.77, -60000}
	for _, v := range values {
		got := ToFloat32(FromFloat32(v))
		assert.InEpsilon(t, v, got, 0.01, "v=%g", v)
	}
}

func TestRoundTrip_PowersOfTwo(t *testing.T) {
	for e := -14; e <= 15; e++ {
		f := float32(math.Ldexp(1, e))
		assert.Equal(t, f, ToFloat32(FromFloat32(f)), "e=%d", e)
	}
}

func TestEncodeDecode_Slices(t *testing.T) {
	src := []float32{0, 1, -2, 65504, float32(math.Inf(1))}
	h := make([]Bits, len(src))
	Encode(h, src)

	got := make([]float32, len(src))
	Decode(got, h)

	assert.Equal(t, []float32{0, 1, -2, 65504}, got[:4])
	assert.True(t, math.IsInf(float64(got[4]), 1))
}
