package jpeg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestInverseDCT8x8_DCOnlyLaw verifies the law from spec section 8: a
// block whose only non-zero coefficient is a dequantized DC of value d
// yields a uniform 8x8 block of clamp(round(d/8) + 128). See DESIGN.md
// for why this is followed over golden vector #2's literal arithmetic.
func TestInverseDCT8x8_DCOnlyLaw(t *testing.T) {
	cases := []float64{0, 5, 40, -40, 1000, -1000}
	for _, d := range cases {
		var block [64]float64
		block[0] = d
		out := make([]uint8, 64)
		inverseDCT8x8(block, out, 8)

		want := clampSample(roundHalfAwayFromZero(d/8) + 128)
		for i, got := range out {
			require.Equalf(t, want, got, "d=%v sample %d", d, i)
		}
	}
}

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

func TestDequantizeAndUnzigzag_DCAtNaturalZero(t *testing.T) {
	var coefs [64]int32
	coefs[0] = 7
	qt := &quantTable{}
	for i := range qt.values {
		qt.values[i] = 2
	}
	natural := dequantizeAndUnzigzag(coefs, qt)
	require.EqualValues(t, 14, natural[0])
	for i := 1; i < 64; i++ {
		require.Zerof(t, natural[i], "natural[%d]", i)
	}
}

func TestZigzagToNatural_IsPermutation(t *testing.T) {
	seen := make(map[int]bool, 64)
	for _, n := range zigzagToNatural {
		require.False(t, seen[n], "duplicate natural index %d", n)
		require.True(t, n >= 0 && n < 64)
		seen[n] = true
	}
	require.Len(t, seen, 64)
}

func TestClampSample(t *testing.T) {
	require.EqualValues(t, 0, clampSample(-5))
	require.EqualValues(t, 255, clampSample(300))
	require.EqualValues(t, 128, clampSample(128))
}
