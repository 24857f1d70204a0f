package jpeg

import "math"

// zigzagToNatural[z] is the natural row-major index (row*8+col) that
// zigzag-ordered coefficient z belongs to. Derived from the sample ->
// coefficient-index table of ISO/IEC 10918-1 Annex A.
var zigzagToNatural = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// idctCos[x][u] = cos((2x+1)*u*pi/16), precomputed once.
var idctCos [8][8]float64

// idctAlpha[u] = C(u): 1/sqrt(2) for u==0, 1 for u>0.
var idctAlpha [8]float64

func init() {
	for x := 0; x < 8; x++ {
		for u := 0; u < 8; u++ {
			idctCos[x][u] = math.Cos(float64(2*x+1) * float64(u) * math.Pi / 16.0)
		}
	}
	idctAlpha[0] = 1.0 / math.Sqrt2
	for u := 1; u < 8; u++ {
		idctAlpha[u] = 1.0
	}
}

// dequantizeAndUnzigzag multiplies each zigzag-ordered coefficient by its
// quantization table entry and reorders the result into an 8x8 natural
// grid. The DC predictor must already have been added to coefs[0] before
// calling this, per the DC predictor placement in spec section 4.4/4.6.
func dequantizeAndUnzigzag(coefs [64]int32, qt *quantTable) [64]float64 {
	var natural [64]float64
	for z := 0; z < 64; z++ {
		natural[zigzagToNatural[z]] = float64(coefs[z]) * float64(qt.values[z])
	}
	return natural
}

// inverseDCT8x8 applies the separable 2D inverse DCT to a natural-order
// 8x8 block of dequantized coefficients, level-shifts by 128, and clamps
// to [0,255]. out must have room for 64 bytes; stride is the row pitch of
// the destination plane (out's rows are stride bytes apart).
func inverseDCT8x8(block [64]float64, out []uint8, stride int) {
	var tmp [8][8]float64 // tmp[x][v]: partial sum over u, one column per v

	for x := 0; x < 8; x++ {
		for v := 0; v < 8; v++ {
			var sum float64
			for u := 0; u < 8; u++ {
				sum += idctAlpha[u] * block[u*8+v] * idctCos[x][u]
			}
			tmp[x][v] = sum
		}
	}

	for x := 0; x < 8; x++ {
		row := out[x*stride : x*stride+8]
		for y := 0; y < 8; y++ {
			var sum float64
			for v := 0; v < 8; v++ {
				sum += idctAlpha[v] * tmp[x][v] * idctCos[y][v]
			}
			s := 0.25 * sum
			row[y] = clampSample(math.Round(s) + 128)
		}
	}
}

func clampSample(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
