package jpeg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeAmplitude_ZeroLength(t *testing.T) {
	r := newBitReader(bytes.NewReader(nil))
	v, err := decodeAmplitude(r, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, v)
}

func TestDecodeAmplitude_RoundTrip(t *testing.T) {
	// For every ssss in 1..11, every legal signed amplitude of that size
	// category (magnitude 2^(ssss-1)..2^ssss-1) round-trips through the
	// Annex F raw-bits encoding used by a real encoder.
	for ssss := uint8(1); ssss <= 11; ssss++ {
		half := int32(1) << (ssss - 1)
		max := int32(1)<<ssss - 1
		for _, amp := range []int32{-max, -half, -1, 1, half, max} {
			if amp > -half && amp < half {
				continue // +-1 belongs to category ssss=1 only
			}
			var raw uint32
			if amp > 0 {
				raw = uint32(amp)
			} else {
				raw = uint32(amp + max)
			}
			var w bitWriter
			w.writeBits(raw, uint(ssss))
			data := w.flush()
			r := newBitReader(bytes.NewReader(data))
			got, err := decodeAmplitude(r, ssss)
			require.NoError(t, err)
			require.Equal(t, amp, got, "ssss=%d amp=%d", ssss, amp)
		}
	}
}

func buildTrivialTables(t *testing.T) (dc, ac *huffTable) {
	t.Helper()
	var err error
	dc, err = buildHuffTable(huffDC, 0, [16]int{1}, []uint8{3})
	require.NoError(t, err)
	ac, err = buildHuffTable(huffAC, 0, [16]int{1}, []uint8{0x00})
	require.NoError(t, err)
	return
}

func TestDecodeBlock_DCThenEOB(t *testing.T) {
	dc, ac := buildTrivialTables(t)
	var w bitWriter
	w.writeBits(0, 1) // DC codeword
	w.writeBits(5, 3) // amplitude raw=5 -> value 5 (ssss=3)
	w.writeBits(0, 1) // AC codeword -> EOB
	r := newBitReader(bytes.NewReader(w.flush()))

	coefs, err := decodeBlock(r, dc, ac)
	require.NoError(t, err)
	require.EqualValues(t, 5, coefs[0])
	for i := 1; i < 64; i++ {
		require.Zerof(t, coefs[i], "coefs[%d]", i)
	}
}

func TestDecodeBlock_ZRLThenCoefficient(t *testing.T) {
	// AC table maps: 0x00 -> EOB, 0xF0 -> ZRL, 0x01 -> (run=0, ssss=1).
	dc, err := buildHuffTable(huffDC, 0, [16]int{1}, []uint8{0})
	require.NoError(t, err)
	ac, err := buildHuffTable(huffAC, 0, [16]int{0, 3}, []uint8{0x00, 0xF0, 0x01})
	require.NoError(t, err)

	var w bitWriter
	w.writeBits(0, 1) // DC codeword -> ssss=0, amplitude 0
	// AC: codeword for 0xF0 (ZRL) is the middle 2-bit code, codeword for
	// 0x01 is the last 2-bit code; canonical assignment at length 2
	// starting from code 0: 0x00->"00", 0xF0->"01", 0x01->"10".
	w.writeBits(0b01, 2) // ZRL: skip positions 1..16
	w.writeBits(0b10, 2) // run=0 ssss=1 at position 17
	w.writeBits(1, 1)    // amplitude raw=1 -> value 1
	w.writeBits(0b00, 2) // EOB
	r := newBitReader(bytes.NewReader(w.flush()))

	coefs, err := decodeBlock(r, dc, ac)
	require.NoError(t, err)
	require.EqualValues(t, 0, coefs[0])
	require.EqualValues(t, 1, coefs[17])
	for i := 1; i < 64; i++ {
		if i == 17 {
			continue
		}
		require.Zerof(t, coefs[i], "coefs[%d]", i)
	}
}

func TestDecodeBlock_RunOverflowFails(t *testing.T) {
	dc, err := buildHuffTable(huffDC, 0, [16]int{1}, []uint8{0})
	require.NoError(t, err)
	// A single AC symbol (run=15, ssss=1) repeated past the end of the
	// block must fail rather than write out of bounds.
	ac, err := buildHuffTable(huffAC, 0, [16]int{1}, []uint8{0xF1})
	require.NoError(t, err)

	var w bitWriter
	w.writeBits(0, 1) // DC
	for i := 0; i < 6; i++ {
		w.writeBits(0, 1) // AC symbol 0xF1: run=15, ssss=1
		w.writeBits(1, 1) // amplitude
	}
	r := newBitReader(bytes.NewReader(w.flush()))

	_, err = decodeBlock(r, dc, ac)
	require.Error(t, err)
	var je *Error
	require.ErrorAs(t, err, &je)
	require.Equal(t, HuffmanDecodeError, je.Kind)
}
