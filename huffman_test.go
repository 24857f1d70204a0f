package jpeg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// classic JPEG Annex K luminance DC table: BITS/HUFFVAL as published in
// ISO/IEC 10918-1 Table K.3.
func lumaDCTable(t *testing.T) *huffTable {
	t.Helper()
	bits := [16]int{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
	values := []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	tbl, err := buildHuffTable(huffDC, 0, bits, values)
	require.NoError(t, err)
	return tbl
}

func TestBuildHuffTable_RoundTrip(t *testing.T) {
	tbl := lumaDCTable(t)

	// Re-derive each symbol's canonical code and verify decode_symbol
	// recovers the original symbol, per the Huffman round-trip law.
	var code int32
	idx := 0
	for l := 0; l < 16; l++ {
		code <<= 1
		for i := 0; i < tbl.bits[l]; i++ {
			want := tbl.values[idx]
			var w bitWriter
			w.writeBits(uint32(code), uint(l+1))
			data := w.flush()
			r := newBitReader(bytes.NewReader(data))
			got, err := decodeSymbol(r, tbl)
			require.NoError(t, err)
			require.Equal(t, want, got, "length %d code %d", l+1, code)
			code++
			idx++
		}
	}
}

func TestBuildHuffTable_OverflowRejected(t *testing.T) {
	// Three codes of length 1 cannot exist: only "0" and "1" are
	// available, so bits[0]=3 overflows the available code space.
	bits := [16]int{3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := buildHuffTable(huffDC, 0, bits, []uint8{1, 2, 3})
	require.Error(t, err)
	var je *Error
	require.ErrorAs(t, err, &je)
	require.Equal(t, MalformedSegment, je.Kind)
}

func TestBuildHuffTable_LengthMismatchRejected(t *testing.T) {
	bits := [16]int{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := buildHuffTable(huffDC, 0, bits, []uint8{1, 2})
	require.Error(t, err)
	var je *Error
	require.ErrorAs(t, err, &je)
	require.Equal(t, MalformedSegment, je.Kind)
}

func TestDecodeSymbol_NoMatchFails(t *testing.T) {
	tbl := lumaDCTable(t)
	// All-ones beyond any assigned code length: no code in this table
	// reaches length 16, but exhausting 16 ones should still fail cleanly.
	// Each 0xFF data byte is byte-stuffed as FF 00.
	r := newBitReader(bytes.NewReader([]byte{0xFF, 0x00, 0xFF, 0x00}))
	_, err := decodeSymbol(r, tbl)
	require.Error(t, err)
}
