package jpeg

// huffClass distinguishes a DC from an AC Huffman table.
type huffClass uint8

const (
	huffDC huffClass = 0
	huffAC huffClass = 1
)

// huffTable is an immutable canonical Huffman table built from a BITS/
// HUFFVAL pair (ISO/IEC 10918-1 Annex C). It supports O(16) decode of one
// symbol per call: at each code length L the accumulated code is compared
// against [mincodes[L-1], maxcodes[L-1]].
type huffTable struct {
	class  huffClass
	id     uint8
	bits   [16]int   // bits[L-1] = number of codes of length L
	values []uint8   // symbols, grouped by increasing length

	mincodes   [16]int32
	maxcodes   [16]int32 // -1 means no code of this length
	firstindex [16]int32 // -1 means no code of this length
}

// buildHuffTable computes mincodes/maxcodes/firstindex from bits and
// values following the canonical assignment: starting code 0, left-shift
// by one at each length boundary, increment by one for consecutive codes
// of the same length.
func buildHuffTable(class huffClass, id uint8, bits [16]int, values []uint8) (*huffTable, error) {
	t := &huffTable{class: class, id: id, bits: bits, values: values}

	var code int32
	var cumm int32
	for l := 0; l < 16; l++ {
		code <<= 1
		n := int32(bits[l])
		if n == 0 {
			t.firstindex[l] = -1
			t.maxcodes[l] = -1
			continue
		}
		if code+n > (1 << uint(l+1)) {
			return nil, newError(MalformedSegment, "buildHuffTable",
				"Huffman code assignment overflows its bit length")
		}
		t.firstindex[l] = cumm
		t.mincodes[l] = code
		cumm += n
		code += n
		t.maxcodes[l] = code - 1
	}
	if int(cumm) != len(values) {
		return nil, newError(MalformedSegment, "buildHuffTable",
			"BITS/HUFFVAL length mismatch")
	}
	return t, nil
}

// decodeSymbol reads bits one at a time until the accumulated code falls
// within a known length's [mincodes, maxcodes] range, then returns the
// corresponding symbol.
func decodeSymbol(r *bitReader, t *huffTable) (uint8, error) {
	var code int32
	for l := 0; l < 16; l++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(bit)
		if t.firstindex[l] >= 0 && code >= t.mincodes[l] && code <= t.maxcodes[l] {
			idx := t.firstindex[l] + (code - t.mincodes[l])
			return t.values[idx], nil
		}
	}
	return 0, newError(HuffmanDecodeError, "decodeSymbol",
		"16-bit accumulator failed to match any code")
}
