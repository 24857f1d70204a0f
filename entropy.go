package jpeg

// decodeAmplitude reads ssss bits as the magnitude of a signed amplitude
// encoded per Annex F of the JPEG standard: a zero-length amplitude is 0;
// otherwise the raw unsigned value r is sign-extended by subtracting
// (2^ssss - 1) whenever r falls in the lower half of its range.
func decodeAmplitude(r *bitReader, ssss uint8) (int32, error) {
	if ssss == 0 {
		return 0, nil
	}
	raw, err := r.readBits(uint(ssss))
	if err != nil {
		return 0, err
	}
	half := int32(1) << (ssss - 1)
	v := int32(raw)
	if v < half {
		return v - (int32(1)<<ssss - 1), nil
	}
	return v, nil
}

// decodeBlock decodes one 8x8 block of coefficients in zigzag order: one
// DC symbol/amplitude pair followed by a run of AC symbol/amplitude pairs
// terminated by EOB, ZRL runs, or exhausting all 64 positions.
func decodeBlock(r *bitReader, dc, ac *huffTable) ([64]int32, error) {
	var coefs [64]int32

	dcSSSS, err := decodeSymbol(r, dc)
	if err != nil {
		return coefs, err
	}
	amp, err := decodeAmplitude(r, dcSSSS)
	if err != nil {
		return coefs, err
	}
	coefs[0] = amp

	ptr := 1
	for ptr < 64 {
		s, err := decodeSymbol(r, ac)
		if err != nil {
			return coefs, err
		}
		rrrr := s >> 4
		ssss := s & 0x0F

		switch {
		case s == 0x00: // EOB: remaining positions stay zero.
			ptr = 64
		case s == 0xF0: // ZRL: skip 16 zero coefficients.
			ptr += 16
			if ptr > 64 {
				return coefs, newError(HuffmanDecodeError, "decodeBlock",
					"ZRL run overflows block")
			}
		default:
			ptr += int(rrrr)
			if ptr >= 64 {
				return coefs, newError(HuffmanDecodeError, "decodeBlock",
					"run length overflows block")
			}
			amp, err := decodeAmplitude(r, ssss)
			if err != nil {
				return coefs, err
			}
			coefs[ptr] = amp
			ptr++
		}
	}
	if ptr > 64 {
		return coefs, newError(HuffmanDecodeError, "decodeBlock", "block overflow")
	}
	return coefs, nil
}
