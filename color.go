package jpeg

// assembleImage performs nearest-neighbor chroma upsampling and, for 3
// component scans, YCbCr to RGB conversion (ITU-R BT.601, JFIF full
// range). Grayscale (1 component) scans replicate Y into R=G=B.
func (d *Decoder) assembleImage() (*Image, error) {
	bpp := 3
	if d.opts.EmitAlpha {
		bpp = 4
	}
	pix := make([]uint8, d.width*d.height*bpp)

	switch len(d.comps) {
	case 1:
		y := &d.comps[0]
		for row := 0; row < d.height; row++ {
			for col := 0; col < d.width; col++ {
				v := y.plane[row*y.stride+col]
				off := (row*d.width + col) * bpp
				pix[off], pix[off+1], pix[off+2] = v, v, v
				if bpp == 4 {
					pix[off+3] = 255
				}
			}
		}
	case 3:
		yc, cb, cr := &d.comps[0], &d.comps[1], &d.comps[2]
		maxH, maxV := int(d.maxH), int(d.maxV)
		for row := 0; row < d.height; row++ {
			for col := 0; col < d.width; col++ {
				ySample := yc.plane[row*yc.stride+col]

				cbRow := row * int(cb.v) / maxV
				cbCol := col * int(cb.h) / maxH
				cbSample := cb.plane[cbRow*cb.stride+cbCol]

				crRow := row * int(cr.v) / maxV
				crCol := col * int(cr.h) / maxH
				crSample := cr.plane[crRow*cr.stride+crCol]

				r, g, b := ycbcrToRGB(ySample, cbSample, crSample)
				off := (row*d.width + col) * bpp
				pix[off], pix[off+1], pix[off+2] = r, g, b
				if bpp == 4 {
					pix[off+3] = 255
				}
			}
		}
	default:
		return nil, newError(UnsupportedFeature, "assembleImage",
			"only grayscale or 3-component YCbCr frames are supported")
	}

	return &Image{Width: d.width, Height: d.height, Pix: pix, Alpha: d.opts.EmitAlpha}, nil
}

func ycbcrToRGB(y, cb, cr uint8) (r, g, b uint8) {
	yf := float64(y)
	cbf := float64(cb) - 128
	crf := float64(cr) - 128

	r = clampSample(roundNearest(yf + 1.402*crf))
	g = clampSample(roundNearest(yf - 0.34414*cbf - 0.71414*crf))
	b = clampSample(roundNearest(yf + 1.772*cbf))
	return
}

func roundNearest(v float64) float64 {
	if v >= 0 {
		return float64(int(v + 0.5))
	}
	return float64(int(v - 0.5))
}
