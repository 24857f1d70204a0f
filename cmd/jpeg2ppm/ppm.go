package main

import (
	"bufio"
	"fmt"
	"io"

	jpeg "github.com/sdkawata/jpeg-parser2"
)

// writePPM encodes img as a binary PPM (P6). EmitAlpha images have their
// alpha channel dropped since PPM has no alpha plane.
func writePPM(w io.Writer, img *jpeg.Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return err
	}

	if !img.Alpha {
		if _, err := bw.Write(img.Pix); err != nil {
			return err
		}
		return bw.Flush()
	}

	row := make([]byte, img.Width*3)
	for y := 0; y < img.Height; y++ {
		src := img.Pix[y*img.Width*4 : (y+1)*img.Width*4]
		for x := 0; x < img.Width; x++ {
			copy(row[x*3:x*3+3], src[x*4:x*4+3])
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
