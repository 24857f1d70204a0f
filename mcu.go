package jpeg

import "errors"

// bindComponents resolves each scan component against its frame component
// and the quantization/Huffman tables it references, per spec 4.6 step 1.
func (d *Decoder) bindComponents() ([]decodedComponent, error) {
	comps := make([]decodedComponent, len(d.scanComponents))
	for i, sc := range d.scanComponents {
		var fc *frameComponent
		for j := range d.components {
			if d.components[j].id == sc.frameID {
				fc = &d.components[j]
				break
			}
		}
		if fc == nil {
			return nil, newError(TableLookupFailed, "bindComponents",
				"scan component references unknown frame component id")
		}
		if sc.td > 3 || sc.ta > 3 {
			return nil, newError(TableLookupFailed, "bindComponents",
				"Huffman table id out of range")
		}
		if d.qtabs[fc.qtID] == nil {
			return nil, newError(TableLookupFailed, "bindComponents",
				"missing quantization table")
		}
		if d.htabs[sc.td][huffDC] == nil {
			return nil, newError(TableLookupFailed, "bindComponents",
				"missing DC Huffman table")
		}
		if d.htabs[sc.ta][huffAC] == nil {
			return nil, newError(TableLookupFailed, "bindComponents",
				"missing AC Huffman table")
		}
		comps[i] = decodedComponent{
			h: fc.h, v: fc.v, qtID: fc.qtID, td: sc.td, ta: sc.ta,
		}
	}
	return comps, nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// runScan decodes the entropy-coded segment that follows an SOS header:
// it computes the MCU grid, allocates component planes, then iterates
// MCUs honoring restart intervals and the DC predictor contract.
func (d *Decoder) runScan() error {
	comps, err := d.bindComponents()
	if err != nil {
		return err
	}

	mcuX := ceilDiv(d.width, 8*int(d.maxH))
	mcuY := ceilDiv(d.height, 8*int(d.maxV))

	for i := range comps {
		comps[i].stride = mcuX * 8 * int(comps[i].h)
		comps[i].rows = mcuY * 8 * int(comps[i].v)
		comps[i].plane = make([]uint8, comps[i].stride*comps[i].rows)
		comps[i].prevDC = 0
	}

	d.mcuX, d.mcuY = mcuX, mcuY
	d.br = newBitReader(d.r)

	nMCUs := mcuX * mcuY
	for mcuIndex := 0; mcuIndex < nMCUs; mcuIndex++ {
		if d.restart > 0 && mcuIndex > 0 && mcuIndex%int(d.restart) == 0 {
			if err := d.handleRestart(mcuIndex); err != nil {
				return err
			}
			for i := range comps {
				comps[i].prevDC = 0
			}
		}

		ix := mcuIndex % mcuX
		iy := mcuIndex / mcuX

		for ci := range comps {
			c := &comps[ci]
			for iv := 0; iv < int(c.v); iv++ {
				for ih := 0; ih < int(c.h); ih++ {
					if err := d.decodeAndPlaceBlock(c, ix, iy, ih, iv); err != nil {
						return err
					}
				}
			}
		}
	}

	d.comps = comps
	d.log.WithField("mcus", nMCUs).WithField("mcuX", mcuX).WithField("mcuY", mcuY).
		Debug("scan complete")
	return nil
}

func (d *Decoder) decodeAndPlaceBlock(c *decodedComponent, ix, iy, ih, iv int) error {
	dc := d.htabs[c.td][huffDC]
	ac := d.htabs[c.ta][huffAC]

	coefs, err := decodeBlock(d.br, dc, ac)
	if err != nil {
		var ms *markerSignal
		if errors.As(err, &ms) {
			return newError(UnexpectedMarkerInScan, "decodeAndPlaceBlock",
				"marker "+markerName(ms.marker)+" encountered mid-block")
		}
		return err
	}

	coefs[0] += c.prevDC
	c.prevDC = coefs[0]

	qt := d.qtabs[c.qtID]
	natural := dequantizeAndUnzigzag(coefs, qt)

	x := (ix*int(c.h) + ih) * 8
	y := (iy*int(c.v) + iv) * 8
	start := y*c.stride + x
	if start+7*c.stride+8 > len(c.plane) {
		panic("jpeg: decoded block write exceeds plane bounds")
	}
	inverseDCT8x8(natural, c.plane[start:], c.stride)
	return nil
}

// handleRestart drops any unconsumed bits, scans for the marker that must
// follow, verifies it is the expected RSTn, and resets the bit reader to a
// fresh byte boundary.
func (d *Decoder) handleRestart(mcuIndex int) error {
	d.br.reset()
	marker, err := d.nextMarker()
	if err != nil {
		return err
	}

	expected := uint8(((mcuIndex/int(d.restart))-1)%8)
	if isRST(marker) {
		got := marker - markerRST0
		if got != expected {
			return &Error{
				Kind:     RestartMismatch,
				Op:       "handleRestart",
				Detail:   "RSTn out of sequence",
				Expected: expected,
				Got:      got,
			}
		}
		d.log.WithField("n", got).Debug("RST")
		return nil
	}
	return newError(UnexpectedMarkerInScan, "handleRestart", markerName(marker))
}
