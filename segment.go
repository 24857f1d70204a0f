package jpeg

import (
	"encoding/binary"
	"errors"
	"io"
)

// nextMarker scans the byte source for 0xFF followed by a non-zero byte,
// tolerating runs of 0xFF fill bytes before the marker code and counting
// (without failing on) any non-FF bytes found along the way. Outside the
// entropy-coded segment a stray 0xFF 0x00 is lenient padding, not a data
// byte; it is counted as skipped and scanning continues. Bytes skipped
// before the returned marker are reported with a Warn log.
func (d *Decoder) nextMarker() (byte, error) {
	startSkipped := d.skippedBytes
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, d.truncated("nextMarker", err)
		}
		d.offset++
		if b != 0xFF {
			d.skippedBytes++
			continue
		}
		for {
			b2, err := d.r.ReadByte()
			if err != nil {
				return 0, d.truncated("nextMarker", err)
			}
			d.offset++
			if b2 == 0xFF {
				continue // fill byte, keep scanning for the real marker code
			}
			if b2 == 0x00 {
				d.skippedBytes++
				break // stray stuffing outside a scan; resume outer scan
			}
			if n := d.skippedBytes - startSkipped; n > 0 {
				d.log.WithField("bytes", n).Warn("skipped bytes before marker")
			}
			return b2, nil
		}
	}
}

func (d *Decoder) truncated(op string, err error) error {
	if errors.Is(err, io.EOF) {
		return newError(TruncatedStream, op, "byte source exhausted")
	}
	return wrapError(TruncatedStream, op, "byte source error", err)
}

func (d *Decoder) readSegmentLength() (uint, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return 0, d.truncated("readSegmentLength", err)
	}
	d.offset += 2
	l := uint(binary.BigEndian.Uint16(lenBuf[:]))
	if l < 2 {
		return 0, newError(MalformedSegment, "readSegmentLength",
			"segment length smaller than the length field itself")
	}
	return l, nil
}

func (d *Decoder) readSegmentBody(bodyLen uint) ([]byte, error) {
	buf := make([]byte, bodyLen)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, d.truncated("readSegmentBody", err)
	}
	d.offset += bodyLen
	return buf, nil
}

// parseHeaderAndScans drives the top-level marker state machine: SOI,
// then a Headers loop that dispatches APPn/DQT/DHT/DRI/SOF0/SOS/EOI until
// EOI terminates the image.
func (d *Decoder) parseHeaderAndScans() error {
	var soi [2]byte
	if _, err := io.ReadFull(d.r, soi[:]); err != nil {
		return newError(MissingSOI, "parseHeaderAndScans", "stream shorter than SOI")
	}
	d.offset = 2
	if soi[0] != 0xFF || soi[1] != markerSOI {
		return newError(MissingSOI, "parseHeaderAndScans", "first two bytes are not FFD8")
	}
	d.log.Debug("SOI")

	for {
		marker, err := d.nextMarker()
		if err != nil {
			return err
		}
		segOffset := d.offset - 2

		switch {
		case marker == markerEOI:
			// EOI terminates the header/scan loop unconditionally (spec
			// 4.5, "FFD9: EOI -- terminate successfully"); a stream with
			// no SOF0/SOS still reaches here as a parse success, and
			// fails downstream in assembleImage for lack of components.
			d.log.Debug("EOI")
			d.segments = append(d.segments, SegmentInfo{Marker: marker, Offset: segOffset})
			return nil

		case marker == markerAPP0:
			if err := d.parseAPP0(segOffset); err != nil {
				return err
			}

		case isAPPn(marker):
			if err := d.parseGenericAPPn(marker, segOffset); err != nil {
				return err
			}

		case marker == markerDQT:
			if err := d.parseDQT(segOffset); err != nil {
				return err
			}

		case marker == markerDHT:
			if err := d.parseDHT(segOffset); err != nil {
				return err
			}

		case marker == markerDRI:
			if err := d.parseDRI(segOffset); err != nil {
				return err
			}

		case marker == markerSOF0:
			if err := d.parseSOF0(segOffset); err != nil {
				return err
			}

		case marker == markerSOS:
			if err := d.parseSOSAndScan(segOffset); err != nil {
				return err
			}

		default:
			return newError(UnknownMarker, "parseHeaderAndScans", markerName(marker))
		}
	}
}

func (d *Decoder) parseGenericAPPn(marker byte, segOffset uint) error {
	length, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	body, err := d.readSegmentBody(length - 2)
	if err != nil {
		return err
	}
	d.segments = append(d.segments, SegmentInfo{Marker: marker, Offset: segOffset, Length: length})
	d.log.WithField("bytes", len(body)).Debugf("%s (ignored)", markerName(marker))
	return nil
}

func (d *Decoder) parseAPP0(segOffset uint) error {
	length, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	body, err := d.readSegmentBody(length - 2)
	if err != nil {
		return err
	}
	d.segments = append(d.segments, SegmentInfo{Marker: markerAPP0, Offset: segOffset, Length: length})

	if len(body) >= 5 && string(body[0:5]) == "JFIF\x00" && len(body) >= 14 {
		d.jfif = &JFIFInfo{
			VersionMajor: body[5],
			VersionMinor: body[6],
			Units:        body[7],
			XDensity:     binary.BigEndian.Uint16(body[8:10]),
			YDensity:     binary.BigEndian.Uint16(body[10:12]),
			ThumbWidth:   body[12],
			ThumbHeight:  body[13],
		}
		d.log.WithFields(logFieldsJFIF(d.jfif)).Debug("APP0 JFIF")
		return nil
	}
	d.log.WithField("bytes", len(body)).Debug("APP0 (non-JFIF, ignored)")
	return nil
}

func (d *Decoder) parseDQT(segOffset uint) error {
	length, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	body, err := d.readSegmentBody(length - 2)
	if err != nil {
		return err
	}
	d.segments = append(d.segments, SegmentInfo{Marker: markerDQT, Offset: segOffset, Length: length})

	i := 0
	for i < len(body) {
		pqTq := body[i]
		pq := pqTq >> 4
		tq := pqTq & 0x0F
		i++
		if pq != 0 {
			return newError(UnsupportedFeature, "parseDQT", "16-bit quantization tables are not supported")
		}
		if tq > 3 {
			return newError(MalformedSegment, "parseDQT", "quantization table id out of range")
		}
		if i+64 > len(body) {
			return newError(MalformedSegment, "parseDQT", "truncated quantization table")
		}
		qt := &quantTable{id: tq}
		copy(qt.values[:], body[i:i+64])
		i += 64
		d.qtabs[tq] = qt
		d.log.WithField("id", tq).Debug("DQT")
	}
	return nil
}

func (d *Decoder) parseDHT(segOffset uint) error {
	length, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	body, err := d.readSegmentBody(length - 2)
	if err != nil {
		return err
	}
	d.segments = append(d.segments, SegmentInfo{Marker: markerDHT, Offset: segOffset, Length: length})

	i := 0
	for i < len(body) {
		if i+1+16 > len(body) {
			return newError(MalformedSegment, "parseDHT", "truncated Huffman table header")
		}
		tcTh := body[i]
		tc := tcTh >> 4
		th := tcTh & 0x0F
		i++
		if tc > 1 {
			return newError(UnsupportedFeature, "parseDHT", "only DC/AC Huffman classes are supported")
		}
		if th > 3 {
			return newError(MalformedSegment, "parseDHT", "Huffman table id out of range")
		}
		var bits [16]int
		total := 0
		for l := 0; l < 16; l++ {
			bits[l] = int(body[i+l])
			total += bits[l]
		}
		i += 16
		if i+total > len(body) {
			return newError(MalformedSegment, "parseDHT", "truncated HUFFVAL list")
		}
		values := make([]uint8, total)
		copy(values, body[i:i+total])
		i += total

		class := huffDC
		if tc == 1 {
			class = huffAC
		}
		t, err := buildHuffTable(class, th, bits, values)
		if err != nil {
			return err
		}
		d.htabs[th][class] = t
		d.log.WithField("id", th).WithField("class", tc).Debug("DHT")
	}
	return nil
}

func (d *Decoder) parseDRI(segOffset uint) error {
	length, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	body, err := d.readSegmentBody(length - 2)
	if err != nil {
		return err
	}
	d.segments = append(d.segments, SegmentInfo{Marker: markerDRI, Offset: segOffset, Length: length})
	if len(body) != 2 {
		return newError(MalformedSegment, "parseDRI", "DRI segment must be exactly 2 bytes")
	}
	d.restart = restartInterval(binary.BigEndian.Uint16(body))
	d.log.WithField("interval", d.restart).Debug("DRI")
	return nil
}

func (d *Decoder) parseSOF0(segOffset uint) error {
	if d.sofSeen {
		return newError(UnsupportedFeature, "parseSOF0", "multiple frames are not supported")
	}
	length, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	body, err := d.readSegmentBody(length - 2)
	if err != nil {
		return err
	}
	d.segments = append(d.segments, SegmentInfo{Marker: markerSOF0, Offset: segOffset, Length: length})

	if len(body) < 6 {
		return newError(MalformedSegment, "parseSOF0", "SOF0 header too short")
	}
	precision := body[0]
	if precision != 8 {
		return newError(UnsupportedFeature, "parseSOF0", "only 8-bit sample precision is supported")
	}
	height := int(binary.BigEndian.Uint16(body[1:3]))
	width := int(binary.BigEndian.Uint16(body[3:5]))
	nf := int(body[5])
	if nf != 1 && nf != 3 {
		return newError(UnsupportedFeature, "parseSOF0", "only 1 or 3 component frames are supported")
	}
	if len(body) < 6+3*nf {
		return newError(MalformedSegment, "parseSOF0", "SOF0 component list truncated")
	}
	if width == 0 || height == 0 {
		return newError(MalformedSegment, "parseSOF0", "zero width or height")
	}

	comps := make([]frameComponent, nf)
	var maxH, maxV uint8
	for k := 0; k < nf; k++ {
		off := 6 + 3*k
		id := body[off]
		hv := body[off+1]
		h := hv >> 4
		v := hv & 0x0F
		qtID := body[off+2]
		if h < 1 || h > 4 || v < 1 || v > 4 {
			return newError(MalformedSegment, "parseSOF0", "sampling factor out of range 1..4")
		}
		if qtID > 3 {
			return newError(MalformedSegment, "parseSOF0", "quantization table id out of range")
		}
		comps[k] = frameComponent{id: id, h: h, v: v, qtID: qtID}
		if h > maxH {
			maxH = h
		}
		if v > maxV {
			maxV = v
		}
	}

	d.width, d.height = width, height
	d.components = comps
	d.maxH, d.maxV = maxH, maxV
	d.sofSeen = true
	d.log.WithField("width", width).WithField("height", height).
		WithField("components", nf).Debug("SOF0")
	return nil
}

// parseSOSAndScan parses the SOS header and immediately decodes the
// following entropy-coded segment via the MCU scheduler, returning to the
// Headers loop once all MCUs have been decoded.
func (d *Decoder) parseSOSAndScan(segOffset uint) error {
	if !d.sofSeen {
		return newError(MalformedSegment, "parseSOSAndScan", "SOS before SOF0")
	}
	length, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	body, err := d.readSegmentBody(length - 2)
	if err != nil {
		return err
	}
	d.segments = append(d.segments, SegmentInfo{Marker: markerSOS, Offset: segOffset, Length: length})

	if len(body) < 1 {
		return newError(MalformedSegment, "parseSOSAndScan", "SOS header too short")
	}
	ns := int(body[0])
	if ns < 1 || ns > 4 || len(body) < 1+2*ns+3 {
		return newError(MalformedSegment, "parseSOSAndScan", "SOS component count/length mismatch")
	}

	scanComps := make([]scanComponent, ns)
	for k := 0; k < ns; k++ {
		off := 1 + 2*k
		cs := body[off]
		tdTa := body[off+1]
		scanComps[k] = scanComponent{frameID: cs, td: tdTa >> 4, ta: tdTa & 0x0F}
	}
	tail := body[1+2*ns:]
	ss, se, ahAl := tail[0], tail[1], tail[2]
	if ss != 0 || se != 63 || ahAl != 0 {
		return newError(UnsupportedFeature, "parseSOSAndScan",
			"baseline sequential requires Ss=0, Se=63, Ah=Al=0")
	}

	d.scanComponents = scanComps
	d.sosSeen = true
	d.log.WithField("components", ns).Debug("SOS")

	return d.runScan()
}

func logFieldsJFIF(j *JFIFInfo) map[string]interface{} {
	return map[string]interface{}{
		"version": []uint8{j.VersionMajor, j.VersionMinor},
		"units":   j.Units,
	}
}
