package jpeg

import (
	"errors"
	"io"
)

// bitReader pulls bits MSB-first from an underlying byte source, removing
// FF 00 byte-stuffing transparently. A non-stuffing FF marker is surfaced
// to the caller as a *markerSignal rather than silently consumed, since
// only the MCU scheduler knows whether that marker is an expected RSTn.
type bitReader struct {
	src    io.ByteReader
	latch  byte
	nBits  uint // number of unread bits remaining in latch, 0 means empty
}

func newBitReader(src io.ByteReader) *bitReader {
	return &bitReader{src: src}
}

// reset discards any partially-consumed latch, forcing the next read to
// start on a byte boundary. Called at restart boundaries.
func (r *bitReader) reset() {
	r.nBits = 0
	r.latch = 0
}

func (r *bitReader) fill() error {
	b, err := r.src.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return newError(TruncatedStream, "bitReader.fill", "byte source exhausted")
		}
		return wrapError(TruncatedStream, "bitReader.fill", "byte source error", err)
	}
	if b == 0xFF {
		b2, err := r.src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return newError(TruncatedStream, "bitReader.fill", "byte source exhausted after 0xFF")
			}
			return wrapError(TruncatedStream, "bitReader.fill", "byte source error after 0xFF", err)
		}
		if b2 != 0x00 {
			return &markerSignal{marker: b2}
		}
		// FF 00 is destuffed to a literal FF data byte.
	}
	r.latch = b
	r.nBits = 8
	return nil
}

// readBit returns the next bit (0 or 1), MSB first. If the latch is empty
// it pulls a fresh byte, destuffing FF 00 as needed. A bare marker other
// than FF 00 is returned as a *markerSignal error.
func (r *bitReader) readBit() (uint32, error) {
	if r.nBits == 0 {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	r.nBits--
	return uint32((r.latch >> r.nBits) & 1), nil
}

// readBits concatenates n bits (1..16) MSB-first into a uint32. Used only
// by entropy decoding.
func (r *bitReader) readBits(n uint) (uint32, error) {
	var v uint32
	for i := uint(0); i < n; i++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | bit
	}
	return v, nil
}
