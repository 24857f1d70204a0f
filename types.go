package jpeg

// quantTable holds one 8-bit quantization table (DQT), its 64 values kept
// in zigzag order exactly as they appear on the wire. 16-bit precision
// (pq=1) is rejected as an unsupported feature.
type quantTable struct {
	id     uint8
	values [64]uint8
}

// frameComponent is one component definition from SOF0.
type frameComponent struct {
	id    uint8
	h, v  uint8 // horizontal/vertical sampling factors, 1..4
	qtID  uint8
}

// scanComponent binds a frame component to the DC/AC Huffman table ids it
// uses within one scan (SOS).
type scanComponent struct {
	frameID uint8
	td, ta  uint8
}

// decodedComponent is a frame component plus the scheduler's working
// state: the running DC predictor and the plane it decodes samples into.
// stride is the plane's row pitch in bytes, always mcuX*8*h.
type decodedComponent struct {
	h, v     uint8
	qtID     uint8
	td, ta   uint8
	prevDC   int32
	plane    []uint8
	stride   int
	rows     int // mcuY * 8 * v
}

// restartInterval is the DRI value: number of MCUs between RSTn markers,
// 0 meaning restarts are disabled.
type restartInterval uint16
