package jpeg

import (
	"bufio"
	"io"

	"github.com/sirupsen/logrus"
)

// Options configures a single Decode call. A zero Options decodes with no
// alpha channel and a private logger that emits only Warn and above.
type Options struct {
	// EmitAlpha, if true, outputs 4 bytes per pixel with A=255.
	EmitAlpha bool
	// Logger receives parse/decode progress at Debug and leniency warnings
	// at Warn. If nil, the Decoder creates a private logger scoped to this
	// decode (never a package-level singleton).
	Logger logrus.FieldLogger
}

// JFIFInfo is the subset of a JFIF APP0 segment worth retaining after
// decode: density units, pixel density, and thumbnail dimensions.
type JFIFInfo struct {
	VersionMajor, VersionMinor uint8
	Units                      uint8 // 0: aspect ratio, 1: pixels/inch, 2: pixels/cm
	XDensity, YDensity         uint16
	ThumbWidth, ThumbHeight    uint8
}

// SegmentInfo records one marker segment encountered while parsing, in
// file order, for introspection after decode.
type SegmentInfo struct {
	Marker byte // low byte following 0xFF
	Offset uint // byte offset of the 0xFF marker prefix
	Length uint // segment content length, 0 for markers with no length
}

// Decoder holds all state for decoding a single JPEG image: tables,
// frame/scan geometry, component planes and reader state. It is not safe
// for concurrent use; each call to Decode constructs its own Decoder.
type Decoder struct {
	r   *bufio.Reader
	br  *bitReader
	log logrus.FieldLogger
	opts Options

	offset uint // approximate byte offset, for logging/SegmentInfo only

	width, height int
	components    []frameComponent
	maxH, maxV    uint8

	qtabs [4]*quantTable
	htabs [4][2]*huffTable // indexed [id][huffClass]

	restart restartInterval

	jfif         *JFIFInfo
	segments     []SegmentInfo
	skippedBytes uint

	comps          []decodedComponent
	scanComponents []scanComponent
	mcuX, mcuY     int

	sofSeen, sosSeen bool
}

// Image is the decoded result: dimensions and a packed RGB (or RGBA, if
// Options.EmitAlpha) raster, row-major top to bottom.
type Image struct {
	Width, Height int
	Pix           []uint8 // len == Width*Height*3 or Width*Height*4
	Alpha         bool
}

// Decode reads a baseline sequential JPEG bitstream from r and returns the
// decoded RGB raster. r is consumed sequentially; no seeking is performed.
func Decode(r io.Reader, opts Options) (*Image, error) {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	d := &Decoder{
		r:    bufio.NewReaderSize(r, 32*1024),
		log:  log,
		opts: opts,
	}
	if err := d.parseHeaderAndScans(); err != nil {
		return nil, err
	}
	return d.assembleImage()
}

// JFIF returns the JFIF APP0 metadata recorded during parsing, if present.
func (d *Decoder) JFIF() (*JFIFInfo, bool) {
	if d.jfif == nil {
		return nil, false
	}
	return d.jfif, true
}

// Segments returns the ordered list of marker segments encountered.
func (d *Decoder) Segments() []SegmentInfo { return d.segments }

// SkippedBytes returns the number of non-FF bytes skipped while scanning
// for markers outside the entropy-coded segment.
func (d *Decoder) SkippedBytes() uint { return d.skippedBytes }
