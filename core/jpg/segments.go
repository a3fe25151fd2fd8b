// Package jpg walks JPEG marker segments and reassembles JPEG files with
// rewritten or removed metadata segments.
package jpg

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
)

// Markers the walker treats specially.
const (
	MarkerSOI   = 0xD8
	MarkerEOI   = 0xD9
	MarkerSOS   = 0xDA
	MarkerAPP1  = 0xE1
	MarkerAPP13 = 0xED
)

// Payload prefixes identifying APP1 and APP13 contents.
var (
	ExifPrefix = []byte("Exif\x00\x00")
	XMPPrefix  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	IPTCPrefix = []byte("Photoshop 3.0\x00")
)

// MaxPayload is the largest payload a length-prefixed segment can carry.
const MaxPayload = 0xFFFF - 2

// ErrPayloadTooLarge is returned when a replacement payload does not fit a segment.
var ErrPayloadTooLarge = errors.New("jpg: segment payload too large")

// Kind classifies APP1 and APP13 segments by payload prefix.
type Kind int

const (
	KindOther Kind = iota
	KindExif
	KindXMP
	KindIPTC
)

func (k Kind) String() string {
	switch k {
	case KindExif:
		return "Exif"
	case KindXMP:
		return "XMP"
	case KindIPTC:
		return "IPTC"
	}
	return "Other"
}

// Segment is one marker segment. Start is the offset of its 0xFF byte and
// End is exclusive. Standalone markers span exactly two bytes.
type Segment struct {
	Marker     byte
	Start, End int
	Kind       Kind
	Standalone bool
}

// Payload returns the offset of the first byte after the length field.
func (s Segment) Payload() int { return s.Start + 4 }

// TIFFStart returns the offset of the TIFF container of an Exif segment.
func (s Segment) TIFFStart() int { return s.Payload() + len(ExifPrefix) }

// Layout is the segment structure of a JPEG buffer. Everything from Tail
// on (scan data, EOI, or an unparseable remainder) is opaque.
type Layout struct {
	Segments []Segment
	Tail     int
}

// Find returns the segments of the given kind, in file order.
func (l *Layout) Find(k Kind) []Segment {
	var out []Segment
	for _, s := range l.Segments {
		if s.Kind == k {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether a segment of kind k is present.
func (l *Layout) Has(k Kind) bool {
	return len(l.Find(k)) > 0
}

// Walk splits data into marker segments up to Start-Of-Scan or End-Of-Image.
// Malformed input ends the walk; the remainder becomes the opaque tail. The
// only error is a missing SOI marker.
func Walk(data []byte) (*Layout, error) {
	if !core.IsJPEG(data) {
		return nil, core.ErrNotJPEG
	}
	l := &Layout{}
	pos := 2
	for pos+1 < len(data) && data[pos] == 0xFF {
		marker := data[pos+1]
		if marker == MarkerSOS || marker == MarkerEOI {
			break
		}
		if marker == 0x00 || marker == MarkerSOI || (marker >= 0xD0 && marker <= 0xD7) {
			l.Segments = append(l.Segments, Segment{Marker: marker, Start: pos, End: pos + 2, Standalone: true})
			pos += 2
			continue
		}
		if pos+4 > len(data) {
			break
		}
		n := int(data[pos+2])<<8 | int(data[pos+3])
		end := pos + 2 + n
		if n < 2 || end > len(data) {
			break
		}
		seg := Segment{Marker: marker, Start: pos, End: end}
		seg.Kind = kindOf(marker, data[pos+4:end])
		l.Segments = append(l.Segments, seg)
		pos = end
	}
	l.Tail = pos
	return l, nil
}

func kindOf(marker byte, payload []byte) Kind {
	switch marker {
	case MarkerAPP1:
		if bytes.HasPrefix(payload, ExifPrefix) {
			return KindExif
		}
		if bytes.HasPrefix(payload, XMPPrefix) {
			return KindXMP
		}
	case MarkerAPP13:
		if bytes.HasPrefix(payload, IPTCPrefix) {
			return KindIPTC
		}
	}
	return KindOther
}

// Edit replaces or drops one segment during Assemble.
type Edit struct {
	Drop    bool
	Payload []byte // new payload, including any identifying prefix
}

// Assemble writes SOI, every segment of l (applying edits keyed by segment
// index) and the opaque tail into a new buffer. Untouched segments are
// copied byte for byte.
func Assemble(data []byte, l *Layout, edits map[int]Edit) ([]byte, error) {
	out := make([]byte, 0, len(data))
	out = append(out, data[:2]...)
	for i, s := range l.Segments {
		e, ok := edits[i]
		switch {
		case !ok:
			out = append(out, data[s.Start:s.End]...)
		case e.Drop:
		default:
			if len(e.Payload) > MaxPayload {
				return nil, fmt.Errorf("%w: %d bytes in %s segment", ErrPayloadTooLarge, len(e.Payload), s.Kind)
			}
			n := len(e.Payload) + 2
			out = append(out, 0xFF, s.Marker, byte(n>>8), byte(n))
			out = append(out, e.Payload...)
		}
	}
	return append(out, data[l.Tail:]...), nil
}
