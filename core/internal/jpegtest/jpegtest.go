// Package jpegtest builds synthetic JPEG and TIFF fixtures for tests.
//
// Directories are laid out as IFD0, GPS, Exif, Interop, IFD1 and then the
// thumbnail, with pointer entries added automatically for every non-empty
// sub-directory. Entries are sorted by tag.
package jpegtest

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"sort"
)

// Entry is one directory entry before encoding.
type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Raw   []byte   // BYTE, ASCII and UNDEFINED values
	Ints  []uint32 // SHORT, LONG and RATIONAL values
}

// ASCII returns a NUL-terminated string entry.
func ASCII(tag uint16, s string) Entry {
	return Entry{Tag: tag, Type: 2, Count: uint32(len(s) + 1), Raw: append([]byte(s), 0)}
}

// Short returns a SHORT entry.
func Short(tag uint16, v ...uint16) Entry {
	e := Entry{Tag: tag, Type: 3, Count: uint32(len(v))}
	for _, x := range v {
		e.Ints = append(e.Ints, uint32(x))
	}
	return e
}

// Long returns a LONG entry.
func Long(tag uint16, v ...uint32) Entry {
	return Entry{Tag: tag, Type: 4, Count: uint32(len(v)), Ints: v}
}

// Rational returns a single RATIONAL entry.
func Rational(tag uint16, num, den uint32) Entry {
	return Entry{Tag: tag, Type: 5, Count: 1, Ints: []uint32{num, den}}
}

// Undefined returns an UNDEFINED entry holding b.
func Undefined(tag uint16, b []byte) Entry {
	return Entry{Tag: tag, Type: 7, Count: uint32(len(b)), Raw: b}
}

func (e Entry) encode(order binary.ByteOrder) []byte {
	if e.Ints == nil {
		return e.Raw
	}
	var out []byte
	for _, v := range e.Ints {
		if e.Type == 3 {
			out = put16(out, order, uint16(v))
		} else {
			out = put32(out, order, v)
		}
	}
	return out
}

func put16(b []byte, order binary.ByteOrder, v uint16) []byte {
	var x [2]byte
	order.PutUint16(x[:], v)
	return append(b, x[:]...)
}

func put32(b []byte, order binary.ByteOrder, v uint32) []byte {
	var x [4]byte
	order.PutUint32(x[:], v)
	return append(b, x[:]...)
}

// Structural tags the builder manages itself.
const (
	tagExifIFD    = 0x8769
	tagGPSIFD     = 0x8825
	tagInteropIFD = 0xA005
	tagThumbOff   = 0x0201
	tagThumbLen   = 0x0202
)

// TIFF describes a TIFF container.
type TIFF struct {
	Order     binary.ByteOrder // defaults to little endian
	IFD0      []Entry
	Exif      []Entry
	GPS       []Entry
	Interop   []Entry
	IFD1      []Entry
	Thumbnail []byte
}

type dir struct {
	entries []Entry
	at      uint32
}

func dirSize(entries []Entry) uint32 {
	n := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if l := uint32(len(e.encode(binary.LittleEndian))); l > 4 {
			n += l + l%2
		}
	}
	return n
}

func withPointer(entries []Entry, tag uint16) []Entry {
	out := append([]Entry(nil), entries...)
	return append(out, Long(tag, 0))
}

func sorted(entries []Entry) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Bytes encodes the container.
func (t TIFF) Bytes() []byte {
	order := t.Order
	if order == nil {
		order = binary.LittleEndian
	}
	ifd0, exif, ifd1 := t.IFD0, t.Exif, t.IFD1
	if len(t.Interop) > 0 {
		exif = withPointer(exif, tagInteropIFD)
	}
	if len(exif) > 0 {
		ifd0 = withPointer(ifd0, tagExifIFD)
	}
	if len(t.GPS) > 0 {
		ifd0 = withPointer(ifd0, tagGPSIFD)
	}
	if t.Thumbnail != nil {
		ifd1 = append(withPointer(ifd1, tagThumbOff), Long(tagThumbLen, uint32(len(t.Thumbnail))))
	}

	dirs := []*dir{
		{entries: sorted(ifd0)},
		{entries: sorted(t.GPS)},
		{entries: sorted(exif)},
		{entries: sorted(t.Interop)},
		{entries: sorted(ifd1)},
	}
	at := uint32(8)
	for _, d := range dirs {
		if len(d.entries) == 0 {
			continue
		}
		d.at = at
		at += dirSize(d.entries)
	}
	thumbAt := at

	ptr := map[uint16]uint32{
		tagGPSIFD:     dirs[1].at,
		tagExifIFD:    dirs[2].at,
		tagInteropIFD: dirs[3].at,
		tagThumbOff:   thumbAt,
	}

	out := make([]byte, 0, int(at)+len(t.Thumbnail))
	if order == binary.BigEndian {
		out = append(out, 'M', 'M')
	} else {
		out = append(out, 'I', 'I')
	}
	out = put16(out, order, 42)
	out = put32(out, order, 8)

	for i, d := range dirs {
		if len(d.entries) == 0 {
			continue
		}
		var next uint32
		if i == 0 && dirs[4].at != 0 {
			next = dirs[4].at
		}
		out = appendDir(out, d, next, ptr, order)
	}
	return append(out, t.Thumbnail...)
}

func appendDir(out []byte, d *dir, next uint32, ptr map[uint16]uint32, order binary.ByteOrder) []byte {
	overflow := d.at + uint32(2+12*len(d.entries)+4)
	var data []byte
	out = put16(out, order, uint16(len(d.entries)))
	for _, e := range d.entries {
		// Pointers to absent directories keep the caller's value.
		if p, ok := ptr[e.Tag]; ok && p != 0 {
			e = Long(e.Tag, p)
		}
		v := e.encode(order)
		out = put16(out, order, e.Tag)
		out = put16(out, order, e.Type)
		out = put32(out, order, e.Count)
		if len(v) <= 4 {
			field := make([]byte, 4)
			copy(field, v)
			out = append(out, field...)
			continue
		}
		out = put32(out, order, overflow+uint32(len(data)))
		data = append(data, v...)
		if len(data)%2 != 0 {
			data = append(data, 0)
		}
	}
	out = put32(out, order, next)
	return append(out, data...)
}

// Segment is one JPEG marker segment.
type Segment struct {
	Marker  byte
	Payload []byte
}

// APP0 returns a minimal JFIF segment.
func APP0() Segment {
	return Segment{Marker: 0xE0, Payload: []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")}
}

// Exif wraps a TIFF container in an APP1 Exif segment.
func Exif(tiff []byte) Segment {
	return Segment{Marker: 0xE1, Payload: append([]byte("Exif\x00\x00"), tiff...)}
}

// XMP returns an APP1 XMP segment carrying packet.
func XMP(packet string) Segment {
	return Segment{Marker: 0xE1, Payload: append([]byte("http://ns.adobe.com/xap/1.0/\x00"), packet...)}
}

// IPTC returns an APP13 segment with one IPTC-NAA resource holding the
// given record 2 datasets.
func IPTC(datasets map[byte]string) Segment {
	keys := make([]int, 0, len(datasets))
	for k := range datasets {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	var rec []byte
	for _, k := range keys {
		v := datasets[byte(k)]
		rec = append(rec, 0x1C, 0x02, byte(k))
		rec = binary.BigEndian.AppendUint16(rec, uint16(len(v)))
		rec = append(rec, v...)
	}
	p := []byte("Photoshop 3.0\x00")
	p = append(p, "8BIM"...)
	p = binary.BigEndian.AppendUint16(p, 0x0404)
	p = append(p, 0, 0) // empty Pascal name, padded
	p = binary.BigEndian.AppendUint32(p, uint32(len(rec)))
	p = append(p, rec...)
	if len(rec)%2 != 0 {
		p = append(p, 0)
	}
	return Segment{Marker: 0xED, Payload: p}
}

// ScanData is the entropy-coded tail appended after SOS by JPEG.
var ScanData = []byte{0x12, 0x34, 0xFF, 0x00, 0x56, 0xFF, 0xD0, 0x78}

// JPEG assembles SOI, the segments, a baseline SOS header, ScanData and EOI.
func JPEG(segs ...Segment) []byte {
	out := []byte{0xFF, 0xD8}
	for _, s := range segs {
		n := len(s.Payload) + 2
		out = append(out, 0xFF, s.Marker, byte(n>>8), byte(n))
		out = append(out, s.Payload...)
	}
	out = append(out, 0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3F, 0x00)
	out = append(out, ScanData...)
	return append(out, 0xFF, 0xD9)
}

// Thumbnail is a small JPEG usable as an IFD1 thumbnail.
func Thumbnail() []byte {
	return JPEG(APP0())
}

// Sample returns a camera-like container: IFD0 with camera, software,
// author and datetime tags, an Exif IFD with shooting settings, a lens
// model, a user comment, a maker note and the pinned dimension tags, a GPS
// IFD, an Interop IFD and a thumbnail.
func Sample(order binary.ByteOrder) TIFF {
	return TIFF{
		Order: order,
		IFD0: []Entry{
			ASCII(0x010F, "Canon"),
			ASCII(0x0110, "Canon EOS 5D Mark IV"),
			Short(0x0112, 1),
			Rational(0x011A, 72, 1),
			Rational(0x011B, 72, 1),
			Short(0x0128, 2),
			ASCII(0x0131, "Adobe Lightroom"),
			ASCII(0x0132, "2023:06:15 10:30:00"),
			ASCII(0x013B, "Jane Doe"),
			Short(0x0213, 1),
		},
		Exif: []Entry{
			Rational(0x829A, 1, 250),
			Rational(0x829D, 28, 10),
			Short(0x8827, 400),
			ASCII(0x9003, "2023:06:15 10:30:00"),
			ASCII(0x9004, "2023:06:15 10:30:00"),
			Undefined(0x9286, []byte("ASCII\x00\x00\x00hello")),
			Undefined(0x927C, []byte{1, 2, 3, 4, 5, 6, 7}),
			Short(0xA001, 1),
			Long(0xA002, 6000),
			Long(0xA003, 4000),
			ASCII(0xA434, "EF24-70mm f/2.8L II USM"),
		},
		GPS: []Entry{
			{Tag: 0x0000, Type: 1, Count: 4, Raw: []byte{2, 3, 0, 0}},
			ASCII(0x0001, "N"),
			{Tag: 0x0002, Type: 5, Count: 3, Ints: []uint32{35, 1, 41, 1, 0, 1}},
			ASCII(0x0003, "E"),
			{Tag: 0x0004, Type: 5, Count: 3, Ints: []uint32{139, 1, 41, 1, 0, 1}},
		},
		Interop: []Entry{
			ASCII(0x0001, "R98"),
			Undefined(0x0002, []byte("0100")),
		},
		IFD1: []Entry{
			Short(0x0103, 6),
			Rational(0x011A, 72, 1),
			Rational(0x011B, 72, 1),
			Short(0x0128, 2),
		},
		Thumbnail: Thumbnail(),
	}
}

// Store is an in-memory file store for batch tests.
type Store struct {
	Files    map[string][]byte
	Writes   []string
	WriteErr error
}

// NewStore returns a store holding a copy of files.
func NewStore(files map[string][]byte) *Store {
	s := &Store{Files: make(map[string][]byte)}
	for k, v := range files {
		s.Files[k] = append([]byte(nil), v...)
	}
	return s
}

// ReadFile returns a copy of the stored content.
func (s *Store) ReadFile(path string) ([]byte, error) {
	b, ok := s.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), b...), nil
}

// WriteFile stores data unless WriteErr is set.
func (s *Store) WriteFile(path string, data []byte) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	if _, ok := s.Files[path]; !ok {
		return errors.New("write to unknown file " + path)
	}
	s.Files[path] = append([]byte(nil), data...)
	s.Writes = append(s.Writes, path)
	return nil
}
