package tiff

import (
	"encoding/binary"
)

const entrySize = 12

// Entry is one decoded IFD entry. Value holds a copy of the value bytes,
// inline or dereferenced from the overflow area.
type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Value []byte
	// Pos is the absolute offset of the value bytes in the source buffer,
	// or -1 when the value could not be located in full.
	Pos int
}

// ByteCount is the declared size of the value: unit size times count.
func (e Entry) ByteCount() int {
	return TypeSize(e.Type) * int(e.Count)
}

// Inline reports whether the value fits the 4-byte value field.
func (e Entry) Inline() bool {
	return e.ByteCount() <= 4
}

// Uint reads the first value as an unsigned integer: 16 bits for SHORT
// entries, 32 bits otherwise. Pointer and length tags are read this way.
// It returns false when the value is too short.
func (e Entry) Uint(order binary.ByteOrder) (uint32, bool) {
	switch {
	case e.Type == TypeShort && len(e.Value) >= 2:
		return uint32(order.Uint16(e.Value)), true
	case e.Type != TypeShort && len(e.Value) >= 4:
		return order.Uint32(e.Value), true
	}
	return 0, false
}

// DecodeIFD decodes the directory at the TIFF-relative offset rel. Reading
// never crosses end: a truncated table yields the entries decoded so far and
// a zero next-IFD offset.
func DecodeIFD(buf []byte, start int, order binary.ByteOrder, rel uint32, end int) ([]Entry, uint32) {
	if end > len(buf) {
		end = len(buf)
	}
	dir, _, ok := span(start, rel, 2, end)
	if !ok {
		return nil, 0
	}
	n := int(order.Uint16(buf[dir:]))
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		at := dir + 2 + i*entrySize
		if at+entrySize > end {
			return entries, 0
		}
		entries = append(entries, decodeEntry(buf, start, order, at, end))
	}
	link := dir + 2 + n*entrySize
	if link+4 > end {
		return entries, 0
	}
	return entries, order.Uint32(buf[link:])
}

func decodeEntry(buf []byte, start int, order binary.ByteOrder, at, end int) Entry {
	e := Entry{
		Tag:   order.Uint16(buf[at:]),
		Type:  order.Uint16(buf[at+2:]),
		Count: order.Uint32(buf[at+4:]),
		Pos:   -1,
	}
	n := e.ByteCount()
	if n <= 4 {
		e.Pos = at + 8
		e.Value = append([]byte(nil), buf[at+8:at+8+n]...)
		return e
	}
	off := order.Uint32(buf[at+8:])
	if lo, hi, ok := span(start, off, n, end); ok {
		e.Pos = lo
		e.Value = append([]byte(nil), buf[lo:hi]...)
		return e
	}
	// Clip to the segment; the rebuilder zero-fills the rest.
	if lo := uint64(start) + uint64(off); lo < uint64(end) {
		e.Value = append([]byte(nil), buf[lo:end]...)
	}
	return e
}

// find returns the first entry with the given tag.
func find(entries []Entry, tag uint16) (Entry, bool) {
	for _, e := range entries {
		if e.Tag == tag {
			return e, true
		}
	}
	return Entry{}, false
}

// Tree is the decoded directory graph of one TIFF container: IFD0, its Exif,
// GPS and Interoperability sub-IFDs, and IFD1.
type Tree struct {
	Order   binary.ByteOrder
	IFD0    []Entry
	Exif    []Entry
	GPS     []Entry
	Interop []Entry
	IFD1    []Entry

	buf        []byte
	start, end int
}

// Decode parses the header and every directory reachable from it. Only
// header errors are reported; damaged directories decode partially.
func Decode(buf []byte, start, end int) (*Tree, error) {
	h, err := ParseHeader(buf, start, end)
	if err != nil {
		return nil, err
	}
	t := &Tree{Order: h.Order, buf: buf, start: start, end: end}
	var next uint32
	t.IFD0, next = DecodeIFD(buf, start, h.Order, h.IFD0, end)
	t.Exif = t.sub(t.IFD0, TagExifIFD)
	t.GPS = t.sub(t.IFD0, TagGPSIFD)
	t.Interop = t.sub(t.Exif, TagInteropIFD)
	if next != 0 && next != h.IFD0 {
		t.IFD1, _ = DecodeIFD(buf, start, h.Order, next, end)
	}
	return t, nil
}

func (t *Tree) sub(parent []Entry, tag uint16) []Entry {
	e, ok := find(parent, tag)
	if !ok {
		return nil
	}
	off, ok := e.Uint(t.Order)
	if !ok || off == 0 {
		return nil
	}
	entries, _ := DecodeIFD(t.buf, t.start, t.Order, off, t.end)
	return entries
}

// Thumbnail returns a copy of the JPEG thumbnail located by IFD1's
// interchange-format offset and length, or nil when there is none.
func (t *Tree) Thumbnail() []byte {
	fe, ok := find(t.IFD1, TagJPEGInterchangeFormat)
	if !ok {
		return nil
	}
	le, ok := find(t.IFD1, TagJPEGInterchangeFormatLen)
	if !ok {
		return nil
	}
	off, ok1 := fe.Uint(t.Order)
	n, ok2 := le.Uint(t.Order)
	if !ok1 || !ok2 || n == 0 {
		return nil
	}
	lo, hi, ok := span(t.start, off, int(n), t.end)
	if !ok {
		return nil
	}
	return append([]byte(nil), t.buf[lo:hi]...)
}
