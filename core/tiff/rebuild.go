package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTooLarge reports a value or directory that cannot fit a JPEG APP1 segment.
var ErrTooLarge = errors.New("tiff: rebuilt container too large")

// maxValueSize bounds a single overflow value; nothing larger fits an APP1 segment.
const maxValueSize = 0xFFFF

// Filter decides which entries survive a rebuild.
type Filter interface {
	RemoveIFD0(tag uint16) bool
	RemoveExif(tag uint16) bool
	RemoveThumbnail() bool
}

// Plan is the filtered directory graph that a rebuild emits.
type Plan struct {
	Order     binary.ByteOrder
	IFD0      []Entry
	Exif      []Entry
	GPS       []Entry
	Interop   []Entry
	IFD1      []Entry
	Thumbnail []byte

	// Stripped counts the IFD0 and Exif entries dropped by the filter, plus
	// every IFD1 entry when the thumbnail is removed. Dangling pointers the
	// filter did not select are dropped without being counted.
	Stripped int
}

// Plan applies f to the tree. Pointer tags are never matched directly: the
// Exif, GPS and Interoperability pointers survive only when the directory
// they point to survives non-empty, and IFD1 survives only together with a
// locatable JPEG thumbnail.
func (t *Tree) Plan(f Filter) Plan {
	p := Plan{Order: t.Order}
	if !f.RemoveThumbnail() {
		if thumb := t.Thumbnail(); thumb != nil {
			p.Thumbnail = thumb
			p.IFD1 = t.IFD1
		}
	}

	// Pointers to empty or undecodable directories cannot be relinked and
	// are dropped, but only count as stripped when f selects them.
	dangling, exifDangling := 0, 0
	for _, e := range t.Exif {
		if e.Tag == TagInteropIFD {
			if len(t.Interop) == 0 {
				if !f.RemoveExif(e.Tag) {
					exifDangling++
				}
				continue
			}
			if f.RemoveExif(e.Tag) {
				continue
			}
			p.Interop = t.Interop
		} else if f.RemoveExif(e.Tag) {
			continue
		}
		p.Exif = append(p.Exif, e)
	}
	dangling += exifDangling

	for _, e := range t.IFD0 {
		switch e.Tag {
		case TagExifIFD:
			if len(p.Exif) == 0 {
				if len(t.Exif) > 0 && exifDangling == len(t.Exif) {
					dangling++
				}
				continue
			}
		case TagGPSIFD:
			if len(t.GPS) == 0 {
				if !f.RemoveIFD0(e.Tag) {
					dangling++
				}
				continue
			}
			if f.RemoveIFD0(e.Tag) {
				continue
			}
			p.GPS = t.GPS
		default:
			if f.RemoveIFD0(e.Tag) {
				continue
			}
		}
		p.IFD0 = append(p.IFD0, e)
	}

	p.Stripped = len(t.IFD0) - len(p.IFD0) + len(t.Exif) - len(p.Exif) - dangling
	if f.RemoveThumbnail() {
		p.Stripped += len(t.IFD1)
	}
	return p
}

// Bytes emits the plan as a new TIFF container: header, IFD0, Exif IFD,
// Interoperability IFD, GPS IFD, then IFD1 followed by the thumbnail. Every
// directory starts on an even offset and every overflow value is followed
// by a pad byte when its length is odd.
func (p Plan) Bytes() ([]byte, error) {
	w := &writer{order: p.Order, buf: make([]byte, 0, 1024+len(p.Thumbnail))}
	w.buf = append(w.buf, orderMark(p.Order)...)
	w.u16(42)
	w.u32(HeaderSize)

	ifd0, err := w.dir(p.IFD0, TagExifIFD, TagGPSIFD)
	if err != nil {
		return nil, fmt.Errorf("IFD0: %w", err)
	}
	if len(p.Exif) > 0 {
		w.link(ifd0.slots[TagExifIFD])
		exif, err := w.dir(p.Exif, TagInteropIFD)
		if err != nil {
			return nil, fmt.Errorf("Exif IFD: %w", err)
		}
		if len(p.Interop) > 0 {
			w.link(exif.slots[TagInteropIFD])
			if _, err := w.dir(p.Interop); err != nil {
				return nil, fmt.Errorf("Interop IFD: %w", err)
			}
		}
	}
	if len(p.GPS) > 0 {
		w.link(ifd0.slots[TagGPSIFD])
		if _, err := w.dir(p.GPS); err != nil {
			return nil, fmt.Errorf("GPS IFD: %w", err)
		}
	}
	if p.Thumbnail != nil {
		w.link([]int{ifd0.next})
		ifd1, err := w.dir(p.IFD1, TagJPEGInterchangeFormat)
		if err != nil {
			return nil, fmt.Errorf("IFD1: %w", err)
		}
		w.link(ifd1.slots[TagJPEGInterchangeFormat])
		w.buf = append(w.buf, p.Thumbnail...)
	}
	return w.buf, nil
}

// Result is a rebuilt TIFF container.
type Result struct {
	TIFF     []byte
	Stripped int
}

// Rebuild decodes the TIFF container at buf[start:end], filters it through f
// and emits a new, self-contained container. buf is never modified.
func Rebuild(buf []byte, start, end int, f Filter) (Result, error) {
	t, err := Decode(buf, start, end)
	if err != nil {
		return Result{}, err
	}
	p := t.Plan(f)
	out, err := p.Bytes()
	if err != nil {
		return Result{}, err
	}
	return Result{TIFF: out, Stripped: p.Stripped}, nil
}

// writer is an append-only TIFF emitter. Offsets that are not known while
// a directory is written are left as zero placeholders and patched later.
type writer struct {
	order binary.ByteOrder
	buf   []byte
}

func (w *writer) u16(v uint16) {
	w.buf = append(w.buf, 0, 0)
	w.order.PutUint16(w.buf[len(w.buf)-2:], v)
}

func (w *writer) u32(v uint32) {
	w.buf = append(w.buf, 0, 0, 0, 0)
	w.order.PutUint32(w.buf[len(w.buf)-4:], v)
}

// link patches every placeholder at slots to point at the current end.
func (w *writer) link(slots []int) {
	here := uint32(len(w.buf))
	for _, pos := range slots {
		w.order.PutUint32(w.buf[pos:], here)
	}
}

// value writes exactly n bytes of e's value, zero-filling a clipped value.
func (w *writer) value(e Entry, n int) {
	v := e.Value
	if len(v) > n {
		v = v[:n]
	}
	w.buf = append(w.buf, v...)
	for i := len(v); i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

type dirSlots struct {
	slots map[uint16][]int // placeholder value fields by tag
	next  int              // next-IFD link field
}

// dir writes a directory and its overflow area at the current end. Entries
// tagged with one of pointers get a placeholder value field.
func (w *writer) dir(entries []Entry, pointers ...uint16) (dirSlots, error) {
	if len(entries) > 0xFFFF {
		return dirSlots{}, ErrTooLarge
	}
	d := dirSlots{slots: make(map[uint16][]int)}
	cursor := len(w.buf) + 2 + len(entries)*entrySize + 4
	w.u16(uint16(len(entries)))

	var overflow []Entry
	for _, e := range entries {
		w.u16(e.Tag)
		w.u16(e.Type)
		w.u32(e.Count)
		switch {
		case isPointer(e.Tag, pointers):
			d.slots[e.Tag] = append(d.slots[e.Tag], len(w.buf))
			w.u32(0)
		case e.Inline():
			w.value(e, 4)
		default:
			n := e.ByteCount()
			if n > maxValueSize {
				return dirSlots{}, fmt.Errorf("%w: tag %#04x holds %d bytes", ErrTooLarge, e.Tag, n)
			}
			w.u32(uint32(cursor))
			cursor += n
			if cursor%2 != 0 {
				cursor++
			}
			overflow = append(overflow, e)
		}
	}
	d.next = len(w.buf)
	w.u32(0)

	for _, e := range overflow {
		w.value(e, e.ByteCount())
		if len(w.buf)%2 != 0 {
			w.buf = append(w.buf, 0)
		}
	}
	return d, nil
}

func isPointer(tag uint16, pointers []uint16) bool {
	for _, p := range pointers {
		if tag == p {
			return true
		}
	}
	return false
}
