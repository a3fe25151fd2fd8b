// Package tiff decodes and rebuilds the TIFF container carried inside a
// JPEG APP1 Exif segment. It works on raw byte buffers: decoded entries are
// detached copies, and rebuilt containers are freshly allocated.
package tiff

import (
	"encoding/binary"
	"errors"
)

// ErrParse reports a TIFF header that cannot be decoded.
var ErrParse = errors.New("tiff: malformed header")

// HeaderSize is the size of the TIFF header (byte order, magic, IFD0 offset).
const HeaderSize = 8

// Tag IDs the engine handles structurally.
const (
	TagProcessingSoftware       = 0x000B
	TagJPEGInterchangeFormat    = 0x0201
	TagJPEGInterchangeFormatLen = 0x0202
	TagDateTime                 = 0x0132
	TagExifIFD                  = 0x8769
	TagGPSIFD                   = 0x8825
	TagDateTimeOriginal         = 0x9003
	TagDateTimeDigitized        = 0x9004
	TagMakerNote                = 0x927C
	TagInteropIFD               = 0xA005
)

// Field types (TIFF 6.0 section 2).
const (
	TypeByte      = 1
	TypeASCII     = 2
	TypeShort     = 3
	TypeLong      = 4
	TypeRational  = 5
	TypeSByte     = 6
	TypeUndefined = 7
	TypeSShort    = 8
	TypeSLong     = 9
	TypeSRational = 10
	TypeFloat     = 11
	TypeDouble    = 12
)

// TypeSize returns the byte size of one value unit of type t. Unknown types
// count as one byte.
func TypeSize(t uint16) int {
	switch t {
	case TypeShort, TypeSShort:
		return 2
	case TypeLong, TypeSLong, TypeFloat:
		return 4
	case TypeRational, TypeSRational, TypeDouble:
		return 8
	}
	return 1
}

// Header is the decoded 8-byte TIFF header.
type Header struct {
	Order binary.ByteOrder
	IFD0  uint32 // offset of IFD0, relative to the TIFF start
}

// ParseHeader decodes the TIFF header at buf[start:] without reading past end.
func ParseHeader(buf []byte, start, end int) (Header, error) {
	if start < 0 || end > len(buf) || start+HeaderSize > end {
		return Header{}, ErrParse
	}
	var order binary.ByteOrder
	switch string(buf[start : start+2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return Header{}, ErrParse
	}
	if order.Uint16(buf[start+2:]) != 42 {
		return Header{}, ErrParse
	}
	return Header{Order: order, IFD0: order.Uint32(buf[start+4:])}, nil
}

// orderMark returns the two header bytes declaring order.
func orderMark(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return "MM"
	}
	return "II"
}

// span resolves a TIFF-relative range to absolute buffer offsets, reporting
// false when any part of it lies at or beyond end.
func span(start int, rel uint32, n int, end int) (int, int, bool) {
	lo := uint64(start) + uint64(rel)
	hi := lo + uint64(n)
	if hi > uint64(end) {
		return 0, 0, false
	}
	return int(lo), int(hi), true
}
