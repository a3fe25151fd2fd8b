// Package timeshift moves EXIF capture datetimes by a fixed offset,
// patching the fixed-width ASCII fields in place.
package timeshift

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Layout is the EXIF datetime format: "YYYY:MM:DD HH:MM:SS".
const Layout = "2006:01:02 15:04:05"

// fieldPad is the padding trimmed from a stored datetime.
const fieldPad = " \t\r\n\x00"

// FieldSize is the on-disk size of a datetime field, including its NUL.
const FieldSize = len(Layout) + 1

var (
	// ErrOutOfRange is returned when a shifted datetime cannot be encoded.
	ErrOutOfRange = errors.New("datetime out of range after offset")
	// ErrNoDatetime is returned when a file carries no readable capture datetime.
	ErrNoDatetime = errors.New("no EXIF datetime")
	// ErrNothingPatched is returned when no datetime field could be rewritten.
	ErrNothingPatched = errors.New("no patchable EXIF datetime field")
)

var (
	minUnix = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxUnix = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// ApplyOffset shifts s by offset seconds. s must match Layout exactly; the
// result is reported only if it still encodes in the same 19 characters.
func ApplyOffset(s string, offset int64) (string, bool) {
	if !wellFormed(s) {
		return "", false
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", false
	}
	sec := t.Unix()
	// sec lies within [minUnix, maxUnix], so neither bound overflows.
	if offset < minUnix-sec || offset > maxUnix-sec {
		return "", false
	}
	return time.Unix(sec+offset, 0).UTC().Format(Layout), true
}

// wellFormed checks the fixed digit and separator positions of Layout;
// time.Parse alone accepts single-digit hours.
func wellFormed(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch i {
		case 4, 7, 13, 16:
			if s[i] != ':' {
				return false
			}
		case 10:
			if s[i] != ' ' {
				return false
			}
		default:
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
	}
	return true
}

// PatchAt rewrites the datetime field at buf[off:off+FieldSize] shifted by
// offset. Blank fields, unparseable values and results that do not fit are
// left untouched and reported as false. The length of buf never changes.
func PatchAt(buf []byte, off int, offset int64) bool {
	if off < 0 || off+FieldSize > len(buf) {
		return false
	}
	raw := buf[off : off+len(Layout)]
	if !utf8.Valid(raw) {
		return false
	}
	s := strings.Trim(string(raw), fieldPad)
	if s == "" {
		return false
	}
	shifted, ok := ApplyOffset(s, offset)
	if !ok {
		return false
	}
	copy(buf[off:], shifted)
	buf[off+len(Layout)] = 0
	return true
}
