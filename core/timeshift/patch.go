package timeshift

import (
	"bytes"
	"strings"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/jpg"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/tiff"
	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"
)

// Field locates one patchable datetime field.
type Field struct {
	Tag uint16
	Pos int // absolute offset of the value in the JPEG buffer
}

// Fields returns the datetime fields of every Exif segment of data: DateTime
// in IFD0 and DateTimeOriginal/DateTimeDigitized in the Exif IFD. Only
// ASCII entries of exactly FieldSize bytes lying inside their segment
// qualify. Segments whose TIFF header is damaged are skipped.
func Fields(data []byte, l *jpg.Layout) []Field {
	var out []Field
	for _, s := range l.Find(jpg.KindExif) {
		t, err := tiff.Decode(data, s.TIFFStart(), s.End)
		if err != nil {
			continue
		}
		out = appendFields(out, t.IFD0, s.End, tiff.TagDateTime)
		out = appendFields(out, t.Exif, s.End, tiff.TagDateTimeOriginal, tiff.TagDateTimeDigitized)
	}
	return out
}

func appendFields(out []Field, entries []tiff.Entry, end int, tags ...uint16) []Field {
	for _, e := range entries {
		if !hasTag(tags, e.Tag) || e.Type != tiff.TypeASCII || int(e.Count) != FieldSize {
			continue
		}
		if e.Pos < 0 || e.Pos+FieldSize > end {
			continue
		}
		out = append(out, Field{Tag: e.Tag, Pos: e.Pos})
	}
	return out
}

func hasTag(tags []uint16, tag uint16) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PatchJPEG returns a copy of data with every datetime field shifted by
// offset, and the number of fields rewritten. The copy has the length of
// data. ErrNothingPatched is returned when no field could be rewritten.
func PatchJPEG(data []byte, offset int64, log *zap.Logger) ([]byte, int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	l, err := jpg.Walk(data)
	if err != nil {
		return nil, 0, err
	}
	out := append([]byte(nil), data...)
	patched := 0
	for _, f := range Fields(data, l) {
		if PatchAt(out, f.Pos, offset) {
			patched++
			continue
		}
		log.Debug("datetime field left unpatched",
			zap.Uint16("tag", f.Tag),
			zap.Int("pos", f.Pos))
	}
	if patched == 0 {
		return nil, 0, ErrNothingPatched
	}
	return out, patched, nil
}

// primaryFields lists the capture datetimes in order of preference.
var primaryFields = []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized, exif.DateTime}

// ReadPrimary returns the preferred capture datetime of the first Exif
// segment, trimmed of padding.
func ReadPrimary(data []byte) (string, error) {
	l, err := jpg.Walk(data)
	if err != nil {
		return "", err
	}
	segs := l.Find(jpg.KindExif)
	if len(segs) == 0 {
		return "", ErrNoDatetime
	}
	s := segs[0]
	// A damaged sub-IFD still yields the tags decoded before it.
	x, _ := exif.Decode(bytes.NewReader(data[s.TIFFStart():s.End]))
	if x == nil {
		return "", ErrNoDatetime
	}
	for _, name := range primaryFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		v, err := tag.StringVal()
		if err != nil {
			continue
		}
		if v = strings.Trim(v, fieldPad); v != "" {
			return v, nil
		}
	}
	return "", ErrNoDatetime
}
