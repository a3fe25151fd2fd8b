package jpg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/internal/jpegtest"
)

func fieldMap(m *core.Metadata) map[string]core.MetaField {
	out := make(map[string]core.MetaField)
	for _, f := range m.Fields {
		out[f.Key] = f
	}
	return out
}

func TestView(t *testing.T) {
	m, err := View("a.jpg", sampleJPEG())
	if err != nil {
		t.Fatal(err)
	}
	if m.FilePath != "a.jpg" || m.Format != "JPEG" {
		t.Errorf("got %q/%q", m.FilePath, m.Format)
	}
	fields := fieldMap(m)
	testCases := []struct {
		key, value, category string
	}{
		{"Make", "Canon", "EXIF"},
		{"Model", "Canon EOS 5D Mark IV", "EXIF"},
		{"Thumbnail", fmt.Sprintf("%d bytes", len(jpegtest.Thumbnail())), "EXIF"},
		{"xmp:CreatorTool", "Lightroom", "XMP"},
		{"xmp:Label", "Red", "XMP"},
		{"Keywords", "beach", "IPTC"},
		{"Byline", "Jane Doe", "IPTC"},
		{"CopyrightNotice", "(c) 2023", "IPTC"},
	}
	for _, tC := range testCases {
		t.Run(tC.key, func(t *testing.T) {
			f, ok := fields[tC.key]
			if !ok {
				t.Fatalf("field %q missing", tC.key)
			}
			if f.Value != tC.value || f.Category != tC.category {
				t.Errorf("got %q (%s), want %q (%s)", f.Value, f.Category, tC.value, tC.category)
			}
		})
	}
}

func TestViewNoMetadata(t *testing.T) {
	m, err := View("plain.jpg", jpegtest.JPEG(jpegtest.APP0()))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Fields) != 0 {
		t.Errorf("got %d fields, want none", len(m.Fields))
	}
}

func TestViewDamagedExif(t *testing.T) {
	data := jpegtest.JPEG(jpegtest.Exif([]byte("XX garbage")), jpegtest.XMP(samplePacket))
	m, err := View("broken.jpg", data)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range m.Fields {
		if f.Category == "EXIF" {
			t.Errorf("unexpected EXIF field %q", f.Key)
		}
	}
	if _, ok := fieldMap(m)["xmp:Label"]; !ok {
		t.Error("XMP skipped after a damaged Exif segment")
	}
}

func TestViewNotJPEG(t *testing.T) {
	if _, err := View("x.png", []byte("\x89PNG\r\n\x1a\n")); !errors.Is(err, core.ErrNotJPEG) {
		t.Errorf("got %v, want ErrNotJPEG", err)
	}
}
