package tiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	dexif "github.com/dsoprea/go-exif/v3"
	"github.com/rwcarlsen/goexif/exif"
	gtiff "github.com/rwcarlsen/goexif/tiff"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/internal/jpegtest"
)

// tagFilter removes the listed tags.
type tagFilter struct {
	ifd0, exif map[uint16]bool
	thumb      bool
}

func (f tagFilter) RemoveIFD0(tag uint16) bool { return f.ifd0[tag] }
func (f tagFilter) RemoveExif(tag uint16) bool { return f.exif[tag] }
func (f tagFilter) RemoveThumbnail() bool      { return f.thumb }

type removeAllExif struct{ tagFilter }

func (removeAllExif) RemoveExif(uint16) bool { return true }

func rebuild(t *testing.T, src []byte, f Filter) (Result, *Tree) {
	t.Helper()
	res, err := Rebuild(src, 0, len(src), f)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := Decode(res.TIFF, 0, len(res.TIFF))
	if err != nil {
		t.Fatal(err)
	}
	return res, tree
}

func isLink(tag uint16) bool {
	switch tag {
	case TagExifIFD, TagGPSIFD, TagInteropIFD, TagJPEGInterchangeFormat:
		return true
	}
	return false
}

func sameEntries(t *testing.T, dir string, got, want []Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s: %d entries, want %d", dir, len(got), len(want))
		return
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Tag != w.Tag || g.Type != w.Type || g.Count != w.Count {
			t.Errorf("%s[%d]: got %#04x/%d/%d, want %#04x/%d/%d", dir, i, g.Tag, g.Type, g.Count, w.Tag, w.Type, w.Count)
			continue
		}
		if !isLink(w.Tag) && !bytes.Equal(g.Value, w.Value) {
			t.Errorf("%s tag %#04x: value %x, want %x", dir, w.Tag, g.Value, w.Value)
		}
	}
}

func TestRebuildKeepAll(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			src := jpegtest.Sample(order).Bytes()
			orig, err := Decode(src, 0, len(src))
			if err != nil {
				t.Fatal(err)
			}
			res, tree := rebuild(t, src, tagFilter{})
			if res.Stripped != 0 {
				t.Errorf("stripped %d tags, want 0", res.Stripped)
			}
			if string(res.TIFF[:2]) != orderMark(order) {
				t.Errorf("header %q, want %q", res.TIFF[:2], orderMark(order))
			}
			sameEntries(t, "IFD0", tree.IFD0, orig.IFD0)
			sameEntries(t, "Exif", tree.Exif, orig.Exif)
			sameEntries(t, "GPS", tree.GPS, orig.GPS)
			sameEntries(t, "Interop", tree.Interop, orig.Interop)
			sameEntries(t, "IFD1", tree.IFD1, orig.IFD1)
			if !bytes.Equal(tree.Thumbnail(), jpegtest.Thumbnail()) {
				t.Error("thumbnail not preserved")
			}
		})
	}
}

func TestRebuildAlignment(t *testing.T) {
	src := jpegtest.Sample(binary.LittleEndian).Bytes()
	res, tree := rebuild(t, src, tagFilter{})
	for name, dir := range map[string][]Entry{
		"IFD0": tree.IFD0, "Exif": tree.Exif, "GPS": tree.GPS,
		"Interop": tree.Interop, "IFD1": tree.IFD1,
	} {
		for _, e := range dir {
			if isLink(e.Tag) {
				if v, _ := e.Uint(tree.Order); v%2 != 0 {
					t.Errorf("%s tag %#04x links to odd offset %d", name, e.Tag, v)
				}
				continue
			}
			if !e.Inline() && e.Pos%2 != 0 {
				t.Errorf("%s tag %#04x value at odd offset %d", name, e.Tag, e.Pos)
			}
		}
	}
	if _, err := gtiff.Decode(bytes.NewReader(res.TIFF)); err != nil {
		t.Errorf("goexif rejects rebuilt container: %v", err)
	}
}

func TestRebuildStripGPS(t *testing.T) {
	src := jpegtest.Sample(binary.BigEndian).Bytes()
	res, tree := rebuild(t, src, tagFilter{ifd0: map[uint16]bool{TagGPSIFD: true}})
	if res.Stripped != 1 {
		t.Errorf("stripped %d tags, want 1", res.Stripped)
	}
	if _, ok := find(tree.IFD0, TagGPSIFD); ok {
		t.Error("GPS pointer survived")
	}
	if tree.GPS != nil {
		t.Error("GPS directory reachable")
	}

	x, err := exif.Decode(bytes.NewReader(res.TIFF))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := x.Get(exif.GPSLatitude); err == nil {
		t.Error("goexif still finds GPSLatitude")
	}
	mk, err := x.Get(exif.Make)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := mk.StringVal(); s != "Canon" {
		t.Errorf("Make = %q", s)
	}
	thumb, err := x.JpegThumbnail()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(thumb, jpegtest.Thumbnail()) {
		t.Error("goexif thumbnail mismatch")
	}

	tags, _, err := dexif.GetFlatExifData(res.TIFF, nil)
	if err != nil {
		t.Fatal(err)
	}
	var camera string
	for _, tag := range tags {
		if strings.Contains(tag.IfdPath, "GPS") {
			t.Errorf("GPS tag %#04x survived", tag.TagId)
		}
		if tag.IfdPath == "IFD" && tag.TagId == 0x010F {
			camera = tag.Formatted
		}
	}
	if camera != "Canon" {
		t.Errorf("Make = %q", camera)
	}
}

func TestRebuildEmptyExifDropsPointer(t *testing.T) {
	src := jpegtest.TIFF{
		IFD0: []jpegtest.Entry{jpegtest.ASCII(0x010F, "Canon")},
		Exif: []jpegtest.Entry{
			jpegtest.Rational(0x829A, 1, 250),
			jpegtest.ASCII(TagDateTimeOriginal, "2023:06:15 10:30:00"),
		},
	}.Bytes()
	res, tree := rebuild(t, src, removeAllExif{})
	if res.Stripped != 3 {
		t.Errorf("stripped %d tags, want 3", res.Stripped)
	}
	if _, ok := find(tree.IFD0, TagExifIFD); ok {
		t.Error("Exif pointer survived an empty Exif IFD")
	}
	if len(tree.IFD0) != 1 {
		t.Errorf("IFD0 has %d entries, want 1", len(tree.IFD0))
	}
}

func TestRebuildDropInterop(t *testing.T) {
	src := jpegtest.Sample(binary.LittleEndian).Bytes()
	res, tree := rebuild(t, src, tagFilter{exif: map[uint16]bool{TagInteropIFD: true}})
	if res.Stripped != 1 {
		t.Errorf("stripped %d tags, want 1", res.Stripped)
	}
	if tree.Interop != nil {
		t.Error("Interop directory reachable")
	}
	if len(tree.GPS) != 5 {
		t.Errorf("GPS has %d entries, want 5", len(tree.GPS))
	}
}

func TestRebuildDanglingPointers(t *testing.T) {
	const nowhere = 0x7FFF0000
	testCases := []struct {
		desc     string
		src      jpegtest.TIFF
		f        Filter
		stripped int
		ifd0     int
	}{
		{
			desc: "gps kept by policy",
			src: jpegtest.TIFF{IFD0: []jpegtest.Entry{
				jpegtest.Short(0x0112, 1),
				jpegtest.Long(TagGPSIFD, nowhere),
			}},
			f:    tagFilter{ifd0: map[uint16]bool{0x010E: true}},
			ifd0: 1,
		},
		{
			desc: "gps removed by policy",
			src: jpegtest.TIFF{IFD0: []jpegtest.Entry{
				jpegtest.Short(0x0112, 1),
				jpegtest.Long(TagGPSIFD, nowhere),
			}},
			f:        tagFilter{ifd0: map[uint16]bool{TagGPSIFD: true}},
			stripped: 1,
			ifd0:     1,
		},
		{
			desc: "interop beside other exif tags",
			src: jpegtest.TIFF{
				IFD0: []jpegtest.Entry{jpegtest.Short(0x0112, 1)},
				Exif: []jpegtest.Entry{
					jpegtest.Short(0x8827, 400),
					jpegtest.Long(TagInteropIFD, nowhere),
				},
			},
			f:    tagFilter{},
			ifd0: 2,
		},
		{
			desc: "interop alone in exif",
			src: jpegtest.TIFF{
				IFD0: []jpegtest.Entry{jpegtest.Short(0x0112, 1)},
				Exif: []jpegtest.Entry{jpegtest.Long(TagInteropIFD, nowhere)},
			},
			f:    tagFilter{},
			ifd0: 1,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			res, tree := rebuild(t, tC.src.Bytes(), tC.f)
			if res.Stripped != tC.stripped {
				t.Errorf("stripped %d tags, want %d", res.Stripped, tC.stripped)
			}
			if len(tree.IFD0) != tC.ifd0 {
				t.Errorf("IFD0 has %d entries, want %d", len(tree.IFD0), tC.ifd0)
			}
			if _, ok := find(tree.IFD0, TagGPSIFD); ok {
				t.Error("dangling GPS pointer survived")
			}
			if _, ok := find(tree.Exif, TagInteropIFD); ok {
				t.Error("dangling Interop pointer survived")
			}
		})
	}
}

func TestRebuildRemoveThumbnail(t *testing.T) {
	src := jpegtest.Sample(binary.LittleEndian).Bytes()
	res, tree := rebuild(t, src, tagFilter{thumb: true})
	if res.Stripped != 6 {
		t.Errorf("stripped %d tags, want 6", res.Stripped)
	}
	if tree.IFD1 != nil || tree.Thumbnail() != nil {
		t.Error("IFD1 survived")
	}
	if bytes.Contains(res.TIFF, jpegtest.Thumbnail()) {
		t.Error("thumbnail bytes survived")
	}
	x, err := exif.Decode(bytes.NewReader(res.TIFF))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := x.JpegThumbnail(); err == nil {
		t.Error("goexif still finds a thumbnail")
	}
}

func TestRebuildZeroFillsClippedValue(t *testing.T) {
	src := jpegtest.TIFF{IFD0: []jpegtest.Entry{
		jpegtest.ASCII(0x010F, "Canon EOS"),
	}}.Bytes()
	res, err := Rebuild(src, 0, len(src)-4, tagFilter{})
	if err != nil {
		t.Fatal(err)
	}
	tree, err := Decode(res.TIFF, 0, len(res.TIFF))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(tree.IFD0[0].Value); got != "Canon \x00\x00\x00\x00" {
		t.Errorf("value %q", got)
	}
}

func TestRebuildTooLarge(t *testing.T) {
	src := jpegtest.TIFF{
		IFD0: []jpegtest.Entry{jpegtest.ASCII(0x010F, "Canon")},
		Exif: []jpegtest.Entry{jpegtest.Undefined(TagMakerNote, make([]byte, 70000))},
	}.Bytes()
	_, err := Rebuild(src, 0, len(src), tagFilter{})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
}

func TestRebuildBadHeader(t *testing.T) {
	src := []byte("XX\x2a\x00\x08\x00\x00\x00")
	if _, err := Rebuild(src, 0, len(src), tagFilter{}); !errors.Is(err, ErrParse) {
		t.Errorf("got %v, want ErrParse", err)
	}
}

func TestRebuildDoesNotModifySource(t *testing.T) {
	src := jpegtest.Sample(binary.LittleEndian).Bytes()
	keep := append([]byte(nil), src...)
	rebuild(t, src, tagFilter{thumb: true, ifd0: map[uint16]bool{0x010F: true}})
	if !bytes.Equal(src, keep) {
		t.Error("source buffer modified")
	}
}
