// Package strip scans JPEG files for removable metadata and rewrites them
// with the categories selected by a policy removed.
package strip

import (
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/classify"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/jpg"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/tiff"
	"go.uber.org/zap"
)

// Report is the outcome of a scan.
type Report struct {
	// Found holds every category present in the file, selected or not.
	Found     core.Categories
	MakerNote bool
	HasExif   bool // at least one Exif segment with a decodable TIFF header
	HasIPTC   bool
	HasXMP    bool
	// Removable is the number of tags a strip with the scanned policy
	// would remove.
	Removable int
}

// HasMetadata reports whether the file carries any metadata the engine handles.
func (r Report) HasMetadata() bool {
	return r.HasExif || r.HasIPTC || r.HasXMP
}

// Affected lists the labels of the found categories that p removes, in
// display order.
func (r Report) Affected(p classify.Policy) []string {
	sel := p.Categories()
	var out []string
	for _, c := range core.RequestCategories {
		if sel.Has(c) && r.Found.Has(c) {
			out = append(out, c.Label())
		}
	}
	if p.FullClean() && r.MakerNote {
		out = append(out, core.CatMakerNote.Label())
	}
	return out
}

// Scan decodes the metadata segments of data without modifying anything.
func Scan(data []byte, p classify.Policy) (Report, error) {
	l, err := jpg.Walk(data)
	if err != nil {
		return Report{}, err
	}
	var r Report
	for _, s := range l.Segments {
		switch s.Kind {
		case jpg.KindIPTC:
			r.HasIPTC = true
			r.Found.IPTC = true
		case jpg.KindXMP:
			r.HasXMP = true
			r.Found.XMP = true
		case jpg.KindExif:
			t, err := tiff.Decode(data, s.TIFFStart(), s.End)
			if err != nil {
				continue
			}
			r.HasExif = true
			r.scanTree(t)
			r.Removable += t.Plan(p).Stripped
		}
	}
	return r, nil
}

func (r *Report) scanTree(t *tiff.Tree) {
	for _, e := range t.IFD0 {
		if c, ok := classify.Classify(classify.IFD0, e.Tag); ok {
			r.Found.Set(c)
		}
	}
	for _, e := range t.Exif {
		c, ok := classify.Classify(classify.ExifIFD, e.Tag)
		switch {
		case !ok:
		case c == core.CatMakerNote:
			r.MakerNote = true
		default:
			r.Found.Set(c)
		}
	}
	if len(t.IFD1) > 0 {
		r.Found.Thumbnail = true
	}
}

// Result counts what a strip removed.
type Result struct {
	StrippedTags int
	StrippedIPTC bool
	StrippedXMP  bool
	// SegmentErrors counts Exif segments left untouched because they could
	// not be decoded or rebuilt.
	SegmentErrors int
}

// Changed reports whether anything was removed.
func (r Result) Changed() bool {
	return r.StrippedTags > 0 || r.StrippedIPTC || r.StrippedXMP
}

// StripJPEG returns a copy of data with the metadata selected by p removed.
// Exif segments are rebuilt only when the policy removes at least one of
// their tags; every other segment and the image data are copied unchanged.
// core.ErrNoMetadata is returned when nothing was removed.
func StripJPEG(data []byte, p classify.Policy, log *zap.Logger) ([]byte, Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	l, err := jpg.Walk(data)
	if err != nil {
		return nil, Result{}, err
	}
	sel := p.Categories()
	var res Result
	edits := make(map[int]jpg.Edit)
	for i, s := range l.Segments {
		switch s.Kind {
		case jpg.KindXMP:
			if sel.XMP {
				edits[i] = jpg.Edit{Drop: true}
				res.StrippedXMP = true
			}
		case jpg.KindIPTC:
			if sel.IPTC {
				edits[i] = jpg.Edit{Drop: true}
				res.StrippedIPTC = true
			}
		case jpg.KindExif:
			payload, n, err := rebuildSegment(data, s, p)
			if err != nil {
				res.SegmentErrors++
				log.Warn("exif segment left untouched",
					zap.Int("offset", s.Start),
					zap.Error(err))
				continue
			}
			if n == 0 {
				continue
			}
			edits[i] = jpg.Edit{Payload: payload}
			res.StrippedTags += n
		}
	}
	if !res.Changed() {
		return nil, res, core.ErrNoMetadata
	}
	out, err := jpg.Assemble(data, l, edits)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

func rebuildSegment(data []byte, s jpg.Segment, p classify.Policy) ([]byte, int, error) {
	r, err := tiff.Rebuild(data, s.TIFFStart(), s.End, p)
	if err != nil {
		return nil, 0, err
	}
	if r.Stripped == 0 {
		return nil, 0, nil
	}
	payload := make([]byte, 0, len(jpg.ExifPrefix)+len(r.TIFF))
	payload = append(payload, jpg.ExifPrefix...)
	payload = append(payload, r.TIFF...)
	if len(payload) > jpg.MaxPayload {
		return nil, 0, jpg.ErrPayloadTooLarge
	}
	return payload, r.Stripped, nil
}
