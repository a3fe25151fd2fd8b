package jpg

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// View collects the EXIF, XMP and IPTC fields of a JPEG buffer for display.
// A missing or undecodable block is not an error; only a buffer without
// the SOI marker is rejected.
func View(path string, data []byte) (*core.Metadata, error) {
	l, err := Walk(data)
	if err != nil {
		return nil, err
	}
	m := &core.Metadata{FilePath: path, Format: "JPEG"}

	for _, s := range l.Find(KindExif) {
		x, err := exif.Decode(bytes.NewReader(data[s.TIFFStart():s.End]))
		if err != nil {
			continue
		}
		x.Walk(exifWalker{m: m})
		if thumb, err := x.JpegThumbnail(); err == nil {
			m.Fields = append(m.Fields, core.MetaField{
				Key:      "Thumbnail",
				Value:    fmt.Sprintf("%d bytes", len(thumb)),
				Category: "EXIF",
			})
		}
		break
	}
	for _, s := range l.Find(KindXMP) {
		parseXMPInto(data[s.Payload()+len(XMPPrefix):s.End], m)
	}
	for _, s := range l.Find(KindIPTC) {
		parseIPTCInto(data[s.Payload()+len(IPTCPrefix):s.End], m)
	}
	return m, nil
}

type exifWalker struct {
	m *core.Metadata
}

func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	val := tag.String()
	// goexif quotes string values
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	w.m.Fields = append(w.m.Fields, core.MetaField{
		Key:      string(name),
		Value:    val,
		Category: "EXIF",
	})
	return nil
}

func parseXMPInto(data []byte, m *core.Metadata) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var current string
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" || attr.Value == "" {
					continue
				}
				m.Fields = append(m.Fields, core.MetaField{
					Key:      "xmp:" + attr.Name.Local,
					Value:    attr.Value,
					Category: "XMP",
				})
			}
		case xml.EndElement:
			current = ""
		case xml.CharData:
			val := strings.TrimSpace(string(t))
			if val == "" || current == "" || current == "xmpmeta" || current == "RDF" {
				continue
			}
			m.Fields = append(m.Fields, core.MetaField{
				Key:      "xmp:" + current,
				Value:    val,
				Category: "XMP",
			})
		}
	}
}

// iptcFieldNames maps IPTC-NAA record 2 dataset numbers to field names.
var iptcFieldNames = map[byte]string{
	5:   "ObjectName",
	15:  "Category",
	20:  "SupplementalCategory",
	25:  "Keywords",
	40:  "SpecialInstructions",
	55:  "DateCreated",
	60:  "TimeCreated",
	62:  "DigitalCreationDate",
	80:  "Byline",
	85:  "BylineTitle",
	90:  "City",
	95:  "Province",
	101: "Country",
	103: "OriginalTransmissionReference",
	105: "Headline",
	110: "Credit",
	115: "Source",
	116: "CopyrightNotice",
	118: "Contact",
	120: "Caption",
	122: "CaptionWriter",
}

// iptcResource is the Photoshop image resource ID holding IPTC-NAA records.
const iptcResource = 0x0404

var resourceSig = []byte("8BIM")

// parseIPTCInto walks the 8BIM image resource blocks of an APP13 payload
// and decodes the IPTC record among them.
func parseIPTCInto(data []byte, m *core.Metadata) {
	i := 0
	for i+8 < len(data) {
		if !bytes.Equal(data[i:i+4], resourceSig) {
			i++
			continue
		}
		resType := binary.BigEndian.Uint16(data[i+4:])
		// Pascal name, padded to an even total length.
		nameLen := int(data[i+6])
		if nameLen%2 == 0 {
			nameLen++
		}
		i += 7 + nameLen
		if i+4 > len(data) {
			return
		}
		blockLen := int(binary.BigEndian.Uint32(data[i:]))
		i += 4
		if blockLen < 0 || i+blockLen > len(data) {
			return
		}
		if resType == iptcResource {
			parseIPTCBlock(data[i:i+blockLen], m)
		}
		i += blockLen
		if blockLen%2 != 0 {
			i++
		}
	}
}

func parseIPTCBlock(data []byte, m *core.Metadata) {
	i := 0
	for i+5 <= len(data) {
		if data[i] != 0x1C {
			i++
			continue
		}
		dataset := data[i+2]
		n := int(binary.BigEndian.Uint16(data[i+3:]))
		i += 5
		if i+n > len(data) {
			return
		}
		if name, ok := iptcFieldNames[dataset]; ok {
			m.Fields = append(m.Fields, core.MetaField{
				Key:      name,
				Value:    string(data[i : i+n]),
				Category: "IPTC",
			})
		}
		i += n
	}
}
