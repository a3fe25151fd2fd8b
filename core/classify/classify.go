// Package classify maps EXIF tags to the metadata categories a strip
// request selects, and resolves presets into removal policies.
package classify

import (
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/tiff"
)

// IFD names the directory that owns a tag.
type IFD int

const (
	IFD0 IFD = iota
	ExifIFD
)

func (d IFD) String() string {
	if d == ExifIFD {
		return "ExifIFD"
	}
	return "IFD0"
}

var ifd0Tags = map[uint16]core.Category{
	tiff.TagGPSIFD: core.CatGPS,

	0x010F: core.CatCameraLens, // Make
	0x0110: core.CatCameraLens, // Model

	0x0131: core.CatSoftware, // Software
	0x013C: core.CatSoftware, // HostComputer

	tiff.TagProcessingSoftware: core.CatSoftware,

	0x013B: core.CatAuthorCopyright, // Artist
	0x8298: core.CatAuthorCopyright, // Copyright

	0x010E: core.CatComments, // ImageDescription

	tiff.TagDateTime: core.CatCaptureDateTime,
}

var exifTags = map[uint16]core.Category{
	0xA431: core.CatCameraLens, // BodySerialNumber
	0xA432: core.CatCameraLens, // LensSpecification
	0xA433: core.CatCameraLens, // LensMake
	0xA434: core.CatCameraLens, // LensModel
	0xA435: core.CatCameraLens, // LensSerialNumber

	tiff.TagProcessingSoftware: core.CatSoftware,

	0x9C9D: core.CatAuthorCopyright, // XPAuthor

	0x9286: core.CatComments, // UserComment
	0x9C9B: core.CatComments, // XPTitle
	0x9C9C: core.CatComments, // XPComment
	0x9C9E: core.CatComments, // XPKeywords
	0x9C9F: core.CatComments, // XPSubject

	tiff.TagDateTimeOriginal:  core.CatCaptureDateTime,
	tiff.TagDateTimeDigitized: core.CatCaptureDateTime,

	0x9290: core.CatCaptureDateTime, // SubSecTime
	0x9291: core.CatCaptureDateTime, // SubSecTimeOriginal
	0x9292: core.CatCaptureDateTime, // SubSecTimeDigitized

	tiff.TagMakerNote: core.CatMakerNote,
}

// shootingSettings covers exposure, aperture, ISO, flash, focal length,
// scene and composite-image tags of the Exif IFD.
var shootingSettings = []uint16{
	0x829A, 0x829D, 0x8822, 0x8827,
	0x8830, 0x8831, 0x8832, 0x8833, 0x8834, 0x8835,
	0x9201, 0x9202, 0x9203, 0x9204, 0x9205, 0x9206,
	0x9207, 0x9208, 0x9209, 0x920A,
	0xA20E, 0xA20F, 0xA210, 0xA215, 0xA217,
	0xA300, 0xA301, 0xA302,
	0xA401, 0xA402, 0xA403, 0xA404, 0xA405, 0xA406,
	0xA407, 0xA408, 0xA409, 0xA40A, 0xA40B, 0xA40C,
	0xA420,
	0xA460, 0xA461, 0xA462,
}

func init() {
	for _, t := range shootingSettings {
		exifTags[t] = core.CatShootingSettings
	}
}

// pinned Exif tags are never removed: viewers rely on them.
var pinned = map[uint16]bool{
	0xA001: true, // ColorSpace
	0xA002: true, // PixelXDimension
	0xA003: true, // PixelYDimension
}

// essentialIFD0 is the allowlist kept by the full-clean preset.
var essentialIFD0 = map[uint16]bool{
	0x0100: true, // ImageWidth
	0x0101: true, // ImageLength
	0x0102: true, // BitsPerSample
	0x0103: true, // Compression
	0x0106: true, // PhotometricInterpretation
	0x011A: true, // XResolution
	0x011B: true, // YResolution
	0x0128: true, // ResolutionUnit
	0x0112: true, // Orientation
	0x0115: true, // SamplesPerPixel
	0x0211: true, // YCbCrCoefficients
	0x0212: true, // YCbCrSubSampling
	0x0213: true, // YCbCrPositioning
	0x013E: true, // WhitePoint
	0x013F: true, // PrimaryChromaticities
	0x0142: true, // TileWidth
	0x0143: true, // TileLength

	tiff.TagExifIFD: true,
}

// Classify returns the category of tag in the given directory. The Exif
// pointer and the thumbnail pointer belong to no category.
func Classify(ifd IFD, tag uint16) (core.Category, bool) {
	if ifd == ExifIFD {
		c, ok := exifTags[tag]
		return c, ok
	}
	c, ok := ifd0Tags[tag]
	return c, ok
}

// IsEssentialIFD0 reports whether the full-clean preset keeps an IFD0 tag.
func IsEssentialIFD0(tag uint16) bool {
	return essentialIFD0[tag]
}

// IsPinned reports whether an Exif tag is kept under every policy.
func IsPinned(tag uint16) bool {
	return pinned[tag]
}
