package classify

import (
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/tiff"
)

var presets = map[core.Preset]core.Categories{
	core.PresetSNSPublish: {
		GPS:        true,
		CameraLens: true,
		Comments:   true,
		Thumbnail:  true,
	},
	core.PresetDelivery: {
		CameraLens: true,
		Software:   true,
		Comments:   true,
	},
	core.PresetFullClean: {
		GPS:              true,
		CameraLens:       true,
		Software:         true,
		AuthorCopyright:  true,
		Comments:         true,
		Thumbnail:        true,
		IPTC:             true,
		XMP:              true,
		ShootingSettings: true,
		CaptureDateTime:  true,
	},
}

// Policy is a resolved removal policy. It implements tiff.Filter.
type Policy struct {
	cats      core.Categories
	fullClean bool
}

var _ tiff.Filter = Policy{}

// Resolve turns a preset, or custom categories when the preset is Custom,
// into a policy. FullClean additionally enables the essential-allowlist mode.
func Resolve(preset core.Preset, custom core.Categories) Policy {
	cats, ok := presets[preset]
	if !ok {
		cats = custom
	}
	return Policy{cats: cats, fullClean: preset == core.PresetFullClean}
}

// Categories returns the selected categories.
func (p Policy) Categories() core.Categories { return p.cats }

// FullClean reports whether the essential-allowlist mode is active.
func (p Policy) FullClean() bool { return p.fullClean }

// RemoveThumbnail implements tiff.Filter.
func (p Policy) RemoveThumbnail() bool { return p.cats.Thumbnail }

// RemoveIFD0 implements tiff.Filter.
func (p Policy) RemoveIFD0(tag uint16) bool {
	if tag == tiff.TagExifIFD {
		return false
	}
	if c, ok := Classify(IFD0, tag); ok && p.cats.Has(c) {
		return true
	}
	if p.fullClean {
		return !IsEssentialIFD0(tag)
	}
	return false
}

// RemoveExif implements tiff.Filter.
func (p Policy) RemoveExif(tag uint16) bool {
	if IsPinned(tag) {
		return false
	}
	if p.fullClean {
		return true
	}
	c, ok := Classify(ExifIFD, tag)
	return ok && p.cats.Has(c)
}
