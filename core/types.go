// Package core defines the shared request, response and policy types for
// JPEG Metadata Surgery.
package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotJPEG is returned when a buffer does not start with the SOI marker.
	ErrNotJPEG = errors.New("not a JPEG")
	// ErrNoMetadata is returned when nothing the active policy selects was found.
	ErrNoMetadata = errors.New("no removable metadata")
)

// MetaField represents a single metadata key-value pair.
type MetaField struct {
	Key      string // Canonical field name (e.g. "Make", "Artist", "Keywords")
	Value    string // String representation of the value
	Category string // Category label ("EXIF", "XMP", "IPTC")
}

// Metadata holds all metadata extracted from a single file.
type Metadata struct {
	FilePath string
	Format   string
	Fields   []MetaField
}

// Category is a semantic group of metadata that a strip request can select.
type Category string

const (
	CatGPS              Category = "gps"
	CatCameraLens       Category = "cameraLens"
	CatSoftware         Category = "software"
	CatAuthorCopyright  Category = "authorCopyright"
	CatComments         Category = "comments"
	CatThumbnail        Category = "thumbnail"
	CatIPTC             Category = "iptc"
	CatXMP              Category = "xmp"
	CatShootingSettings Category = "shootingSettings"
	CatCaptureDateTime  Category = "captureDateTime"
	// CatMakerNote is only ever removed by the full-clean preset.
	CatMakerNote Category = "makerNote"
)

// Label returns the human readable name used in previews.
func (c Category) Label() string {
	switch c {
	case CatGPS:
		return "GPS/location"
	case CatCameraLens:
		return "camera/lens"
	case CatSoftware:
		return "software/edit history"
	case CatAuthorCopyright:
		return "author/copyright"
	case CatComments:
		return "comments/description"
	case CatThumbnail:
		return "thumbnail (IFD1)"
	case CatIPTC:
		return "IPTC (APP13)"
	case CatXMP:
		return "XMP (APP1)"
	case CatShootingSettings:
		return "shooting settings"
	case CatCaptureDateTime:
		return "capture datetime"
	case CatMakerNote:
		return "maker note"
	}
	return string(c)
}

// Categories is the per-category selection of a strip request. The same
// shape doubles as the set of categories found by a scan.
type Categories struct {
	GPS              bool `json:"gps" yaml:"gps"`
	CameraLens       bool `json:"cameraLens" yaml:"cameraLens"`
	Software         bool `json:"software" yaml:"software"`
	AuthorCopyright  bool `json:"authorCopyright" yaml:"authorCopyright"`
	Comments         bool `json:"comments" yaml:"comments"`
	Thumbnail        bool `json:"thumbnail" yaml:"thumbnail"`
	IPTC             bool `json:"iptc" yaml:"iptc"`
	XMP              bool `json:"xmp" yaml:"xmp"`
	ShootingSettings bool `json:"shootingSettings" yaml:"shootingSettings"`
	CaptureDateTime  bool `json:"captureDateTime" yaml:"captureDateTime"`
}

// Has reports whether c is set.
func (cs Categories) Has(c Category) bool {
	switch c {
	case CatGPS:
		return cs.GPS
	case CatCameraLens:
		return cs.CameraLens
	case CatSoftware:
		return cs.Software
	case CatAuthorCopyright:
		return cs.AuthorCopyright
	case CatComments:
		return cs.Comments
	case CatThumbnail:
		return cs.Thumbnail
	case CatIPTC:
		return cs.IPTC
	case CatXMP:
		return cs.XMP
	case CatShootingSettings:
		return cs.ShootingSettings
	case CatCaptureDateTime:
		return cs.CaptureDateTime
	}
	return false
}

// Set marks c as selected. Categories outside the request shape are ignored.
func (cs *Categories) Set(c Category) {
	switch c {
	case CatGPS:
		cs.GPS = true
	case CatCameraLens:
		cs.CameraLens = true
	case CatSoftware:
		cs.Software = true
	case CatAuthorCopyright:
		cs.AuthorCopyright = true
	case CatComments:
		cs.Comments = true
	case CatThumbnail:
		cs.Thumbnail = true
	case CatIPTC:
		cs.IPTC = true
	case CatXMP:
		cs.XMP = true
	case CatShootingSettings:
		cs.ShootingSettings = true
	case CatCaptureDateTime:
		cs.CaptureDateTime = true
	}
}

// RequestCategories lists the categories of the request shape in display order.
var RequestCategories = []Category{
	CatGPS, CatCameraLens, CatSoftware, CatAuthorCopyright, CatComments,
	CatThumbnail, CatIPTC, CatXMP, CatShootingSettings, CatCaptureDateTime,
}

// Preset names a predefined category selection.
type Preset string

const (
	PresetSNSPublish Preset = "snsPublish"
	PresetDelivery   Preset = "delivery"
	PresetFullClean  Preset = "fullClean"
	PresetCustom     Preset = "custom"
)

// ParsePreset accepts the canonical preset names and their short CLI forms.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sns", "snspublish":
		return PresetSNSPublish, nil
	case "delivery":
		return PresetDelivery, nil
	case "full", "fullclean":
		return PresetFullClean, nil
	case "custom", "":
		return PresetCustom, nil
	}
	return "", fmt.Errorf("unknown preset %q (want sns, delivery, full or custom)", s)
}

// PreviewStatus is the verdict of a dry run for one file.
type PreviewStatus string

const (
	PreviewReady   PreviewStatus = "ready"
	PreviewSkipped PreviewStatus = "skipped"
)

// ExecuteStatus is the verdict of a destructive run for one file.
type ExecuteStatus string

const (
	StatusSucceeded ExecuteStatus = "succeeded"
	StatusFailed    ExecuteStatus = "failed"
	StatusSkipped   ExecuteStatus = "skipped"
)

// ReasonCanceled is reported for every file left unprocessed by a cancellation.
const ReasonCanceled = "canceled"

// StripRequest selects the files and the metadata to remove.
type StripRequest struct {
	Files      []string   `json:"files"`
	Preset     Preset     `json:"preset"`
	Categories Categories `json:"categories"`
}

// StripPreviewItem is the dry-run verdict for one file.
type StripPreviewItem struct {
	Path            string        `json:"path"`
	Status          PreviewStatus `json:"status"`
	FoundCategories []string      `json:"foundCategories"`
	TagsToStrip     int           `json:"tagsToStrip"`
	HasIPTC         bool          `json:"hasIptc"`
	HasXMP          bool          `json:"hasXmp"`
	Reason          string        `json:"reason,omitempty"`
}

// StripPreviewResponse aggregates a strip dry run.
type StripPreviewResponse struct {
	Total   int                `json:"total"`
	Ready   int                `json:"ready"`
	Skipped int                `json:"skipped"`
	Items   []StripPreviewItem `json:"items"`
}

// StripExecuteDetail is the outcome of stripping one file.
type StripExecuteDetail struct {
	Path         string        `json:"path"`
	Status       ExecuteStatus `json:"status"`
	StrippedTags int           `json:"strippedTags"`
	StrippedIPTC bool          `json:"strippedIptc"`
	StrippedXMP  bool          `json:"strippedXmp"`
	Reason       string        `json:"reason,omitempty"`
}

// Totals are the aggregated batch counters of an execute run.
type Totals struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// StripExecuteResponse aggregates a strip run.
type StripExecuteResponse struct {
	Totals
	Details []StripExecuteDetail `json:"details"`
}

// ShiftRequest selects the files whose capture datetimes move by OffsetSeconds.
type ShiftRequest struct {
	Files         []string `json:"files"`
	OffsetSeconds int64    `json:"offsetSeconds"`
}

// ShiftPreviewItem is the dry-run verdict of a datetime shift for one file.
type ShiftPreviewItem struct {
	Path              string        `json:"path"`
	Status            PreviewStatus `json:"status"`
	OriginalDatetime  string        `json:"originalDatetime,omitempty"`
	CorrectedDatetime string        `json:"correctedDatetime,omitempty"`
	Reason            string        `json:"reason,omitempty"`
}

// ShiftPreviewResponse aggregates a datetime shift dry run.
type ShiftPreviewResponse struct {
	Total   int                `json:"total"`
	Ready   int                `json:"ready"`
	Skipped int                `json:"skipped"`
	Items   []ShiftPreviewItem `json:"items"`
}

// ShiftExecuteDetail is the outcome of shifting one file.
type ShiftExecuteDetail struct {
	Path          string        `json:"path"`
	Status        ExecuteStatus `json:"status"`
	PatchedFields int           `json:"patchedFields"`
	Reason        string        `json:"reason,omitempty"`
}

// ShiftExecuteResponse aggregates a datetime shift run.
type ShiftExecuteResponse struct {
	Totals
	Details []ShiftExecuteDetail `json:"details"`
}
