package core

import (
	"path/filepath"
	"strings"
)

// jpegExts maps lowercase extensions accepted as JPEG input.
var jpegExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".jpe":  true,
	".jfif": true,
}

// IsJPEG reports whether b starts with the Start-Of-Image marker (FF D8).
func IsJPEG(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8
}

// HasJPEGExt reports whether path carries a JPEG file extension.
func HasJPEGExt(path string) bool {
	return jpegExts[strings.ToLower(filepath.Ext(path))]
}
