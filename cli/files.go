package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/maruel/natural"
)

// collectFiles expands the command-line arguments into JPEG file paths.
// Directories contribute their JPEG files in natural order ("img2" before
// "img10"); subdirectories are entered only when recursive is set. Files
// named explicitly are kept whatever their extension.
func collectFiles(args []string, recursive bool) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("no input files")
	}
	var files []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := jpegsIn(arg, recursive)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, errors.New("no JPEG files found")
	}
	return files, nil
}

func jpegsIn(root string, recursive bool) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && core.HasJPEGExt(path) {
			out = append(out, path)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return natural.Less(out[i], out[j]) })
	return out, err
}
