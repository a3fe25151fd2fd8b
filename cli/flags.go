package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/config"
)

// categoryFlags maps command-line flag names to categories.
var categoryFlags = []struct {
	name string
	cat  core.Category
}{
	{"gps", core.CatGPS},
	{"camera", core.CatCameraLens},
	{"software", core.CatSoftware},
	{"author", core.CatAuthorCopyright},
	{"comments", core.CatComments},
	{"thumbnail", core.CatThumbnail},
	{"iptc", core.CatIPTC},
	{"xmp", core.CatXMP},
	{"shooting", core.CatShootingSettings},
	{"datetime", core.CatCaptureDateTime},
}

type stripFlags struct {
	preset string
	policy string
	cats   map[string]*bool
}

func registerStripFlags(fs *flag.FlagSet) *stripFlags {
	sf := &stripFlags{cats: make(map[string]*bool)}
	fs.StringVar(&sf.preset, "preset", "", "Preset: sns, delivery, full or custom")
	fs.StringVar(&sf.policy, "policy", "", "YAML policy file")
	for _, cf := range categoryFlags {
		sf.cats[cf.name] = fs.Bool(cf.name, false, "Remove "+cf.cat.Label())
	}
	return sf
}

// request resolves the strip request from, in increasing precedence, the
// policy file, -preset and explicitly set category flags. Any category
// flag without a preset selects the custom preset.
func (sf *stripFlags) request(fs *flag.FlagSet) (core.StripRequest, error) {
	var req core.StripRequest
	if sf.policy != "" {
		p, err := config.Load(sf.policy)
		if err != nil {
			return req, err
		}
		req.Preset, req.Categories = p.Request()
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["preset"] {
		preset, err := core.ParsePreset(sf.preset)
		if err != nil {
			return req, err
		}
		req.Preset = preset
	}
	for _, cf := range categoryFlags {
		if !set[cf.name] {
			continue
		}
		if !set["preset"] {
			req.Preset = core.PresetCustom
		}
		if *sf.cats[cf.name] {
			req.Categories.Set(cf.cat)
		} else {
			req.Categories = unset(req.Categories, cf.cat)
		}
	}

	if req.Preset == "" {
		req.Preset = core.PresetCustom
	}
	if req.Preset == core.PresetCustom && req.Categories == (core.Categories{}) {
		return req, errors.New("nothing selected: pass -preset, -policy or a category flag such as -gps")
	}
	return req, nil
}

func unset(cs core.Categories, c core.Category) core.Categories {
	var out core.Categories
	for _, k := range core.RequestCategories {
		if k != c && cs.Has(k) {
			out.Set(k)
		}
	}
	return out
}

// parseOffset accepts a Go duration ("-1h", "90m") or a plain number of
// seconds ("-3600"). Sub-second durations are rejected.
func parseOffset(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("-offset is required")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid -offset %q: want a duration or seconds", s)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("invalid -offset %q: must be whole seconds", s)
	}
	return int64(d / time.Second), nil
}
