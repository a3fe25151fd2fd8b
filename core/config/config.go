// Package config loads strip policies from YAML files.
//
//	preset: custom
//	categories:
//	  gps: true
//	  thumbnail: true
package config

import (
	"fmt"
	"os"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"gopkg.in/yaml.v2"
)

// Policy is the on-disk form of a strip policy.
type Policy struct {
	Preset     string          `yaml:"preset"`
	Categories core.Categories `yaml:"categories"`
}

// Parse decodes a policy document. Unknown keys are rejected.
func Parse(b []byte) (Policy, error) {
	var p Policy
	if err := yaml.UnmarshalStrict(b, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	if _, err := core.ParsePreset(p.Preset); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Load reads and decodes the policy file at path.
func Load(path string) (Policy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	return Parse(b)
}

// Request turns the policy into the preset and categories of a strip request.
func (p Policy) Request() (core.Preset, core.Categories) {
	preset, _ := core.ParsePreset(p.Preset)
	return preset, p.Categories
}
