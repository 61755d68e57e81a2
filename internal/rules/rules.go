// Package rules loads vendor sorting rules from a YAML file.
//
// A rules file lists groups in priority order, each with the keywords that
// select it:
//
//	vendors:
//	  - group: Apple
//	    keywords: [apple, iphone, macbook]
//	  - group: Dell
//
// A group without keywords matches its own name.
package rules

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"tidy/internal/classify"
	"tidy/internal/fault"
)

// Vendor is one group entry.
type Vendor struct {
	Group    string   `yaml:"group"`
	Keywords []string `yaml:"keywords"`
}

// File is a parsed rules file.
type File struct {
	Vendors []Vendor `yaml:"vendors"`
}

// Load reads and parses path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.Wrap(fault.ErrNotFound, "rules", "read", path, err)
		}
		return nil, fault.Wrap(fault.ErrAccess, "rules", "read", path, err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, fault.Wrap(fault.ErrConfig, "rules", "parse", path, err)
	}
	return file, nil
}

// Parse decodes rules YAML, rejecting unknown keys.
func Parse(data []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &file, nil
}

// Rules converts the file into classifier rules, in file order.
func (f *File) Rules() ([]classify.Rule, error) {
	out := make([]classify.Rule, 0, len(f.Vendors))
	for _, v := range f.Vendors {
		keywords := v.Keywords
		if len(keywords) == 0 {
			keywords = []string{v.Group}
		}
		rule, err := classify.NewVendorKeywordRule(v.Group, keywords)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

// Build combines --vendors style names with an optional rules file. Vendor
// names come first so they take precedence. At least one rule must result.
func Build(vendors []string, rulesPath string) ([]classify.Rule, error) {
	var out []classify.Rule
	if len(vendors) > 0 {
		rules, err := classify.VendorRules(vendors)
		if err != nil {
			return nil, err
		}
		out = append(out, rules...)
	}
	if rulesPath != "" {
		file, err := Load(rulesPath)
		if err != nil {
			return nil, err
		}
		rules, err := file.Rules()
		if err != nil {
			return nil, err
		}
		out = append(out, rules...)
	}
	if len(out) == 0 {
		return nil, fault.Wrap(fault.ErrConfig, "rules", "build", "no vendors given; use --vendors or --rules", nil)
	}
	return out, nil
}
