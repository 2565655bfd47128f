package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// ImportSourceSpec is the parsed form of one entry of imports.json. The
// concrete source (directory walk, tar download, URL, or GCS object) is
// constructed from this spec by package importsrc; this package only
// validates the JSON shape.
type ImportSourceSpec struct {
	Kind        string `json:"kind"`
	Directory   string `json:"directory,omitempty"`
	URL         string `json:"url,omitempty"`
	GCSBucket   string `json:"bucket,omitempty"`
	GCSPrefix   string `json:"prefix,omitempty"`
	Format      string `json:"format"`
	Compression string `json:"compression,omitempty"`
	Cache       string `json:"cache,omitempty"`
	Checksum    string `json:"checksum,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	Recursive   bool   `json:"recursive,omitempty"`
	Layout      bool   `json:"layout,omitempty"`
	Simplify    bool   `json:"simplify,omitempty"`
}

// validate checks the structural requirements that are common to every
// import source kind plus the requirements specific to its kind.
func (spec ImportSourceSpec) validate() error {
	if spec.Format == "" {
		return xerrors.Configf("import source is missing required field %q", "format")
	}
	switch spec.Kind {
	case "dir":
		if spec.Directory == "" {
			return xerrors.Configf("import source of kind %q requires %q", spec.Kind, "directory")
		}
	case "tar":
		if spec.URL == "" {
			return xerrors.Configf("import source of kind %q requires %q", spec.Kind, "url")
		}
	case "url":
		if spec.URL == "" {
			return xerrors.Configf("import source of kind %q requires %q", spec.Kind, "url")
		}
	case "gcs":
		if spec.GCSBucket == "" {
			return xerrors.Configf("import source of kind %q requires %q", spec.Kind, "bucket")
		}
	default:
		return xerrors.Configf("unrecognized import source kind %q", spec.Kind)
	}
	return nil
}

// ParseImports reads imports.json, which is either a single import
// source object or a JSON array of them. An attribute that
// ImportSourceSpec does not know is an error.
func ParseImports(r io.Reader, filename string) ([]ImportSourceSpec, error) {
	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, xerrors.WrapConfig(err, "parsing %s", filename)
	}
	decodeStrict := func(v interface{}) error {
		d := json.NewDecoder(bytes.NewReader(raw))
		d.DisallowUnknownFields()
		return d.Decode(v)
	}
	var specs []ImportSourceSpec
	var asArray []ImportSourceSpec
	if err := decodeStrict(&asArray); err == nil {
		specs = asArray
	} else {
		var one ImportSourceSpec
		if err := decodeStrict(&one); err != nil {
			return nil, xerrors.WrapConfig(err, "parsing %s", filename)
		}
		specs = []ImportSourceSpec{one}
	}
	for i, spec := range specs {
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", filename, i, err)
		}
	}
	return specs, nil
}

// DefaultImports is the empty import list.
func DefaultImports() []ImportSourceSpec {
	return nil
}
