package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileSchema is the on-disk shape of a schema definition, decodable from
// JSON or YAML.
type FileSchema struct {
	Name    string      `json:"name" yaml:"name"`
	Version int64       `json:"version" yaml:"version"`
	Fields  []FileField `json:"fields" yaml:"fields"`
}

// FileField mirrors Field with textual kinds for definition files.
type FileField struct {
	Name     string      `json:"name" yaml:"name"`
	Kind     string      `json:"kind" yaml:"kind"`
	Optional bool        `json:"optional,omitempty" yaml:"optional,omitempty"`
	Default  any         `json:"default,omitempty" yaml:"default,omitempty"`
	Fields   []FileField `json:"fields,omitempty" yaml:"fields,omitempty"`
	Elem     *FileField  `json:"elem,omitempty" yaml:"elem,omitempty"`
}

// LoadJSON decodes a schema definition from a JSON reader.
func LoadJSON(r io.Reader) (*Schema, error) {
	var fs FileSchema
	if err := json.NewDecoder(r).Decode(&fs); err != nil {
		return nil, fmt.Errorf("schema: decode json: %w", err)
	}
	return fs.Build()
}

// LoadYAML decodes a schema definition from a YAML reader.
func LoadYAML(r io.Reader) (*Schema, error) {
	var fs FileSchema
	if err := yaml.NewDecoder(r).Decode(&fs); err != nil {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	return fs.Build()
}

// LoadFile loads a schema definition, choosing the decoder by extension.
// ".json" is JSON; everything else is treated as YAML.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if filepath.Ext(path) == ".json" {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// normalizeDefault coerces a decoded default onto the field kind's Go type.
// The YAML and JSON decoders disagree on numeric literals (int vs float64);
// without this, the same definition would fingerprint differently depending
// on the file format it was read from.
func normalizeDefault(kind Kind, v any) any {
	if v == nil {
		return nil
	}
	switch kind {
	case Integer:
		switch n := v.(type) {
		case int:
			return int64(n)
		case int64:
			return n
		case uint64:
			return int64(n)
		case float64:
			return int64(n)
		}
	case Number:
		switch n := v.(type) {
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case float64:
			return n
		}
	}
	return v
}

// Build converts the file representation into an immutable Schema.
func (fs FileSchema) Build() (*Schema, error) {
	fields := make([]Field, len(fs.Fields))
	for i, ff := range fs.Fields {
		f, err := ff.build()
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return New(fs.Name, fs.Version, fields)
}

func (ff FileField) build() (Field, error) {
	kind, err := ParseKind(ff.Kind)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", ff.Name, err)
	}
	f := Field{
		Name:     ff.Name,
		Kind:     kind,
		Optional: ff.Optional,
		Default:  normalizeDefault(kind, ff.Default),
	}
	if len(ff.Fields) > 0 {
		f.Fields = make([]Field, len(ff.Fields))
		for i, nf := range ff.Fields {
			built, err := nf.build()
			if err != nil {
				return Field{}, err
			}
			f.Fields[i] = built
		}
	}
	if ff.Elem != nil {
		elem, err := ff.Elem.build()
		if err != nil {
			return Field{}, err
		}
		f.Elem = &elem
	}
	return f, nil
}
