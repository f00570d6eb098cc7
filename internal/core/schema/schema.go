// Package schema describes record types as immutable, versioned field lists
// and keeps them in an append-only registry. Descriptors exist for structural
// comparison between versions, not for per-instance validation.
package schema

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Field describes a single named slot of a record type.
type Field struct {
	Name     string
	Kind     Kind
	Optional bool
	// Default is the value assumed when an optional field is absent, or the
	// value a newly added required field starts with. Nil means no default.
	Default any
	// Fields holds the nested descriptor list when Kind is Record.
	Fields []Field
	// Elem describes the element type when Kind is Array.
	Elem *Field
}

// HasDefault reports whether the field carries a default value.
func (f Field) HasDefault() bool {
	return f.Default != nil
}

// Clone returns a deep copy of the field descriptor.
func (f Field) Clone() Field {
	out := f
	if f.Fields != nil {
		out.Fields = make([]Field, len(f.Fields))
		for i, nf := range f.Fields {
			out.Fields[i] = nf.Clone()
		}
	}
	if f.Elem != nil {
		elem := f.Elem.Clone()
		out.Elem = &elem
	}
	return out
}

func (f Field) validate() error {
	if f.Name == "" {
		return fmt.Errorf("schema: field with empty name")
	}
	switch f.Kind {
	case Record:
		if len(f.Fields) == 0 {
			return fmt.Errorf("schema: record field %q has no nested fields", f.Name)
		}
		seen := make(map[string]struct{}, len(f.Fields))
		for _, nf := range f.Fields {
			if nf.Name == "" {
				return fmt.Errorf("schema: record field %q has a nested field with empty name", f.Name)
			}
			if _, dup := seen[nf.Name]; dup {
				return fmt.Errorf("schema: record field %q declares %q twice", f.Name, nf.Name)
			}
			seen[nf.Name] = struct{}{}
			if err := nf.validate(); err != nil {
				return err
			}
		}
	case Array:
		if f.Elem == nil {
			return fmt.Errorf("schema: array field %q has no element descriptor", f.Name)
		}
		elem := *f.Elem
		if elem.Name == "" {
			elem.Name = f.Name
		}
		if err := elem.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Schema is one immutable version of a record type.
type Schema struct {
	name    string
	version int64
	fields  []Field
	index   map[string]int
}

// New builds a schema descriptor. Field names must be unique and version
// must be positive.
func New(name string, version int64, fields []Field) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema: empty schema name")
	}
	if version < 1 {
		return nil, fmt.Errorf("schema: %s: version must be positive, got %d", name, version)
	}
	s := &Schema{
		name:    name,
		version: version,
		fields:  make([]Field, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema: %s v%d declares field %q twice", name, version, f.Name)
		}
		s.fields[i] = f.Clone()
		s.index[f.Name] = i
	}
	return s, nil
}

// Name returns the record type name.
func (s *Schema) Name() string { return s.name }

// Version returns the schema version number.
func (s *Schema) Version() int64 { return s.version }

// Fields returns the field descriptors in declaration order. The slice is a
// copy; mutating it does not affect the schema.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Clone()
	}
	return out
}

// Field returns the descriptor with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i].Clone(), true
}

// Len returns the number of top-level fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fingerprint returns an xxhash of the schema's name and field structure.
// The version number is deliberately excluded: two consecutive versions with
// identical fields fingerprint the same, which is how callers detect that a
// version bump changed nothing.
func (s *Schema) Fingerprint() uint64 {
	var b strings.Builder
	b.WriteString(s.name)
	for _, f := range s.fields {
		writeCanonical(&b, f)
	}
	return xxhash.Sum64String(b.String())
}

func writeCanonical(b *strings.Builder, f Field) {
	b.WriteByte('|')
	b.WriteString(f.Name)
	b.WriteByte(':')
	b.WriteString(f.Kind.String())
	if f.Optional {
		b.WriteByte('?')
	}
	if f.Default != nil {
		// The type is part of the rendering: defaults 1 and "1" print the
		// same but are different values.
		fmt.Fprintf(b, "=%T:%v", f.Default, f.Default)
	}
	switch f.Kind {
	case Record:
		b.WriteByte('{')
		for _, nf := range f.Fields {
			writeCanonical(b, nf)
		}
		b.WriteByte('}')
	case Array:
		b.WriteByte('[')
		if f.Elem != nil {
			writeCanonical(b, *f.Elem)
		}
		b.WriteByte(']')
	}
}
