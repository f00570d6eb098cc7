// Package compat compares two schema versions structurally. The two
// directions are distinct guarantees and are exposed as distinct checks:
// Substitutable asks whether newer instances can stand where older ones are
// expected, Migratable asks whether older data can be carried into the newer
// shape without a registered transform. Both report every finding, not just
// the first, so an API author can fix a version in one pass.
package compat

import (
	"fmt"

	"github.com/schevo/schevo/internal/core/schema"
	"github.com/schevo/schevo/pkg/sequence"
)

// Reason classifies a single structural incompatibility.
type Reason uint8

const (
	// FieldMissing: a field the older version declares is gone in the newer.
	FieldMissing Reason = iota
	// KindNarrowed: the newer kind cannot hold every older value.
	KindNarrowed
	// OptionalityWeakened: a field the older version guarantees became
	// optional, so newer instances may lack it.
	OptionalityWeakened
	// OptionalityTightened: an optional older field became required with no
	// default, so older data may fail to satisfy the newer shape.
	OptionalityTightened
	// BreakingAddition: the newer version added a required field without a
	// default; older data cannot populate it.
	BreakingAddition
)

func (r Reason) String() string {
	switch r {
	case FieldMissing:
		return "field missing"
	case KindNarrowed:
		return "kind narrowed"
	case OptionalityWeakened:
		return "optionality weakened"
	case OptionalityTightened:
		return "optionality tightened"
	case BreakingAddition:
		return "breaking addition"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// Incompatibility names one field-level finding. Field is a dot path for
// nested records, with "[]" marking array elements.
type Incompatibility struct {
	Field  string
	Reason Reason
	Detail string
}

func (i Incompatibility) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Field, i.Reason, i.Detail)
}

// Substitutable reports whether an instance of newer can stand wherever an
// instance of older is expected. Every older field must survive in newer with
// the same or wider kind, and a field older guarantees may not become
// optional. Fields added in newer are invisible to older consumers and fine.
// A nil return means compatible.
func Substitutable(older, newer *schema.Schema) []Incompatibility {
	return compareFields("", older.Fields(), newer.Fields(), substitution)
}

// Migratable reports whether older data can be carried into the newer shape
// without a transform. Dropped fields are tolerated, but a surviving field may
// not narrow, an optional field may not become required without a default, and
// a field added as required needs a default. A nil return means migratable.
func Migratable(older, newer *schema.Schema) []Incompatibility {
	return compareFields("", older.Fields(), newer.Fields(), migration)
}

type direction uint8

const (
	substitution direction = iota
	migration
)

func compareFields(path string, older, newer []schema.Field, dir direction) []Incompatibility {
	var out []Incompatibility

	index := make(map[string]schema.Field, len(newer))
	for _, f := range newer {
		index[f.Name] = f
	}

	for _, of := range older {
		p := join(path, of.Name)
		nf, ok := index[of.Name]
		if !ok {
			if dir == substitution {
				out = append(out, Incompatibility{
					Field:  p,
					Reason: FieldMissing,
					Detail: fmt.Sprintf("%s field removed", of.Kind),
				})
			}
			continue
		}
		out = append(out, compareField(p, of, nf, dir)...)
	}

	if dir == migration {
		added := sequence.From(newer).Filter(func(f schema.Field) bool {
			_, kept := hasField(older, f.Name)
			return !kept && !f.Optional && !f.HasDefault()
		}).Collect()
		for _, f := range added {
			out = append(out, Incompatibility{
				Field:  join(path, f.Name),
				Reason: BreakingAddition,
				Detail: "required field added without a default",
			})
		}
	}
	return out
}

func compareField(path string, of, nf schema.Field, dir direction) []Incompatibility {
	var out []Incompatibility

	if !of.Kind.WidensTo(nf.Kind) {
		out = append(out, Incompatibility{
			Field:  path,
			Reason: KindNarrowed,
			Detail: fmt.Sprintf("%s does not widen to %s", of.Kind, nf.Kind),
		})
		return out
	}

	switch dir {
	case substitution:
		if !of.Optional && nf.Optional {
			out = append(out, Incompatibility{
				Field:  path,
				Reason: OptionalityWeakened,
				Detail: "required field became optional",
			})
		}
	case migration:
		if of.Optional && !nf.Optional && !nf.HasDefault() {
			out = append(out, Incompatibility{
				Field:  path,
				Reason: OptionalityTightened,
				Detail: "optional field became required without a default",
			})
		}
	}

	if of.Kind == schema.Record && nf.Kind == schema.Record {
		out = append(out, compareFields(path, of.Fields, nf.Fields, dir)...)
	}
	if of.Kind == schema.Array && nf.Kind == schema.Array && of.Elem != nil && nf.Elem != nil {
		out = append(out, compareField(path+"[]", *of.Elem, *nf.Elem, dir)...)
	}
	return out
}

func hasField(fields []schema.Field, name string) (schema.Field, bool) {
	return sequence.From(fields).Find(func(f schema.Field) bool { return f.Name == name })
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
