package schema

import "fmt"

// Kind identifies the structural shape of a field value.
type Kind uint8

const (
	String Kind = iota
	Integer
	Number
	Bool
	Date
	Record
	Array
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Date:
		return "date"
	case Record:
		return "record"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// WidensTo reports whether a value of kind k may be read where kind w is
// declared. Integer widens to Number; every other kind only matches itself.
func (k Kind) WidensTo(w Kind) bool {
	if k == w {
		return true
	}
	return k == Integer && w == Number
}

// ParseKind maps the textual kind used in schema definition files.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string":
		return String, nil
	case "integer", "int":
		return Integer, nil
	case "number", "float":
		return Number, nil
	case "bool", "boolean":
		return Bool, nil
	case "date":
		return Date, nil
	case "record":
		return Record, nil
	case "array":
		return Array, nil
	default:
		return 0, fmt.Errorf("schema: unknown field kind %q", s)
	}
}
