package commands

// Kind is the scalar element type of an option value.
type Kind int

const (
	// KindString passes the raw text through unchanged.
	KindString Kind = iota
	// KindInt parses a base-10 integer.
	KindInt
	// KindFloat parses a 32-bit floating point number.
	KindFloat
	// KindDouble parses a 64-bit floating point number.
	KindDouble
	// KindEnum matches a declared member name, case-insensitively.
	KindEnum
	// KindBool is set by the presence of the flag and never consumes a value.
	KindBool
)

// String returns the name used in help text.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindEnum:
		return "enum"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ValueType is an option's declared type: a scalar kind, optionally as a list.
type ValueType struct {
	Kind Kind
	List bool
}

// IsBool reports whether the option is a plain flag.
func (v ValueType) IsBool() bool {
	return v.Kind == KindBool && !v.List
}

// String returns e.g. "int" or "int list".
func (v ValueType) String() string {
	if v.List {
		return v.Kind.String() + " list"
	}
	return v.Kind.String()
}
