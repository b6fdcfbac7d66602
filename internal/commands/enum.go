package commands

import (
	"fmt"
	"strings"
)

// EnumTable is the precomputed name/value table of an enum type. Member values are
// the indexes of their names, matching iota-declared constants.
type EnumTable struct {
	typeName string
	names    []string
	byName   map[string]int
}

// TypeName returns the enum's declared name.
func (t *EnumTable) TypeName() string {
	return t.typeName
}

// Names returns the member names in declaration order.
func (t *EnumTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Parse resolves a member name case-insensitively.
func (t *EnumTable) Parse(name string) (int, bool) {
	v, ok := t.byName[strings.ToLower(name)]
	return v, ok
}

// Name returns the declared name of a member value.
func (t *EnumTable) Name(value int) string {
	if value < 0 || value >= len(t.names) {
		return fmt.Sprintf("%s(%d)", t.typeName, value)
	}
	return t.names[value]
}

// EnumType ties an EnumTable to a Go integer type so option fields stay typed.
type EnumType[E ~int] struct {
	table *EnumTable
}

// NewEnum builds the table for an iota-declared enum; names[i] is the member with value i.
// Duplicate names (ignoring case) panic: enums are declared at package init.
func NewEnum[E ~int](typeName string, names ...string) *EnumType[E] {
	table := &EnumTable{
		typeName: typeName,
		names:    append([]string(nil), names...),
		byName:   make(map[string]int, len(names)),
	}
	for i, name := range names {
		key := strings.ToLower(name)
		if _, exists := table.byName[key]; exists {
			panic(fmt.Sprintf("enum %s declares %q twice", typeName, name))
		}
		table.byName[key] = i
	}
	return &EnumType[E]{table: table}
}

// Table returns the untyped table.
func (e *EnumType[E]) Table() *EnumTable {
	return e.table
}

// Name returns the declared name of v.
func (e *EnumType[E]) Name(v E) string {
	return e.table.Name(int(v))
}
