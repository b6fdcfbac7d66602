package commands

import (
	"reflect"
	"sort"
	"strings"

	"pipeshell/pkg/shelltypes"
)

// OptionMetadata describes one declared option and how to store it on a command instance.
type OptionMetadata struct {
	LongName    string
	ShortName   string // Single rune, or "" when the option has no short form
	Required    bool
	Description string
	Type        ValueType
	Enum        *EnumTable // Set for enum and enum-list options

	set func(cmd shelltypes.Command, value any) error
	get func(cmd shelltypes.Command) any
}

// Set stores a converted value on cmd. The value's Go type must match Type:
// string, int, float32, float64, bool, int (enum) or a slice of one of these.
func (o *OptionMetadata) Set(cmd shelltypes.Command, value any) error {
	return o.set(cmd, value)
}

// Get reads the option's current value from cmd.
func (o *OptionMetadata) Get(cmd shelltypes.Command) any {
	return o.get(cmd)
}

// Flags returns the option's spellings, e.g. "-n, --lines".
func (o *OptionMetadata) Flags() string {
	if o.ShortName == "" {
		return "    --" + o.LongName
	}
	return "-" + o.ShortName + ", --" + o.LongName
}

// CommandMetadata is the read-only description of a command type, built once at registration.
type CommandMetadata struct {
	name        string
	description string
	factory     func() shelltypes.Command
	options     []*OptionMetadata
	byLong      map[string]*OptionMetadata
	byShort     map[string]*OptionMetadata
	commandType reflect.Type
}

// Name returns the command name.
func (m *CommandMetadata) Name() string {
	return m.name
}

// Description returns the one-line command description.
func (m *CommandMetadata) Description() string {
	return m.description
}

// Options returns the declared options in declaration order.
func (m *CommandMetadata) Options() []*OptionMetadata {
	return append([]*OptionMetadata(nil), m.options...)
}

// NewInstance constructs a fresh command instance. Instances are never shared.
func (m *CommandMetadata) NewInstance() shelltypes.Command {
	return m.factory()
}

// LookupLong resolves an option by long name, case-insensitively.
func (m *CommandMetadata) LookupLong(name string) (*OptionMetadata, bool) {
	opt, ok := m.byLong[strings.ToLower(name)]
	return opt, ok
}

// LookupShort resolves an option by short name, case-insensitively.
func (m *CommandMetadata) LookupShort(name string) (*OptionMetadata, bool) {
	opt, ok := m.byShort[strings.ToLower(name)]
	return opt, ok
}

// RequiredOptions returns the required options in declaration order.
func (m *CommandMetadata) RequiredOptions() []*OptionMetadata {
	var required []*OptionMetadata
	for _, opt := range m.options {
		if opt.Required {
			required = append(required, opt)
		}
	}
	return required
}

// CompleteOption returns the option spellings ("--name" and "-n") that start with prefix.
func (m *CommandMetadata) CompleteOption(prefix string) []string {
	var matches []string
	for _, opt := range m.options {
		long := "--" + opt.LongName
		if strings.HasPrefix(long, prefix) {
			matches = append(matches, long)
		}
		if opt.ShortName != "" && strings.HasPrefix("-"+opt.ShortName, prefix) && !strings.HasPrefix(prefix, "--") {
			matches = append(matches, "-"+opt.ShortName)
		}
	}
	sort.Strings(matches)
	return matches
}
