package commands

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"pipeshell/pkg/shelltypes"
)

// Definition is a declarative command description that a Registry can turn into metadata.
// Spec is the only implementation.
type Definition interface {
	commandType() reflect.Type
	build() (*CommandMetadata, error)
}

// OptionSetting adjusts an option while it is declared.
type OptionSetting func(*OptionMetadata)

// Required marks an option as mandatory.
func Required() OptionSetting {
	return func(o *OptionMetadata) {
		o.Required = true
	}
}

// Spec declares a command type: its name, description, factory and option table.
// Options are bound to fields through accessor closures, so binding never needs to
// inspect the command type at run time.
//
//	commands.Define("head", "Print the first lines", func() *HeadCommand { return &HeadCommand{Lines: 10} }).
//		Int("lines", 'n', "number of lines to print", func(c *HeadCommand) *int { return &c.Lines })
type Spec[T shelltypes.Command] struct {
	name        string
	description string
	factory     func() T
	options     []*OptionMetadata
}

// Define starts a command declaration.
func Define[T shelltypes.Command](name, description string, factory func() T) *Spec[T] {
	return &Spec[T]{name: name, description: description, factory: factory}
}

// String declares a string option.
func (s *Spec[T]) String(long string, short rune, description string, field func(T) *string, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindString}, nil, bindField(field), settings)
}

// Int declares an int option.
func (s *Spec[T]) Int(long string, short rune, description string, field func(T) *int, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindInt}, nil, bindField(field), settings)
}

// Float declares a float32 option.
func (s *Spec[T]) Float(long string, short rune, description string, field func(T) *float32, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindFloat}, nil, bindField(field), settings)
}

// Double declares a float64 option.
func (s *Spec[T]) Double(long string, short rune, description string, field func(T) *float64, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindDouble}, nil, bindField(field), settings)
}

// Bool declares a flag. Flags never take a value.
func (s *Spec[T]) Bool(long string, short rune, description string, field func(T) *bool, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindBool}, nil, bindField(field), settings)
}

// StringList declares a comma-separated string list option.
func (s *Spec[T]) StringList(long string, short rune, description string, field func(T) *[]string, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindString, List: true}, nil, bindField(field), settings)
}

// IntList declares a comma-separated int list option.
func (s *Spec[T]) IntList(long string, short rune, description string, field func(T) *[]int, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindInt, List: true}, nil, bindField(field), settings)
}

// FloatList declares a comma-separated float32 list option.
func (s *Spec[T]) FloatList(long string, short rune, description string, field func(T) *[]float32, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindFloat, List: true}, nil, bindField(field), settings)
}

// DoubleList declares a comma-separated float64 list option.
func (s *Spec[T]) DoubleList(long string, short rune, description string, field func(T) *[]float64, settings ...OptionSetting) *Spec[T] {
	return s.add(long, short, description, ValueType{Kind: KindDouble, List: true}, nil, bindField(field), settings)
}

// Enum declares an option whose value is one member of enum.
func Enum[T shelltypes.Command, E ~int](s *Spec[T], long string, short rune, description string, enum *EnumType[E], field func(T) *E, settings ...OptionSetting) *Spec[T] {
	set := func(cmd shelltypes.Command, value any) error {
		c, err := instanceOf[T](cmd)
		if err != nil {
			return err
		}
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("option expects an enum member, got %T", value)
		}
		*field(c) = E(v)
		return nil
	}
	get := func(cmd shelltypes.Command) any {
		c, err := instanceOf[T](cmd)
		if err != nil {
			return nil
		}
		return *field(c)
	}
	return s.add(long, short, description, ValueType{Kind: KindEnum}, enum.table, accessors{set, get}, settings)
}

// EnumList declares a comma-separated list of enum members.
func EnumList[T shelltypes.Command, E ~int](s *Spec[T], long string, short rune, description string, enum *EnumType[E], field func(T) *[]E, settings ...OptionSetting) *Spec[T] {
	set := func(cmd shelltypes.Command, value any) error {
		c, err := instanceOf[T](cmd)
		if err != nil {
			return err
		}
		vs, ok := value.([]int)
		if !ok {
			return fmt.Errorf("option expects enum members, got %T", value)
		}
		members := make([]E, len(vs))
		for i, v := range vs {
			members[i] = E(v)
		}
		*field(c) = members
		return nil
	}
	get := func(cmd shelltypes.Command) any {
		c, err := instanceOf[T](cmd)
		if err != nil {
			return nil
		}
		return *field(c)
	}
	return s.add(long, short, description, ValueType{Kind: KindEnum, List: true}, enum.table, accessors{set, get}, settings)
}

type accessors struct {
	set func(shelltypes.Command, any) error
	get func(shelltypes.Command) any
}

func instanceOf[T shelltypes.Command](cmd shelltypes.Command) (T, error) {
	c, ok := cmd.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("option declared for %T cannot be bound to %T", zero, cmd)
	}
	return c, nil
}

func bindField[T shelltypes.Command, V any](field func(T) *V) accessors {
	return accessors{
		set: func(cmd shelltypes.Command, value any) error {
			c, err := instanceOf[T](cmd)
			if err != nil {
				return err
			}
			v, ok := value.(V)
			if !ok {
				var want V
				return fmt.Errorf("option expects %T, got %T", want, value)
			}
			*field(c) = v
			return nil
		},
		get: func(cmd shelltypes.Command) any {
			c, err := instanceOf[T](cmd)
			if err != nil {
				return nil
			}
			return *field(c)
		},
	}
}

func (s *Spec[T]) add(long string, short rune, description string, vt ValueType, enum *EnumTable, acc accessors, settings []OptionSetting) *Spec[T] {
	opt := &OptionMetadata{
		LongName:    long,
		Description: description,
		Type:        vt,
		Enum:        enum,
		set:         acc.set,
		get:         acc.get,
	}
	if short != 0 {
		opt.ShortName = string(short)
	}
	for _, apply := range settings {
		apply(opt)
	}
	s.options = append(s.options, opt)
	return s
}

func (s *Spec[T]) commandType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// build validates the declaration and produces the metadata.
func (s *Spec[T]) build() (*CommandMetadata, error) {
	if strings.TrimSpace(s.name) == "" {
		return nil, errors.New("command name cannot be empty")
	}
	if strings.ContainsAny(s.name, " \t|<>'\"\\") {
		return nil, fmt.Errorf("command name %q contains reserved characters", s.name)
	}
	if s.factory == nil {
		return nil, fmt.Errorf("command %s has no factory", s.name)
	}

	meta := &CommandMetadata{
		name:        s.name,
		description: s.description,
		factory:     func() shelltypes.Command { return s.factory() },
		byLong:      make(map[string]*OptionMetadata, len(s.options)),
		byShort:     make(map[string]*OptionMetadata, len(s.options)),
		commandType: s.commandType(),
	}

	for _, opt := range s.options {
		if opt.LongName == "" || strings.HasPrefix(opt.LongName, "-") || strings.ContainsAny(opt.LongName, "= \t") {
			return nil, fmt.Errorf("command %s declares an invalid option name %q", s.name, opt.LongName)
		}
		long := strings.ToLower(opt.LongName)
		if _, exists := meta.byLong[long]; exists {
			return nil, fmt.Errorf("command %s declares option --%s twice", s.name, opt.LongName)
		}
		meta.byLong[long] = opt

		if opt.ShortName != "" {
			if utf8.RuneCountInString(opt.ShortName) != 1 || opt.ShortName == "-" {
				return nil, fmt.Errorf("command %s declares an invalid short name %q", s.name, opt.ShortName)
			}
			short := strings.ToLower(opt.ShortName)
			if _, exists := meta.byShort[short]; exists {
				return nil, fmt.Errorf("command %s declares option -%s twice", s.name, opt.ShortName)
			}
			meta.byShort[short] = opt
		}

		if opt.Type.Kind == KindEnum && opt.Enum == nil {
			return nil, fmt.Errorf("command %s: enum option --%s has no member table", s.name, opt.LongName)
		}
		if opt.Type.Kind == KindBool && opt.Type.List {
			return nil, fmt.Errorf("command %s: option --%s cannot be a bool list", s.name, opt.LongName)
		}
		meta.options = append(meta.options, opt)
	}

	return meta, nil
}
