package binder

import (
	"fmt"
	"strconv"
	"strings"

	"pipeshell/internal/commands"
)

// scalarConverter turns one raw element into the Go value an option setter expects.
// The returned string is the reason shown to the user when conversion fails.
type scalarConverter func(opt *commands.OptionMetadata, raw string) (any, string)

var scalarConverters = map[commands.Kind]scalarConverter{
	commands.KindString: func(_ *commands.OptionMetadata, raw string) (any, string) {
		return raw, ""
	},
	commands.KindInt: func(_ *commands.OptionMetadata, raw string) (any, string) {
		v, err := strconv.ParseInt(raw, 10, strconv.IntSize)
		if err != nil {
			return nil, fmt.Sprintf("%q is not a valid int", raw)
		}
		return int(v), ""
	},
	commands.KindFloat: func(_ *commands.OptionMetadata, raw string) (any, string) {
		v, err := parseDecimal(raw, 32)
		if err != nil {
			return nil, fmt.Sprintf("%q is not a valid float", raw)
		}
		return float32(v), ""
	},
	commands.KindDouble: func(_ *commands.OptionMetadata, raw string) (any, string) {
		v, err := parseDecimal(raw, 64)
		if err != nil {
			return nil, fmt.Sprintf("%q is not a valid double", raw)
		}
		return v, ""
	},
	commands.KindEnum: func(opt *commands.OptionMetadata, raw string) (any, string) {
		v, ok := opt.Enum.Parse(raw)
		if !ok {
			return nil, fmt.Sprintf("%q (valid values: %s)", raw, strings.Join(opt.Enum.Names(), ", "))
		}
		return v, ""
	},
}

// parseDecimal is strconv.ParseFloat restricted to plain decimal notation: Go literal
// extras (digit separators, hexadecimal mantissas) are rejected like ParseInt does.
func parseDecimal(raw string, bitSize int) (float64, error) {
	digits := strings.TrimLeft(raw, "+-")
	if strings.Contains(raw, "_") || strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(raw, bitSize)
}

// convert produces the typed value for a non-boolean option. List values are split on
// commas unless any part of the value was quoted; an empty unquoted value is an empty list.
func convert(opt *commands.OptionMetadata, raw string, quoted bool) (any, string) {
	scalar, ok := scalarConverters[opt.Type.Kind]
	if !ok {
		return nil, fmt.Sprintf("unsupported option type %s", opt.Type.Kind)
	}
	if !opt.Type.List {
		return scalar(opt, raw)
	}

	var elements []string
	switch {
	case quoted:
		elements = []string{raw}
	case raw == "":
		elements = nil
	default:
		elements = strings.Split(raw, ",")
	}

	values := make([]any, 0, len(elements))
	for _, element := range elements {
		v, reason := scalar(opt, element)
		if reason != "" {
			return nil, reason
		}
		values = append(values, v)
	}
	return assembleList(opt.Type.Kind, values), ""
}

func assembleList(kind commands.Kind, values []any) any {
	switch kind {
	case commands.KindInt, commands.KindEnum:
		return collect[int](values)
	case commands.KindFloat:
		return collect[float32](values)
	case commands.KindDouble:
		return collect[float64](values)
	default:
		return collect[string](values)
	}
}

func collect[V any](values []any) []V {
	out := make([]V, len(values))
	for i, v := range values {
		out[i] = v.(V)
	}
	return out
}
