package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// GenerateHelp renders the command's usage and option table as plain text.
func (m *CommandMetadata) GenerateHelp() string {
	var b strings.Builder

	b.WriteString(m.name)
	if m.description != "" {
		b.WriteString(" - ")
		b.WriteString(m.description)
	}
	b.WriteString("\n\n")
	b.WriteString("Usage: ")
	b.WriteString(m.Usage())
	b.WriteString("\n")

	if len(m.options) == 0 {
		return b.String()
	}

	b.WriteString("\nOptions:\n")
	rows := make([][2]string, 0, len(m.options))
	for _, opt := range m.options {
		left := opt.Flags()
		if placeholder := ValuePlaceholder(opt); placeholder != "" {
			left += " " + placeholder
		}
		right := opt.Description
		if opt.Required {
			right = strings.TrimSpace(right + " (required)")
		}
		rows = append(rows, [2]string{left, right})
	}
	writeColumns(&b, rows)
	return b.String()
}

// Usage returns the synopsis, e.g. "grep --pattern <string> [options] [arguments...]".
func (m *CommandMetadata) Usage() string {
	parts := []string{m.name}
	for _, opt := range m.RequiredOptions() {
		parts = append(parts, "--"+opt.LongName+" "+ValuePlaceholder(opt))
	}
	if len(m.options) > len(m.RequiredOptions()) {
		parts = append(parts, "[options]")
	}
	parts = append(parts, "[arguments...]")
	return strings.Join(parts, " ")
}

// ValuePlaceholder returns the value hint shown after an option flag, e.g. "<int>".
func ValuePlaceholder(opt *OptionMetadata) string {
	if opt.Type.IsBool() {
		return ""
	}
	elem := opt.Type.Kind.String()
	if opt.Type.Kind == KindEnum && opt.Enum != nil {
		elem = strings.Join(opt.Enum.Names(), "|")
	}
	if opt.Type.List {
		return "<" + elem + ",...>"
	}
	return "<" + elem + ">"
}

// GenerateGlobalHelp lists every registered command with its description.
func (r *Registry) GenerateGlobalHelp() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")

	all := r.All()
	rows := make([][2]string, 0, len(all))
	for _, meta := range all {
		rows = append(rows, [2]string{meta.name, meta.description})
	}
	writeColumns(&b, rows)

	b.WriteString("\nUse 'help <command>' for details.\n")
	return b.String()
}

// writeColumns writes two aligned columns indented by two spaces.
func writeColumns(b *strings.Builder, rows [][2]string) {
	width := 0
	for _, row := range rows {
		if w := ansi.StringWidth(row[0]); w > width {
			width = w
		}
	}
	for _, row := range rows {
		pad := width - ansi.StringWidth(row[0])
		if row[1] == "" {
			fmt.Fprintf(b, "  %s\n", row[0])
			continue
		}
		fmt.Fprintf(b, "  %s%s  %s\n", row[0], strings.Repeat(" ", pad), row[1])
	}
}
