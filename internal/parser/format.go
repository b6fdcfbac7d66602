package parser

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// quoteWord renders a word so that Parse reads it back unchanged.
// force keeps a quoted value quoted, which matters for list options.
func quoteWord(word string, force bool) string {
	if word == "" {
		return `''`
	}
	quoted, err := syntax.Quote(word, syntax.LangBash)
	if err != nil || strings.HasPrefix(quoted, "$") {
		// Quote fails on NUL bytes and answers $'…' for control characters, which the
		// lexer does not read. Single quotes keep every rune verbatim.
		quoted = "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
	}
	if force && !strings.ContainsAny(quoted[:1], `'"`) {
		quoted = "'" + quoted + "'"
	}
	return quoted
}

// QuoteWord renders word so that Parse reads it back as a single unchanged word.
func QuoteWord(word string) string {
	return quoteWord(word, false)
}

func isOptionShaped(word string) bool {
	return strings.HasPrefix(word, "-") && len(word) > 1
}

// String renders the command in canonical form: name, options, arguments, redirections.
func (c ParsedCommand) String() string {
	parts := []string{quoteWord(c.name, false)}

	lastValueless := false
	for _, opt := range c.options {
		switch {
		case !opt.HasValue:
			parts = append(parts, opt.Flag())
			lastValueless = true
		case opt.Long && opt.Separator == SeparatorEquals:
			parts = append(parts, opt.Flag()+"="+quoteWord(opt.Value, opt.Quoted))
			lastValueless = false
		default:
			parts = append(parts, opt.Flag(), quoteWord(opt.Value, opt.Quoted || isOptionShaped(opt.Value)))
			lastValueless = false
		}
	}

	if len(c.arguments) > 0 {
		needsMarker := lastValueless
		for _, arg := range c.arguments {
			if isOptionShaped(arg) {
				needsMarker = true
			}
		}
		if needsMarker {
			parts = append(parts, endOfOptions)
		}
		for _, arg := range c.arguments {
			parts = append(parts, quoteWord(arg, false))
		}
	}

	r := c.redirections
	if r.HasStdin() {
		parts = append(parts, "<", quoteWord(r.Stdin, false))
	}
	if r.HasStdout() {
		parts = append(parts, r.StdoutMode.String(), quoteWord(r.Stdout, false))
	}
	for _, extra := range r.Extra {
		parts = append(parts, extra.Mode.String(), quoteWord(extra.Path, false))
	}
	return strings.Join(parts, " ")
}

// String renders the pipeline in canonical form, stages joined by " | ".
func (p *ParsedPipeline) String() string {
	stages := make([]string, 0, len(p.commands))
	for _, cmd := range p.commands {
		stages = append(stages, cmd.String())
	}
	return strings.Join(stages, " | ")
}
