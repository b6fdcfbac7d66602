package parser

import (
	"strings"

	"pipeshell/internal/logger"
)

// endOfOptions is the word that turns every following word of a stage into a positional argument.
const endOfOptions = "--"

// Parse turns one input line into a pipeline. Blank input yields an empty pipeline.
// Malformed syntax is reported as a *ParseError.
func Parse(input string) (*ParsedPipeline, error) {
	if strings.TrimSpace(input) == "" {
		return NewParsedPipeline(), nil
	}

	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	var stages [][]token
	var current []token
	for _, tok := range tokens {
		if tok.kind != tokenPipe {
			current = append(current, tok)
			continue
		}
		if len(current) == 0 {
			return nil, &ParseError{Message: "missing command before '|'", Fragment: tok.text, Offset: tok.offset}
		}
		stages = append(stages, current)
		current = nil
	}
	if len(current) == 0 {
		last := tokens[len(tokens)-1]
		return nil, &ParseError{Message: "missing command after '|'", Fragment: last.text, Offset: last.offset}
	}
	stages = append(stages, current)

	commands := make([]ParsedCommand, 0, len(stages))
	for _, stage := range stages {
		cmd, err := parseStage(stage)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}

	logger.Debug("Parsed pipeline", "input", input, "stages", len(commands))
	return NewParsedPipeline(commands...), nil
}

// parseStage builds one ParsedCommand from the tokens between pipes.
func parseStage(tokens []token) (ParsedCommand, error) {
	var (
		cmd       ParsedCommand
		named     bool
		optsEnded bool
		// pending is the index of the last option still able to take the next word as value
		pending = -1
	)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if tok.kind.isRedirect() {
			if i+1 >= len(tokens) || tokens[i+1].kind != tokenWord {
				return ParsedCommand{}, &ParseError{Message: "missing redirection target", Fragment: tok.text, Offset: tok.offset}
			}
			target := tokens[i+1]
			i++
			addRedirection(&cmd.redirections, tok.kind, target.text)
			pending = -1
			continue
		}

		if !named {
			cmd.name = tok.text
			named = true
			continue
		}

		if !optsEnded && tok.text == endOfOptions && !tok.hasQuotes && !anyEscaped(tok) {
			optsEnded = true
			pending = -1
			continue
		}

		if !optsEnded {
			if opt, ok := optionFromToken(tok); ok {
				cmd.options = append(cmd.options, opt)
				pending = -1
				if !opt.HasValue {
					pending = len(cmd.options) - 1
				}
				continue
			}
		}

		if pending >= 0 {
			opt := &cmd.options[pending]
			opt.HasValue = true
			opt.Value = tok.text
			opt.Quoted = tok.hasQuotes
			opt.Separator = SeparatorWhitespace
			pending = -1
			continue
		}

		cmd.arguments = append(cmd.arguments, tok.text)
	}

	if !named {
		first := tokens[0]
		return ParsedCommand{}, &ParseError{Message: "missing command name", Fragment: first.text, Offset: first.offset}
	}
	return cmd, nil
}

func addRedirection(r *ParsedRedirections, kind tokenKind, path string) {
	switch kind {
	case tokenRedirectIn:
		if r.StdinCount == 0 {
			r.Stdin = path
		} else {
			r.Extra = append(r.Extra, Redirection{Mode: RedirectInput, Path: path})
		}
		r.StdinCount++
	case tokenRedirectOut, tokenRedirectAppend:
		mode := RedirectTruncate
		if kind == tokenRedirectAppend {
			mode = RedirectAppend
		}
		if r.StdoutCount == 0 {
			r.Stdout = path
			r.StdoutMode = mode
		} else {
			r.Extra = append(r.Extra, Redirection{Mode: mode, Path: path})
		}
		r.StdoutCount++
	}
}

// optionFromToken recognises option-shaped words. Only unquoted, unescaped leading dashes
// make a word an option: "--name", "--name=value" and "-x" (a dash and exactly one rune).
func optionFromToken(tok token) (ParsedOption, bool) {
	runes := tok.runes
	if tok.kind != tokenWord || len(runes) < 2 || runes[0] != '-' || tok.literalAt(0) || tok.literalAt(1) {
		return ParsedOption{}, false
	}

	if runes[1] != '-' {
		if len(runes) != 2 {
			return ParsedOption{}, false
		}
		return ParsedOption{Name: string(runes[1])}, true
	}

	if len(runes) == 2 {
		return ParsedOption{}, false
	}

	eq := -1
	for i := 2; i < len(runes); i++ {
		if runes[i] == '=' && !tok.literalAt(i) {
			eq = i
			break
		}
	}
	if eq < 0 {
		return ParsedOption{Name: string(runes[2:]), Long: true}, true
	}
	if eq == 2 {
		return ParsedOption{}, false
	}
	return ParsedOption{
		Name:      string(runes[2:eq]),
		Long:      true,
		HasValue:  true,
		Value:     string(runes[eq+1:]),
		Quoted:    tok.quotedFrom(eq + 1),
		Separator: SeparatorEquals,
	}, true
}

func anyEscaped(tok token) bool {
	for _, e := range tok.escaped {
		if e {
			return true
		}
	}
	return false
}
