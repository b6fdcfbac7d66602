package shell

import (
	"strings"

	"pipeshell/internal/commands"
	"pipeshell/pkg/shelltypes"
)

// Completer suggests command names, option spellings and arguments for the line being
// edited. It implements readline.AutoCompleter.
type Completer struct {
	interp *Interpreter
}

// NewCompleter creates a completer over the interpreter's registry and session.
func NewCompleter(interp *Interpreter) *Completer {
	return &Completer{interp: interp}
}

// Do returns the suffixes that complete the word before pos, and the word's length.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	if pos > len(line) {
		pos = len(line)
	}
	text := string(line[:pos])
	candidates, word := c.Complete(text)

	var suffixes [][]rune
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, word) {
			suffixes = append(suffixes, []rune(strings.TrimPrefix(candidate, word)))
		}
	}
	return suffixes, len([]rune(word))
}

// Complete returns the full candidates for the last word of text, and that word.
func (c *Completer) Complete(text string) ([]string, string) {
	stage := text
	if i := strings.LastIndex(text, "|"); i >= 0 {
		stage = text[i+1:]
	}
	fields := strings.Fields(stage)
	word := ""
	if len(fields) > 0 && !strings.HasSuffix(stage, " ") {
		word = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}

	if len(fields) == 0 {
		var names []string
		for _, name := range c.interp.Registry().CompleteCommand(word) {
			names = append(names, name+" ")
		}
		return names, word
	}

	cc := shelltypes.CompletionContext{
		Line:             text,
		Word:             word,
		WorkingDirectory: c.interp.Session().WorkingDirectory(),
		Fs:               c.interp.Fs(),
		Catalog:          c.interp.Registry(),
	}
	switch fields[len(fields)-1] {
	case "<", ">", ">>":
		return commands.CompletePaths(cc, false), word
	}

	meta, ok := c.interp.Registry().TryGet(fields[0])
	if !ok {
		return nil, word
	}
	if strings.HasPrefix(word, "-") {
		return meta.CompleteOption(word), word
	}
	if completer, ok := meta.NewInstance().(shelltypes.Completer); ok {
		return completer.Complete(cc), word
	}
	return nil, word
}
