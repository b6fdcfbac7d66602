package parser

import (
	"unicode"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenPipe
	tokenRedirectIn
	tokenRedirectOut
	tokenRedirectAppend
)

func (k tokenKind) isRedirect() bool {
	return k == tokenRedirectIn || k == tokenRedirectOut || k == tokenRedirectAppend
}

type lexState int

const (
	stateOutside lexState = iota
	stateSingleQuote
	stateDoubleQuote
)

// token is a word or an operator. For words, quoted and escaped mark per rune whether
// the rune came from a quoted span or a backslash escape.
type token struct {
	kind      tokenKind
	text      string
	runes     []rune
	quoted    []bool
	escaped   []bool
	hasQuotes bool
	offset    int
}

// literalAt reports whether rune i was quoted or escaped and so cannot act as syntax.
func (t token) literalAt(i int) bool {
	return t.quoted[i] || t.escaped[i]
}

// quotedFrom reports whether any rune at or after i came from a quoted span.
func (t token) quotedFrom(i int) bool {
	for ; i < len(t.quoted); i++ {
		if t.quoted[i] {
			return true
		}
	}
	return false
}

type lexer struct {
	runes   []rune
	offsets []int
	tokens  []token

	// word under construction
	started   bool
	hasQuotes bool
	start     int
	buf       []rune
	quoted    []bool
	escaped   []bool
}

func newLexer(input string) *lexer {
	lx := &lexer{}
	for i, r := range input {
		lx.runes = append(lx.runes, r)
		lx.offsets = append(lx.offsets, i)
	}
	return lx
}

func (lx *lexer) begin(i int) {
	if !lx.started {
		lx.started = true
		lx.start = lx.offsets[i]
	}
}

func (lx *lexer) appendRune(i int, r rune, quoted, escaped bool) {
	lx.begin(i)
	lx.buf = append(lx.buf, r)
	lx.quoted = append(lx.quoted, quoted)
	lx.escaped = append(lx.escaped, escaped)
}

// flush emits the word under construction. A word made only of quotes ("") is still
// emitted, as an empty quoted word.
func (lx *lexer) flush() {
	if !lx.started {
		return
	}
	lx.tokens = append(lx.tokens, token{
		kind:      tokenWord,
		text:      string(lx.buf),
		runes:     lx.buf,
		quoted:    lx.quoted,
		escaped:   lx.escaped,
		hasQuotes: lx.hasQuotes,
		offset:    lx.start,
	})
	lx.started = false
	lx.hasQuotes = false
	lx.buf = nil
	lx.quoted = nil
	lx.escaped = nil
}

func (lx *lexer) operator(kind tokenKind, i int, text string) {
	lx.flush()
	lx.tokens = append(lx.tokens, token{kind: kind, text: text, offset: lx.offsets[i]})
}

// tokenize splits input into words and operators.
func tokenize(input string) ([]token, error) {
	lx := newLexer(input)
	state := stateOutside
	escaping := false
	quoteStart := 0
	escapeStart := 0

	for i := 0; i < len(lx.runes); i++ {
		r := lx.runes[i]
		switch state {
		case stateOutside:
			if escaping {
				lx.appendRune(i, r, false, true)
				escaping = false
				continue
			}
			switch {
			case unicode.IsSpace(r):
				lx.flush()
			case r == '\'' || r == '"':
				lx.begin(i)
				lx.hasQuotes = true
				quoteStart = i
				state = stateSingleQuote
				if r == '"' {
					state = stateDoubleQuote
				}
			case r == '\\':
				lx.begin(i)
				escapeStart = i
				escaping = true
			case r == '|':
				lx.operator(tokenPipe, i, "|")
			case r == '<':
				lx.operator(tokenRedirectIn, i, "<")
			case r == '>':
				if i+1 < len(lx.runes) && lx.runes[i+1] == '>' {
					lx.operator(tokenRedirectAppend, i, ">>")
					i++
				} else {
					lx.operator(tokenRedirectOut, i, ">")
				}
			default:
				lx.appendRune(i, r, false, false)
			}

		case stateSingleQuote:
			if r == '\'' {
				state = stateOutside
			} else {
				lx.appendRune(i, r, true, false)
			}

		case stateDoubleQuote:
			if escaping {
				if r != '"' && r != '\\' {
					lx.appendRune(i, '\\', true, false)
				}
				lx.appendRune(i, r, true, true)
				escaping = false
				continue
			}
			switch r {
			case '"':
				state = stateOutside
			case '\\':
				escapeStart = i
				escaping = true
			default:
				lx.appendRune(i, r, true, false)
			}
		}
	}

	if state != stateOutside {
		offset := lx.offsets[quoteStart]
		return nil, &ParseError{Message: "unterminated quote", Fragment: input[offset:], Offset: offset}
	}
	if escaping {
		offset := lx.offsets[escapeStart]
		return nil, &ParseError{Message: "dangling escape character", Fragment: input[offset:], Offset: offset}
	}
	lx.flush()

	return lx.tokens, nil
}
