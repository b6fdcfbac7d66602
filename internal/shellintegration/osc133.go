// Package shellintegration emits OSC 133 semantic prompt sequences, which let terminal
// emulators recognize prompts, typed commands, command output and exit statuses.
package shellintegration

import (
	"strconv"
	"strings"
)

// OSC 133 framing.
const (
	ESC = "\033"
	BEL = "\007"
	OSC = ESC + "]"
	// ST is the alternative string terminator.
	ST = ESC + "\\"
)

// Mark identifies one OSC 133 marker.
type Mark string

// Markers, in the order a prompt cycle emits them.
const (
	PromptStart  Mark = "A"
	CommandStart Mark = "B"
	OutputStart  Mark = "C"
	CommandEnd   Mark = "D"
)

// Format renders a marker with optional parameters, terminated by BEL.
func Format(mark Mark, params ...string) string {
	sequence := OSC + "133;" + string(mark)
	if len(params) > 0 {
		sequence += ";" + strings.Join(params, ";")
	}
	return sequence + BEL
}

// Prompt wraps a prompt so the terminal sees where it starts and where input begins.
func Prompt(prompt string) string {
	return Format(PromptStart) + prompt + Format(CommandStart)
}

// Finished reports the end of a command with its exit status.
func Finished(code int) string {
	return Format(CommandEnd, strconv.Itoa(code))
}

// Sequence is a parsed OSC 133 marker.
type Sequence struct {
	Mark     Mark
	ExitCode int // Only set for CommandEnd
	Raw      string
}

// Parse reads one marker at the start of text.
func Parse(text string) (Sequence, bool) {
	prefix := OSC + "133;"
	if !strings.HasPrefix(text, prefix) {
		return Sequence{}, false
	}

	end, termLen := strings.Index(text, BEL), len(BEL)
	if st := strings.Index(text, ST); st >= 0 && (end < 0 || st < end) {
		end, termLen = st, len(ST)
	}
	if end < 0 {
		return Sequence{}, false
	}

	parts := strings.Split(text[len(prefix):end], ";")
	seq := Sequence{Mark: Mark(parts[0]), Raw: text[:end+termLen]}
	if seq.Mark == CommandEnd && len(parts) > 1 {
		if code, err := strconv.Atoi(parts[1]); err == nil {
			seq.ExitCode = code
		}
	}
	return seq, true
}

// Strip removes every OSC 133 marker from text and returns the remaining text together
// with the markers in order.
func Strip(text string) (string, []Sequence) {
	var b strings.Builder
	var found []Sequence
	for {
		i := strings.Index(text, OSC+"133;")
		if i < 0 {
			b.WriteString(text)
			return b.String(), found
		}
		b.WriteString(text[:i])
		seq, ok := Parse(text[i:])
		if !ok {
			b.WriteString(text[i:])
			return b.String(), found
		}
		found = append(found, seq)
		text = text[i+len(seq.Raw):]
	}
}
