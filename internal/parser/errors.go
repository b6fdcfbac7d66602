package parser

import "fmt"

// ParseError reports malformed input. Fragment is the offending part of the input and
// Offset its byte position.
type ParseError struct {
	Message  string
	Fragment string
	Offset   int
}

func (e *ParseError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error: %s near %q", e.Message, e.Fragment)
}
