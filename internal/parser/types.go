// Package parser turns one line of input into a pipeline of parsed commands.
// It handles quoting, escaping, pipes, redirections and option recognition, but knows
// nothing about which commands or options exist; that is the binder's job.
package parser

// RedirectMode describes how a stage's stdout is redirected.
type RedirectMode int

const (
	// RedirectNone leaves stdout attached to the pipeline.
	RedirectNone RedirectMode = iota
	// RedirectTruncate writes stdout to a file, replacing its content (>).
	RedirectTruncate
	// RedirectAppend appends stdout to a file (>>).
	RedirectAppend
	// RedirectInput reads stdin from a file (<). It only appears in Redirection.
	RedirectInput
)

// String returns the operator for the mode.
func (m RedirectMode) String() string {
	switch m {
	case RedirectTruncate:
		return ">"
	case RedirectAppend:
		return ">>"
	case RedirectInput:
		return "<"
	default:
		return ""
	}
}

// Separator records how an option's value was attached to it.
type Separator int

const (
	// SeparatorNone means the option carries no value.
	SeparatorNone Separator = iota
	// SeparatorWhitespace means the following word was tentatively attached.
	SeparatorWhitespace
	// SeparatorEquals means the value was written as --name=value.
	SeparatorEquals
)

// ParsedOption is a single option occurrence as written by the user.
type ParsedOption struct {
	Name      string    // Name without dashes
	Long      bool      // --name (true) or -n (false)
	HasValue  bool      // A value was attached or tentatively attached
	Value     string    // Raw value text after unquoting
	Quoted    bool      // Any part of the value came from a quoted span
	Separator Separator // How the value was attached
}

// Flag returns the option as it appears on the command line, e.g. "--name" or "-n".
func (o ParsedOption) Flag() string {
	if o.Long {
		return "--" + o.Name
	}
	return "-" + o.Name
}

// Redirection is one redirection occurrence.
type Redirection struct {
	Mode RedirectMode
	Path string
}

// ParsedRedirections holds the redirections of a single stage.
// The first occurrence of each redirection wins; the counters let later phases reject
// duplicates.
type ParsedRedirections struct {
	Stdin       string
	Stdout      string
	StdoutMode  RedirectMode
	StdinCount  int
	StdoutCount int
	// Extra lists the occurrences after the first of each stream, in input order.
	Extra []Redirection
}

func (r ParsedRedirections) clone() ParsedRedirections {
	r.Extra = append([]Redirection(nil), r.Extra...)
	return r
}

// HasStdin reports whether stdin was redirected from a file.
func (r ParsedRedirections) HasStdin() bool {
	return r.StdinCount > 0
}

// HasStdout reports whether stdout was redirected to a file.
func (r ParsedRedirections) HasStdout() bool {
	return r.StdoutCount > 0 && r.StdoutMode != RedirectNone
}

// ParsedCommand is one stage of a parsed pipeline. It is immutable: accessors return copies.
type ParsedCommand struct {
	name         string
	options      []ParsedOption
	arguments    []string
	redirections ParsedRedirections
}

// NewParsedCommand builds a ParsedCommand from its parts. The slices are copied.
func NewParsedCommand(name string, options []ParsedOption, arguments []string, redirections ParsedRedirections) ParsedCommand {
	return ParsedCommand{
		name:         name,
		options:      append([]ParsedOption(nil), options...),
		arguments:    append([]string(nil), arguments...),
		redirections: redirections.clone(),
	}
}

// Name returns the command name.
func (c ParsedCommand) Name() string {
	return c.name
}

// Options returns the option occurrences in input order.
func (c ParsedCommand) Options() []ParsedOption {
	return append([]ParsedOption(nil), c.options...)
}

// Arguments returns the positional arguments in input order.
func (c ParsedCommand) Arguments() []string {
	return append([]string(nil), c.arguments...)
}

// Redirections returns the stage's redirections.
func (c ParsedCommand) Redirections() ParsedRedirections {
	return c.redirections.clone()
}

// ParsedPipeline is the ordered list of stages parsed from one input line.
type ParsedPipeline struct {
	commands []ParsedCommand
}

// NewParsedPipeline builds a pipeline from stages. No stages means an empty pipeline.
func NewParsedPipeline(commands ...ParsedCommand) *ParsedPipeline {
	return &ParsedPipeline{commands: append([]ParsedCommand(nil), commands...)}
}

// Commands returns the stages in order.
func (p *ParsedPipeline) Commands() []ParsedCommand {
	return append([]ParsedCommand(nil), p.commands...)
}

// Len returns the number of stages.
func (p *ParsedPipeline) Len() int {
	return len(p.commands)
}

// IsEmpty reports whether the input was blank.
func (p *ParsedPipeline) IsEmpty() bool {
	return len(p.commands) == 0
}
