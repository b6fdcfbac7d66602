package builtin

import (
	"context"
	"fmt"
	"regexp"

	"pipeshell/internal/commands"
	"pipeshell/pkg/shelltypes"
)

// GrepCommand prints the input lines that match a regular expression.
// It exits with ExitNoMatch when no line is selected.
type GrepCommand struct {
	Pattern    string
	IgnoreCase bool
	Invert     bool
	Count      bool
	LineNumber bool
}

// Execute filters files, or stdin, through the pattern.
func (c *GrepCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	expr := c.Pattern
	if c.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return usageFailure(ctx, ec, fmt.Sprintf("grep: invalid pattern %q: %v", c.Pattern, err))
	}

	labelled := len(ec.Arguments) > 1
	selected := 0
	code, err := forEachInput(ctx, ec, "grep", ec.Arguments, func(name string, r shelltypes.TextReader) error {
		count, lineNo := 0, 0
		for {
			line, err := r.ReadLine(ctx)
			if err != nil {
				if err = ignoreEOF(err); err != nil {
					return err
				}
				break
			}
			lineNo++
			if re.MatchString(line) == c.Invert {
				continue
			}
			count++
			if c.Count {
				continue
			}
			if c.LineNumber {
				line = fmt.Sprintf("%d:%s", lineNo, line)
			}
			if labelled {
				line = name + ":" + line
			}
			if err := ec.Stdout.WriteLine(ctx, line); err != nil {
				return err
			}
		}
		selected += count

		if !c.Count {
			return nil
		}
		out := fmt.Sprint(count)
		if labelled {
			out = name + ":" + out
		}
		return ec.Stdout.WriteLine(ctx, out)
	})
	if err != nil || code != shelltypes.ExitSuccess {
		return code, err
	}
	if selected == 0 {
		return shelltypes.ExitNoMatch, nil
	}
	return shelltypes.ExitSuccess, nil
}

// Complete suggests file names.
func (c *GrepCommand) Complete(cc shelltypes.CompletionContext) []string {
	return commands.CompletePaths(cc, false)
}

func init() {
	spec := commands.Define("grep", "Print lines matching a regular expression", func() *GrepCommand { return &GrepCommand{} }).
		String("pattern", 'p', "regular expression to search for", func(c *GrepCommand) *string { return &c.Pattern }, commands.Required()).
		Bool("ignore-case", 'i', "match without regard to case", func(c *GrepCommand) *bool { return &c.IgnoreCase }).
		Bool("invert", 'v', "select lines that do not match", func(c *GrepCommand) *bool { return &c.Invert }).
		Bool("count", 'c', "print only the number of selected lines", func(c *GrepCommand) *bool { return &c.Count }).
		Bool("line-number", 'n', "prefix lines with their line number", func(c *GrepCommand) *bool { return &c.LineNumber })
	if _, err := commands.GlobalRegistry.Register(spec); err != nil {
		panic(fmt.Sprintf("failed to register grep command: %v", err))
	}
}
