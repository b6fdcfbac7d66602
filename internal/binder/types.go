// Package binder resolves parsed commands against the command registry. It builds a
// fresh command instance per stage, converts option values to their declared types and
// assembles the final positional arguments.
package binder

import (
	"pipeshell/internal/commands"
	"pipeshell/internal/parser"
	"pipeshell/pkg/shelltypes"
)

// BoundCommand is one stage ready to run.
type BoundCommand struct {
	command      shelltypes.Command
	metadata     *commands.CommandMetadata
	arguments    []string
	redirections parser.ParsedRedirections
}

// Command returns the configured command instance.
func (c *BoundCommand) Command() shelltypes.Command {
	return c.command
}

// Metadata returns the command's declaration.
func (c *BoundCommand) Metadata() *commands.CommandMetadata {
	return c.metadata
}

// Name returns the registered command name.
func (c *BoundCommand) Name() string {
	return c.metadata.Name()
}

// Arguments returns the positional arguments: recovered tokens first, then parsed ones.
func (c *BoundCommand) Arguments() []string {
	return append([]string(nil), c.arguments...)
}

// Redirections returns the stage's redirections.
func (c *BoundCommand) Redirections() parser.ParsedRedirections {
	return c.redirections
}

// BoundPipeline is the ordered list of bound stages; stage i comes from parsed stage i.
type BoundPipeline struct {
	commands []*BoundCommand
}

// NewBoundPipeline assembles a pipeline from already bound stages.
func NewBoundPipeline(cmds ...*BoundCommand) *BoundPipeline {
	return &BoundPipeline{commands: append([]*BoundCommand(nil), cmds...)}
}

// NewBoundCommand pairs a command instance with its metadata. Used by hosts and tests
// that construct stages without going through Bind.
func NewBoundCommand(cmd shelltypes.Command, meta *commands.CommandMetadata, args []string, redirections parser.ParsedRedirections) *BoundCommand {
	return &BoundCommand{
		command:      cmd,
		metadata:     meta,
		arguments:    append([]string(nil), args...),
		redirections: redirections,
	}
}

// Commands returns the stages in order.
func (p *BoundPipeline) Commands() []*BoundCommand {
	return append([]*BoundCommand(nil), p.commands...)
}

// Len returns the number of stages.
func (p *BoundPipeline) Len() int {
	return len(p.commands)
}

// IsEmpty reports whether there is nothing to run.
func (p *BoundPipeline) IsEmpty() bool {
	return len(p.commands) == 0
}
