package binder

import (
	"fmt"

	"github.com/charmbracelet/log"

	"pipeshell/internal/commands"
	"pipeshell/internal/logger"
	"pipeshell/internal/parser"
)

// Binder resolves parsed pipelines against a registry.
type Binder struct {
	registry *commands.Registry
	log      *log.Logger
}

// New creates a binder over registry; nil means the global registry.
func New(registry *commands.Registry) *Binder {
	if registry == nil {
		registry = commands.GlobalRegistry
	}
	return &Binder{
		registry: registry,
		log:      logger.NewStyledLogger("Binder"),
	}
}

// Bind binds every stage of pipeline in order. The first failing stage aborts binding
// with a *BindError; no command runs.
func (b *Binder) Bind(pipeline *parser.ParsedPipeline) (*BoundPipeline, error) {
	stages := pipeline.Commands()
	bound := make([]*BoundCommand, 0, len(stages))
	for i, stage := range stages {
		cmd, err := b.bindStage(i, stage)
		if err != nil {
			b.log.Debug("Bind failed", "stage", i, "error", err)
			return nil, err
		}
		bound = append(bound, cmd)
	}
	return &BoundPipeline{commands: bound}, nil
}

func (b *Binder) bindStage(index int, parsed parser.ParsedCommand) (*BoundCommand, error) {
	meta, ok := b.registry.TryGet(parsed.Name())
	if !ok {
		message := "unknown command"
		if suggestion, found := b.registry.Suggest(parsed.Name()); found {
			message += fmt.Sprintf(" (did you mean %q?)", suggestion)
		}
		return nil, &BindError{
			Command: parsed.Name(),
			Message: message,
			Help:    b.registry.GenerateGlobalHelp(),
		}
	}

	fail := func(format string, args ...any) error {
		return &BindError{
			Command: meta.Name(),
			Message: fmt.Sprintf(format, args...),
			Help:    meta.GenerateHelp(),
		}
	}

	redirections := parsed.Redirections()
	switch {
	case redirections.StdinCount > 1:
		return nil, fail("stdin redirected more than once")
	case redirections.StdoutCount > 1:
		return nil, fail("stdout redirected more than once")
	case index > 0 && redirections.HasStdin():
		return nil, fail("stdin can only be redirected on the first command of a pipeline")
	}

	cmd := meta.NewInstance()
	set := make(map[string]bool)
	var recovered []string

	for _, occurrence := range parsed.Options() {
		var opt *commands.OptionMetadata
		if occurrence.Long {
			opt, ok = meta.LookupLong(occurrence.Name)
		} else {
			opt, ok = meta.LookupShort(occurrence.Name)
		}
		if !ok {
			return nil, fail("unknown option: %s", occurrence.Flag())
		}

		flag := "--" + opt.LongName
		if opt.Type.List && set[opt.LongName] {
			return nil, fail("option %s may only be given once", flag)
		}

		if opt.Type.IsBool() {
			if occurrence.Separator == parser.SeparatorEquals {
				return nil, fail("option %s does not take a value", flag)
			}
			if err := opt.Set(cmd, true); err != nil {
				return nil, fail("cannot set %s: %v", flag, err)
			}
			if occurrence.HasValue && occurrence.Separator == parser.SeparatorWhitespace {
				recovered = append(recovered, occurrence.Value)
			}
			set[opt.LongName] = true
			continue
		}

		if !occurrence.HasValue {
			return nil, fail("missing value for %s", flag)
		}
		value, reason := convert(opt, occurrence.Value, occurrence.Quoted)
		if reason != "" {
			return nil, fail("invalid value for %s: %s", flag, reason)
		}
		if err := opt.Set(cmd, value); err != nil {
			return nil, fail("cannot set %s: %v", flag, err)
		}
		set[opt.LongName] = true
	}

	for _, opt := range meta.RequiredOptions() {
		if !set[opt.LongName] {
			return nil, fail("missing required option --%s", opt.LongName)
		}
	}

	arguments := append(recovered, parsed.Arguments()...)
	b.log.Debug("Bound command", "command", meta.Name(), "args", arguments)
	return &BoundCommand{
		command:      cmd,
		metadata:     meta,
		arguments:    arguments,
		redirections: redirections,
	}, nil
}
