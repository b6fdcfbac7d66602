package builtin

import (
	"context"
	"fmt"
	"strings"

	"pipeshell/internal/commands"
	"pipeshell/internal/services"
	"pipeshell/pkg/shelltypes"
)

// HelpCommand prints the command list, or the help of one command.
// When a help service over the same catalog is registered its (possibly styled)
// rendering is used; otherwise the plain text from the catalog is printed.
type HelpCommand struct{}

// Execute prints the requested help.
func (c *HelpCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	if len(ec.Arguments) > 1 {
		return usageFailure(ctx, ec, "help: too many arguments")
	}
	if ec.Catalog == nil {
		return runtimeFailure(ctx, ec, "help: no command catalog available")
	}

	var text string
	if len(ec.Arguments) == 0 {
		text = c.global(ec.Catalog)
	} else {
		name := ec.Arguments[0]
		plain, ok := ec.Catalog.CommandHelp(name)
		if !ok {
			return usageFailure(ctx, ec, fmt.Sprintf("help: unknown command: %s", name))
		}
		text = c.command(ec.Catalog, name, plain)
	}

	if err := ec.Stdout.WriteLine(ctx, strings.TrimRight(text, "\n")); err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	return shelltypes.ExitSuccess, nil
}

func (c *HelpCommand) global(catalog shelltypes.Catalog) string {
	if svc, ok := helpService(catalog); ok {
		if rendered, err := svc.RenderGlobal(); err == nil {
			return rendered
		}
	}
	return catalog.GlobalHelp()
}

func (c *HelpCommand) command(catalog shelltypes.Catalog, name, plain string) string {
	if svc, ok := helpService(catalog); ok {
		if rendered, err := svc.RenderCommand(name); err == nil {
			return rendered
		}
	}
	return plain
}

// helpService returns the registered help service when it renders catalog.
func helpService(catalog shelltypes.Catalog) (*services.HelpService, bool) {
	svc, err := services.GetHelpService()
	if err != nil || !svc.Covers(catalog) {
		return nil, false
	}
	return svc, true
}

// Complete suggests command names.
func (c *HelpCommand) Complete(cc shelltypes.CompletionContext) []string {
	if cc.Catalog == nil {
		return nil
	}
	var names []string
	for _, name := range cc.Catalog.Names() {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(cc.Word)) {
			names = append(names, name)
		}
	}
	return names
}

func init() {
	if _, err := commands.GlobalRegistry.Register(commands.Define("help", "Show available commands or the help of one command", func() *HelpCommand { return &HelpCommand{} })); err != nil {
		panic(fmt.Sprintf("failed to register help command: %v", err))
	}
}
