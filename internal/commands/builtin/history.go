package builtin

import (
	"context"
	"fmt"

	"pipeshell/internal/commands"
	"pipeshell/pkg/shelltypes"
)

// HistoryCommand prints the session history, oldest first, numbered from 1.
type HistoryCommand struct {
	Limit int
}

// Execute prints all entries, or only the last Limit ones when Limit is positive.
func (c *HistoryCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	if c.Limit < 0 {
		return usageFailure(ctx, ec, fmt.Sprintf("history: invalid limit: %d", c.Limit))
	}
	if ec.History == nil {
		return shelltypes.ExitSuccess, nil
	}

	entries := ec.History()
	start := 0
	if c.Limit > 0 && len(entries) > c.Limit {
		start = len(entries) - c.Limit
	}
	for i := start; i < len(entries); i++ {
		if err := ec.Stdout.WriteLine(ctx, fmt.Sprintf("%5d  %s", i+1, entries[i])); err != nil {
			return shelltypes.ExitRuntimeError, err
		}
	}
	return shelltypes.ExitSuccess, nil
}

func init() {
	spec := commands.Define("history", "Show previously executed command lines", func() *HistoryCommand { return &HistoryCommand{} }).
		Int("limit", 'l', "show only the most recent entries", func(c *HistoryCommand) *int { return &c.Limit })
	if _, err := commands.GlobalRegistry.Register(spec); err != nil {
		panic(fmt.Sprintf("failed to register history command: %v", err))
	}
}
