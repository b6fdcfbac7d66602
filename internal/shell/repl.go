package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"pipeshell/internal/logger"
	"pipeshell/internal/shellintegration"
	"pipeshell/internal/version"
	"pipeshell/pkg/shelltypes"
)

// REPLConfig configures the interactive loop.
type REPLConfig struct {
	Prompt      string
	Color       bool
	HistoryFile string
	// Quiet suppresses the banner.
	Quiet bool
	// ShellIntegration emits OSC 133 markers around prompts and command output.
	ShellIntegration bool

	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer
}

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)

// StylePrompt renders the prompt, colored when color is enabled.
func StylePrompt(prompt string, color bool) string {
	if !color {
		return prompt
	}
	trimmed := strings.TrimRight(prompt, " ")
	return promptStyle.Render(trimmed) + prompt[len(trimmed):]
}

// RunREPL reads lines until end of input or "exit". Ctrl-C while a line runs cancels that
// line only; Ctrl-C at the prompt discards the typed input.
func RunREPL(ctx context.Context, interp *Interpreter, cfg REPLConfig) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          StylePrompt(cfg.Prompt, cfg.Color),
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    NewCompleter(interp),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           cfg.Stdin,
		Stdout:          cfg.Stdout,
		Stderr:          cfg.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer func() {
		if err := rl.Close(); err != nil {
			logger.Debug("Failed to close line editor", "error", err)
		}
	}()

	if !cfg.Quiet {
		fmt.Fprintf(rl.Stdout(), "%s - type 'help' for commands, 'exit' to quit.\n", version.GetFormattedVersion())
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if cfg.ShellIntegration {
			fmt.Fprint(rl.Stdout(), shellintegration.Format(shellintegration.PromptStart))
		}
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}

		if cfg.ShellIntegration {
			fmt.Fprint(rl.Stdout(), shellintegration.Format(shellintegration.OutputStart))
		}
		result, err := runInterruptible(ctx, interp, line)
		if cfg.ShellIntegration {
			end := shellintegration.Finished(int(result.Code))
			if err != nil {
				end = shellintegration.Format(shellintegration.CommandEnd)
			}
			fmt.Fprint(rl.Stdout(), end)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(rl.Stderr(), "interrupted")
		}
	}
}

// runInterruptible executes line with a context that SIGINT cancels.
func runInterruptible(ctx context.Context, interp *Interpreter, line string) (shelltypes.ExecutionResult, error) {
	lineCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return interp.Execute(lineCtx, line)
}
