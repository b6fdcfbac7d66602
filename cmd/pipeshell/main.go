// Package main provides the pipeshell CLI application entry point.
// pipeshell is an embeddable shell-like interpreter: typed commands connected by
// line-oriented pipelines with file redirections.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pipeshell/internal/commands"
	_ "pipeshell/internal/commands/builtin" // Import for side effects (init functions)
	shellcontext "pipeshell/internal/context"
	"pipeshell/internal/execution"
	"pipeshell/internal/logger"
	"pipeshell/internal/parser"
	"pipeshell/internal/services"
	"pipeshell/internal/shell"
	"pipeshell/internal/stream"
	"pipeshell/internal/version"
	"pipeshell/pkg/shelltypes"
)

// app carries the process streams and the state shared by the subcommands.
type app struct {
	stdin  io.ReadCloser
	stdout io.Writer
	stderr io.Writer

	viper      *viper.Viper
	configFile string

	config *services.ConfigurationService
	help   *services.HelpService
	interp *shell.Interpreter

	exitCode shelltypes.ExitCode
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the CLI with args and returns the process exit status.
func execute(args []string, stdin io.ReadCloser, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, viper: viper.New()}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if a.exitCode == shelltypes.ExitSuccess {
			return int(shelltypes.ExitRuntimeError)
		}
	}
	return int(a.exitCode)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pipeshell",
		Short: "pipeshell - an embeddable shell-like interpreter",
		Long: `pipeshell runs typed commands connected by line-oriented pipelines,
with POSIX-style options and file redirections.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runShell, // Default behavior is to run the interactive shell
	}

	flags := root.PersistentFlags()
	flags.String(services.KeyLogLevel, "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.String(services.KeyLogFile, "", "Write logs to file instead of stderr")
	flags.String(services.KeyWorkDir, "", "Initial working directory [default: current directory]")
	flags.String(services.KeyHome, "", "Home directory used by cd and ~ [default: user home]")
	flags.String(services.KeyColor, "", "Color mode for help and prompt (auto|always|never)")
	flags.Bool(services.KeyTestMode, false, "Run in deterministic test mode")
	flags.Bool(services.KeyShellIntegration, false, "Emit OSC 133 prompt markers in the interactive shell")
	flags.StringVar(&a.configFile, "config", "", "Read configuration from a YAML file")
	for _, key := range []string{services.KeyLogLevel, services.KeyLogFile, services.KeyWorkDir, services.KeyHome, services.KeyColor, services.KeyTestMode, services.KeyShellIntegration} {
		if err := a.viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", key, err))
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start interactive shell mode",
			Args:  cobra.NoArgs,
			RunE:  a.runShell,
		},
		&cobra.Command{
			Use:   "run <command line>",
			Short: "Execute one command line",
			Long: `Execute one command line and exit with its classification.
A single argument is read as the whole line; quote it to keep pipes and redirections
away from the calling shell: pipeshell run 'cat notes.txt | grep -p todo'.
Several arguments are joined by spaces, each word kept whole unless it contains
|, < or >: pipeshell run echo "a  b" '|' grep a
Put -- before the words when any of them starts with a dash.`,
			Args: cobra.MinimumNArgs(1),
			RunE: a.runLine,
		},
		newBatchCommand(a),
		newCommandsCommand(a),
		newVersionCommand(),
	)
	root.SetHelpCommand(newHelpCommand(a, root))
	return root
}

// setup loads configuration, configures logging and builds the interpreter.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	a.config = services.NewConfigurationService(a.viper, services.ConfigurationOptions{ConfigFile: a.configFile})
	if err := a.config.Initialize(); err != nil {
		return err
	}
	if err := logger.Configure(a.config.GetString(services.KeyLogLevel), a.config.GetString(services.KeyLogFile)); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}

	a.help = services.NewHelpService(commands.GlobalRegistry, a.colorMode())
	registry := services.NewRegistry()
	for _, svc := range []services.Service{a.config, a.help} {
		if err := registry.RegisterService(svc); err != nil {
			return err
		}
	}
	if err := registry.InitializeAll(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	services.SetGlobalRegistry(registry)

	workdir, home, err := a.directories()
	if err != nil {
		return err
	}

	cfg := shell.Config{
		Registry: commands.GlobalRegistry,
		Session:  shellcontext.NewSession(workdir, home, a.config.GetInt(services.KeyHistoryLimit)),
		Fs:       afero.NewOsFs(),
		Stdout:   stream.NewIOWriter(a.stdout),
		Stderr:   stream.NewIOWriter(a.stderr),
	}
	if a.config.GetBool(services.KeyTestMode) {
		cfg.NewRunID = execution.SequentialRunIDs()
	}
	a.interp = shell.New(cfg)
	logger.Debug("pipeshell ready", "version", version.GetVersion(), "workdir", workdir, "home", home)
	return nil
}

func (a *app) colorMode() string {
	mode := a.config.GetString(services.KeyColor)
	if a.config.GetBool(services.KeyTestMode) {
		mode = services.ColorNever
	}
	return mode
}

func (a *app) directories() (string, string, error) {
	workdir := a.config.GetString(services.KeyWorkDir)
	if workdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		workdir = wd
	}
	home := a.config.GetString(services.KeyHome)
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			dir = workdir
		}
		home = dir
	}

	workdir, err := filepath.Abs(workdir)
	if err != nil {
		return "", "", err
	}
	home, err = filepath.Abs(home)
	if err != nil {
		return "", "", err
	}
	if info, err := os.Stat(workdir); err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("working directory does not exist: %s", workdir)
	}
	return workdir, home, nil
}

func (a *app) runShell(cmd *cobra.Command, _ []string) error {
	logger.Info("Starting pipeshell", "version", version.GetVersion())
	// The REPL handles Ctrl-C per line; the process-wide interrupt must not end it.
	return shell.RunREPL(context.WithoutCancel(cmd.Context()), a.interp, shell.REPLConfig{
		Prompt: a.config.GetString(services.KeyPrompt),
		Color:  a.help.Styled(),
		Quiet:  a.config.GetBool(services.KeyTestMode),

		ShellIntegration: a.config.GetBool(services.KeyShellIntegration),

		Stdin:  a.stdin,
		Stdout: a.stdout,
		Stderr: a.stderr,
	})
}

func (a *app) runLine(cmd *cobra.Command, args []string) error {
	result, err := a.interp.Execute(cmd.Context(), commandLine(args))
	a.exitCode = result.Code
	return err
}

// commandLine rebuilds the line given to run. A single argument is the line itself.
// Otherwise every word without pipe or redirection characters is quoted so the calling
// shell's word boundaries survive.
func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	words := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, "|<>") {
			words[i] = arg
			continue
		}
		words[i] = parser.QuoteWord(arg)
	}
	return strings.Join(words, " ")
}

func newBatchCommand(a *app) *cobra.Command {
	var continueOnError bool
	batch := &cobra.Command{
		Use:   "batch <script|->",
		Short: "Execute a script file in batch mode",
		Long: `Execute a script file line by line without entering interactive mode.
Use - to read the script from standard input.
Blank lines and lines starting with # are skipped. Execution stops at the first
line that does not succeed unless --continue-on-error is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var script io.Reader = a.stdin
			if path != "-" {
				file, err := os.Open(path)
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("script file does not exist: %s", path)
					}
					return fmt.Errorf("failed to open script: %w", err)
				}
				defer file.Close()
				script = file
			}

			logger.Info("Starting batch mode", "script", path)
			result, err := shell.RunScript(cmd.Context(), a.interp, stream.NewIOReader(script), continueOnError)
			a.exitCode = result.Code
			return err
		},
	}
	batch.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep executing after a failing line")
	return batch
}

func newCommandsCommand(a *app) *cobra.Command {
	var asYAML bool
	list := &cobra.Command{
		Use:   "commands",
		Short: "List the available pipeshell commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asYAML {
				data, err := a.help.ExportYAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			text, err := a.help.RenderGlobal()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	list.Flags().BoolVar(&asYAML, "yaml", false, "Export command metadata as YAML")
	return list
}

func newHelpCommand(a *app, root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Help about pipeshell commands and CLI subcommands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return root.Help()
			}
			if _, ok := commands.GlobalRegistry.TryGet(args[0]); ok {
				text, err := a.help.RenderCommand(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			sub, _, err := root.Find(args)
			if err != nil || sub == root {
				a.exitCode = shelltypes.ExitUsageError
				return fmt.Errorf("unknown command: %s", args[0])
			}
			return sub.Help()
		},
	}
}

func newVersionCommand() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text := version.GetFormattedVersion()
			if detailed {
				text = version.GetDetailedVersion()
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "Include build and platform details")
	return cmd
}
