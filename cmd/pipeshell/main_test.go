package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pipeshell/internal/services"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes the CLI in a temporary working directory with deterministic settings.
func runCLI(t *testing.T, dir string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--workdir", dir, "--home", dir, "--test-mode"}, args...)
	code := execute(full, io.NopCloser(strings.NewReader("")), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_Echo(t *testing.T) {
	res := runCLI(t, t.TempDir(), "run", "echo hello")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "hello\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRun_JoinsArguments(t *testing.T) {
	res := runCLI(t, t.TempDir(), "run", "echo", "a", "b")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "a b\n", res.stdout)
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()

	res := runCLI(t, dir, "run", "echo hi | grep -p zzz")
	assert.Equal(t, 3, res.code)
	assert.Empty(t, res.stdout)

	res = runCLI(t, dir, "run", "echo hi --bogus")
	assert.Equal(t, 2, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "echo: unknown option: --bogus\n\n"), res.stderr)
	assert.Contains(t, res.stderr, "Usage: echo")

	res = runCLI(t, dir, "run", "cat < missing.txt")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "File not found: "+filepath.Join(dir, "missing.txt"))

	res = runCLI(t, dir, "run", `echo "open`)
	assert.Equal(t, 2, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "parse error: "), res.stderr)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.psh")
	require.NoError(t, os.WriteFile(script, []byte("# build a file\necho one > out.txt\necho two >> out.txt\n\ncat out.txt | head -n 1\n"), 0644))

	res := runCLI(t, dir, "batch", script)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "one\n", res.stdout)

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestBatch_StopsOrContinues(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.psh")
	require.NoError(t, os.WriteFile(script, []byte("echo first\nnosuchcommand\necho last\n"), 0644))

	res := runCLI(t, dir, "batch", script)
	assert.Equal(t, 2, res.code)
	assert.Equal(t, "first\n", res.stdout)

	res = runCLI(t, dir, "batch", "--continue-on-error", script)
	assert.Equal(t, 2, res.code)
	assert.Equal(t, "first\nlast\n", res.stdout)
}

func TestBatch_MissingScript(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "batch", filepath.Join(dir, "nope.psh"))
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "script file does not exist")
}

func TestCommands(t *testing.T) {
	res := runCLI(t, t.TempDir(), "commands")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Available commands:")
	assert.Contains(t, res.stdout, "grep")

	res = runCLI(t, t.TempDir(), "commands", "--yaml")
	require.Equal(t, 0, res.code, res.stderr)
	var docs []services.CommandDoc
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &docs))
	names := make([]string, len(docs))
	for i, doc := range docs {
		names[i] = doc.Name
	}
	assert.Contains(t, names, "echo")
	assert.Contains(t, names, "diff")
}

func TestHelp(t *testing.T) {
	res := runCLI(t, t.TempDir(), "help", "grep")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Usage: grep --pattern <string>")

	res = runCLI(t, t.TempDir(), "help", "batch")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "--continue-on-error")

	res = runCLI(t, t.TempDir(), "help", "nothing")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "unknown command: nothing")
}

func TestVersion(t *testing.T) {
	res := runCLI(t, t.TempDir(), "version")
	assert.Equal(t, 0, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "pipeshell v"), res.stdout)
}

func TestInvalidWorkdir(t *testing.T) {
	res := runCLI(t, filepath.Join(t.TempDir(), "missing"), "run", "pwd")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "working directory does not exist")
}

func TestBatch_ReadsStandardInput(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	script := io.NopCloser(strings.NewReader("# comment\necho one\n\necho two\n"))
	code := execute([]string{"--workdir", dir, "--home", dir, "--test-mode", "batch", "-"}, script, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "one\ntwo\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_KeepsArgumentBoundaries(t *testing.T) {
	dir := t.TempDir()

	res := runCLI(t, dir, "run", "echo", "a  b", "it's")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "a  b it's\n", res.stdout)

	res = runCLI(t, dir, "run", "--", "echo", "x y", "|", "grep", "--pattern", "x y")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "x y\n", res.stdout)
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "single argument is the line", args: []string{"echo a | grep a"}, want: "echo a | grep a"},
		{name: "plain words", args: []string{"echo", "hello"}, want: "echo hello"},
		{name: "word with spaces", args: []string{"echo", "a b"}, want: "echo 'a b'"},
		{name: "operators kept", args: []string{"echo", "a", "|", "grep", "-p", "a", ">", "out.txt"}, want: "echo a | grep -p a > out.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandLine(tt.args))
		})
	}
}
