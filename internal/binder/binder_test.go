package binder

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeshell/internal/commands"
	"pipeshell/internal/parser"
	"pipeshell/pkg/shelltypes"
)

type level int

const (
	levelLow level = iota
	levelHigh
)

var levelEnum = commands.NewEnum[level]("Level", "low", "high")

type sampleCommand struct {
	Name    string
	Count   int
	Ratio   float32
	Weight  float64
	Verbose bool
	Quiet   bool
	Tags    []string
	Sizes   []int
	Scales  []float32
	Level   level
	Levels  []level
}

func (c *sampleCommand) Execute(context.Context, *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	return shelltypes.ExitSuccess, nil
}

type strictCommand struct {
	Target string
	Force  bool
}

func (c *strictCommand) Execute(context.Context, *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	return shelltypes.ExitSuccess, nil
}

func newTestBinder(t *testing.T) *Binder {
	t.Helper()
	registry := commands.NewRegistry()

	sample := commands.Define("sample", "Sample command", func() *sampleCommand { return &sampleCommand{Count: 1} }).
		String("name", 'N', "a name", func(c *sampleCommand) *string { return &c.Name }).
		Int("count", 'c', "a count", func(c *sampleCommand) *int { return &c.Count }).
		Float("ratio", 0, "a ratio", func(c *sampleCommand) *float32 { return &c.Ratio }).
		Double("weight", 'w', "a weight", func(c *sampleCommand) *float64 { return &c.Weight }).
		Bool("verbose", 'v', "talk more", func(c *sampleCommand) *bool { return &c.Verbose }).
		Bool("quiet", 'q', "talk less", func(c *sampleCommand) *bool { return &c.Quiet }).
		StringList("tags", 't', "tags", func(c *sampleCommand) *[]string { return &c.Tags }).
		IntList("sizes", 0, "sizes", func(c *sampleCommand) *[]int { return &c.Sizes }).
		FloatList("scales", 0, "scales", func(c *sampleCommand) *[]float32 { return &c.Scales })
	sample = commands.Enum(sample, "level", 'l', "a level", levelEnum, func(c *sampleCommand) *level { return &c.Level })
	sample = commands.EnumList(sample, "levels", 0, "levels", levelEnum, func(c *sampleCommand) *[]level { return &c.Levels })
	registry.MustRegister(sample)

	registry.MustRegister(commands.Define("strict", "Needs a target", func() *strictCommand { return &strictCommand{} }).
		String("target", 'T', "where to go", func(c *strictCommand) *string { return &c.Target }, commands.Required()).
		Bool("force", 'f', "do it anyway", func(c *strictCommand) *bool { return &c.Force }))

	return New(registry)
}

func bindLine(t *testing.T, b *Binder, line string) (*BoundPipeline, error) {
	t.Helper()
	pipeline, err := parser.Parse(line)
	require.NoError(t, err)
	return b.Bind(pipeline)
}

func bindSample(t *testing.T, line string) (*sampleCommand, []string) {
	t.Helper()
	bound, err := bindLine(t, newTestBinder(t), line)
	require.NoError(t, err)
	require.Equal(t, 1, bound.Len())
	stage := bound.Commands()[0]
	return stage.Command().(*sampleCommand), stage.Arguments()
}

func requireBindError(t *testing.T, err error) *BindError {
	t.Helper()
	require.Error(t, err)
	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	return bindErr
}

func TestBind_EmptyPipeline(t *testing.T) {
	bound, err := newTestBinder(t).Bind(parser.NewParsedPipeline())
	require.NoError(t, err)
	assert.True(t, bound.IsEmpty())
}

func TestBind_ScalarConversions(t *testing.T) {
	cmd, args := bindSample(t, "sample --name alice -c 42 --ratio=0.5 -w -2.25 --level HIGH rest")

	assert.Equal(t, "alice", cmd.Name)
	assert.Equal(t, 42, cmd.Count)
	assert.Equal(t, float32(0.5), cmd.Ratio)
	assert.Equal(t, -2.25, cmd.Weight)
	assert.Equal(t, levelHigh, cmd.Level)
	assert.Equal(t, []string{"rest"}, args)
}

func TestBind_DefaultsFromFactorySurvive(t *testing.T) {
	cmd, _ := bindSample(t, "sample")
	assert.Equal(t, 1, cmd.Count)
	assert.False(t, cmd.Verbose)
}

func TestBind_FreshInstancePerStage(t *testing.T) {
	bound, err := bindLine(t, newTestBinder(t), "sample -v | sample")
	require.NoError(t, err)
	require.Equal(t, 2, bound.Len())

	first := bound.Commands()[0].Command().(*sampleCommand)
	second := bound.Commands()[1].Command().(*sampleCommand)
	assert.NotSame(t, first, second)
	assert.True(t, first.Verbose)
	assert.False(t, second.Verbose)
}

func TestBind_BooleanRecoversPositional(t *testing.T) {
	cmd, args := bindSample(t, "sample --verbose foo")
	assert.True(t, cmd.Verbose)
	assert.Equal(t, []string{"foo"}, args)
}

func TestBind_RecoveredArgumentsComeFirst(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "sample -v a b c", want: []string{"a", "b", "c"}},
		{line: "sample -v a -q b c", want: []string{"a", "b", "c"}},
		{line: "sample --name x p1 -v r1 p2", want: []string{"r1", "p1", "p2"}},
		{line: `sample -q "quoted word" tail`, want: []string{"quoted word", "tail"}},
		{line: "sample -- -v --name", want: []string{"-v", "--name"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, args := bindSample(t, tt.line)
			if diff := cmp.Diff(tt.want, args); diff != "" {
				t.Errorf("arguments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBind_Lists(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		tags   []string
		sizes  []int
		levels []level
	}{
		{name: "unquoted splits", line: "sample --tags a,b,c", tags: []string{"a", "b", "c"}},
		{name: "quoted stays whole", line: `sample --tags "a,b,c"`, tags: []string{"a,b,c"}},
		{name: "quoted equals value stays whole", line: `sample --tags='a,b'`, tags: []string{"a,b"}},
		{name: "partly quoted stays whole", line: `sample --tags=a,"b c"`, tags: []string{`a,b c`}},
		{name: "single element", line: "sample -t one", tags: []string{"one"}},
		{name: "empty value", line: "sample --tags=", tags: []string{}},
		{name: "int list", line: "sample --sizes 1,2,3", sizes: []int{1, 2, 3}},
		{name: "enum list", line: "sample --levels high,LOW", levels: []level{levelHigh, levelLow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := bindSample(t, tt.line)
			if tt.tags != nil {
				assert.Equal(t, tt.tags, cmd.Tags)
			}
			if tt.sizes != nil {
				assert.Equal(t, tt.sizes, cmd.Sizes)
			}
			if tt.levels != nil {
				assert.Equal(t, tt.levels, cmd.Levels)
			}
		})
	}
}

func TestBind_Errors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		command string
		message string
	}{
		{name: "unknown long option", line: "sample --times=2", command: "sample", message: "unknown option: --times"},
		{name: "unknown short option", line: "sample -x", command: "sample", message: "unknown option: -x"},
		{name: "repeated list option", line: "sample --tags a --tags b", command: "sample", message: "option --tags may only be given once"},
		{name: "repeated list option by short name", line: "sample --tags a -t b", command: "sample", message: "option --tags may only be given once"},
		{name: "bool with equals value", line: "sample --verbose=yes", command: "sample", message: "option --verbose does not take a value"},
		{name: "missing value", line: "sample --count", command: "sample", message: "missing value for --count"},
		{name: "missing value before option", line: "sample --name -v", command: "sample", message: "missing value for --name"},
		{name: "bad int", line: "sample --count abc", command: "sample", message: `invalid value for --count: "abc" is not a valid int`},
		{name: "int overflow", line: "sample --count 99999999999999999999", command: "sample", message: "is not a valid int"},
		{name: "bad float", line: "sample --ratio x", command: "sample", message: `invalid value for --ratio: "x" is not a valid float`},
		{name: "bad double", line: "sample -w 1,5", command: "sample", message: `invalid value for --weight: "1,5" is not a valid double`},
		{name: "double with digit separators", line: "sample --weight=1_000.5", command: "sample", message: `invalid value for --weight: "1_000.5" is not a valid double`},
		{name: "hexadecimal double", line: "sample --weight=0x1p4", command: "sample", message: `invalid value for --weight: "0x1p4" is not a valid double`},
		{name: "negative hexadecimal double", line: "sample --weight=-0X1p4", command: "sample", message: `"-0X1p4" is not a valid double`},
		{name: "float with digit separators", line: "sample --ratio=1_0", command: "sample", message: `invalid value for --ratio: "1_0" is not a valid float`},
		{name: "hexadecimal float", line: "sample --ratio=0x10", command: "sample", message: `invalid value for --ratio: "0x10" is not a valid float`},
		{name: "bad list element", line: "sample --sizes 1,x", command: "sample", message: `invalid value for --sizes: "x" is not a valid int`},
		{name: "bad enum", line: "sample --level mid", command: "sample", message: `invalid value for --level: "mid" (valid values: low, high)`},
		{name: "missing required", line: "strict --force", command: "strict", message: "missing required option --target"},
		{name: "duplicate stdin", line: "sample < a < b", command: "sample", message: "stdin redirected more than once"},
		{name: "duplicate stdout", line: "sample > a >> b", command: "sample", message: "stdout redirected more than once"},
		{name: "stdin on later stage", line: "sample | sample < in.txt", command: "sample", message: "stdin can only be redirected on the first command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bindLine(t, newTestBinder(t), tt.line)
			bindErr := requireBindError(t, err)
			assert.Equal(t, tt.command, bindErr.Command)
			assert.Contains(t, bindErr.Message, tt.message)
			assert.Contains(t, bindErr.Help, "Usage: "+tt.command)
		})
	}
}

func TestBind_UnknownCommand(t *testing.T) {
	_, err := bindLine(t, newTestBinder(t), "sampel --verbose")
	bindErr := requireBindError(t, err)

	assert.Equal(t, "sampel", bindErr.Command)
	assert.Contains(t, bindErr.Message, "unknown command")
	assert.Contains(t, bindErr.Message, `did you mean "sample"?`)
	assert.Contains(t, bindErr.Help, "Available commands:")
	assert.Equal(t, `sampel: unknown command (did you mean "sample"?)`, bindErr.Error())
}

func TestBind_FailureInLaterStageAbortsWholePipeline(t *testing.T) {
	bound, err := bindLine(t, newTestBinder(t), "sample -v | nope")
	assert.Nil(t, bound)
	bindErr := requireBindError(t, err)
	assert.Equal(t, "nope", bindErr.Command)
}

func TestBind_RequiredSatisfiedByShortName(t *testing.T) {
	bound, err := bindLine(t, newTestBinder(t), "strict -T home -f")
	require.NoError(t, err)
	cmd := bound.Commands()[0].Command().(*strictCommand)
	assert.Equal(t, "home", cmd.Target)
	assert.True(t, cmd.Force)
}

func TestBind_CaseInsensitiveNames(t *testing.T) {
	bound, err := bindLine(t, newTestBinder(t), "SAMPLE --VERBOSE -C 3")
	require.NoError(t, err)
	stage := bound.Commands()[0]
	assert.Equal(t, "sample", stage.Name())
	cmd := stage.Command().(*sampleCommand)
	assert.True(t, cmd.Verbose)
	assert.Equal(t, 3, cmd.Count)
}

func TestBind_KeepsRedirections(t *testing.T) {
	bound, err := bindLine(t, newTestBinder(t), "sample < in.txt | sample >> out.txt")
	require.NoError(t, err)

	stages := bound.Commands()
	assert.Equal(t, "in.txt", stages[0].Redirections().Stdin)
	assert.Equal(t, "out.txt", stages[1].Redirections().Stdout)
	assert.Equal(t, parser.RedirectAppend, stages[1].Redirections().StdoutMode)
}
