package commands

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeshell/pkg/shelltypes"
)

type mode int

const (
	modeFast mode = iota
	modeSafe
)

var modeEnum = NewEnum[mode]("Mode", "fast", "safe")

// gaugeCommand declares one option of every kind.
type gaugeCommand struct {
	Name    string
	Count   int
	Ratio   float32
	Weight  float64
	Verbose bool
	Tags    []string
	Sizes   []int
	Scales  []float32
	Offsets []float64
	Mode    mode
	Modes   []mode
}

func (c *gaugeCommand) Execute(_ context.Context, _ *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	return shelltypes.ExitSuccess, nil
}

func gaugeSpec() *Spec[*gaugeCommand] {
	spec := Define("gauge", "Exercise every option kind", func() *gaugeCommand { return &gaugeCommand{} }).
		String("name", 'N', "a name", func(c *gaugeCommand) *string { return &c.Name }, Required()).
		Int("count", 'c', "a count", func(c *gaugeCommand) *int { return &c.Count }).
		Float("ratio", 0, "a ratio", func(c *gaugeCommand) *float32 { return &c.Ratio }).
		Double("weight", 0, "a weight", func(c *gaugeCommand) *float64 { return &c.Weight }).
		Bool("verbose", 'v', "talk more", func(c *gaugeCommand) *bool { return &c.Verbose }).
		StringList("tags", 't', "tags", func(c *gaugeCommand) *[]string { return &c.Tags }).
		IntList("sizes", 0, "sizes", func(c *gaugeCommand) *[]int { return &c.Sizes }).
		FloatList("scales", 0, "scales", func(c *gaugeCommand) *[]float32 { return &c.Scales }).
		DoubleList("offsets", 0, "offsets", func(c *gaugeCommand) *[]float64 { return &c.Offsets })
	spec = Enum(spec, "mode", 'm', "run mode", modeEnum, func(c *gaugeCommand) *mode { return &c.Mode })
	return EnumList(spec, "modes", 0, "run modes", modeEnum, func(c *gaugeCommand) *[]mode { return &c.Modes })
}

type otherCommand struct{}

func (c *otherCommand) Execute(_ context.Context, _ *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	return shelltypes.ExitSuccess, nil
}

func TestRegistry_NewRegistry(t *testing.T) {
	registry := NewRegistry()
	assert.NotNil(t, registry)
	assert.Empty(t, registry.Names())
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	meta, err := registry.Register(gaugeSpec())
	require.NoError(t, err)
	assert.Equal(t, "gauge", meta.Name())
	assert.Equal(t, "Exercise every option kind", meta.Description())
	assert.Len(t, meta.Options(), 11)

	found, ok := registry.TryGet("gauge")
	require.True(t, ok)
	assert.Same(t, meta, found)
}

func TestRegistry_Register_IdempotentPerType(t *testing.T) {
	registry := NewRegistry()

	first, err := registry.Register(gaugeSpec())
	require.NoError(t, err)
	second, err := registry.Register(gaugeSpec())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, []string{"gauge"}, registry.Names())
}

func TestRegistry_Register_DuplicateName(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Register(gaugeSpec())
	require.NoError(t, err)

	_, err = registry.Register(Define("GAUGE", "clash", func() *otherCommand { return &otherCommand{} }))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Register_InvalidDeclarations(t *testing.T) {
	factory := func() *otherCommand { return &otherCommand{} }
	var flag bool
	field := func(*otherCommand) *bool { return &flag }

	tests := []struct {
		name    string
		def     Definition
		wantErr string
	}{
		{
			name:    "empty name",
			def:     Define("", "x", factory),
			wantErr: "command name cannot be empty",
		},
		{
			name:    "reserved characters",
			def:     Define("a|b", "x", factory),
			wantErr: "reserved characters",
		},
		{
			name:    "nil factory",
			def:     Define[*otherCommand]("other", "x", nil),
			wantErr: "has no factory",
		},
		{
			name:    "duplicate long name ignoring case",
			def:     Define("other", "x", factory).Bool("all", 0, "", field).Bool("ALL", 0, "", field),
			wantErr: "declares option --ALL twice",
		},
		{
			name:    "duplicate short name ignoring case",
			def:     Define("other", "x", factory).Bool("all", 'a', "", field).Bool("any", 'A', "", field),
			wantErr: "declares option -A twice",
		},
		{
			name:    "option name with equals",
			def:     Define("other", "x", factory).Bool("a=b", 0, "", field),
			wantErr: "invalid option name",
		},
		{
			name:    "dash as short name",
			def:     Define("other", "x", factory).Bool("all", '-', "", field),
			wantErr: "invalid short name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry().Register(tt.def)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_MustRegisterPanicsOnConfigurationError(t *testing.T) {
	registry := NewRegistry()
	assert.Panics(t, func() {
		registry.MustRegister(Define("", "x", func() *otherCommand { return &otherCommand{} }))
	})
}

func TestRegistry_TryGet_CaseInsensitive(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(gaugeSpec())

	_, ok := registry.TryGet("GaUgE")
	assert.True(t, ok)
	_, ok = registry.TryGet("missing")
	assert.False(t, ok)
}

func TestCommandMetadata_OptionLookup(t *testing.T) {
	meta := NewRegistry().MustRegister(gaugeSpec())

	opt, ok := meta.LookupLong("VERBOSE")
	require.True(t, ok)
	assert.Equal(t, "verbose", opt.LongName)
	assert.True(t, opt.Type.IsBool())

	opt, ok = meta.LookupShort("n")
	require.True(t, ok)
	assert.Equal(t, "name", opt.LongName)
	assert.True(t, opt.Required)

	_, ok = meta.LookupLong("nope")
	assert.False(t, ok)

	required := meta.RequiredOptions()
	require.Len(t, required, 1)
	assert.Equal(t, "name", required[0].LongName)
}

func TestOptionMetadata_SetAndGet(t *testing.T) {
	meta := NewRegistry().MustRegister(gaugeSpec())
	cmd := meta.NewInstance()

	set := func(long string, value any) {
		opt, ok := meta.LookupLong(long)
		require.True(t, ok, long)
		require.NoError(t, opt.Set(cmd, value), long)
	}
	set("name", "alpha")
	set("count", 3)
	set("ratio", float32(0.5))
	set("weight", 2.25)
	set("verbose", true)
	set("tags", []string{"a", "b"})
	set("sizes", []int{1, 2})
	set("scales", []float32{1.5})
	set("offsets", []float64{-1})
	set("mode", int(modeSafe))
	set("modes", []int{int(modeSafe), int(modeFast)})

	gauge := cmd.(*gaugeCommand)
	assert.Equal(t, "alpha", gauge.Name)
	assert.Equal(t, 3, gauge.Count)
	assert.Equal(t, float32(0.5), gauge.Ratio)
	assert.Equal(t, 2.25, gauge.Weight)
	assert.True(t, gauge.Verbose)
	assert.Equal(t, []string{"a", "b"}, gauge.Tags)
	assert.Equal(t, []int{1, 2}, gauge.Sizes)
	assert.Equal(t, []float32{1.5}, gauge.Scales)
	assert.Equal(t, []float64{-1}, gauge.Offsets)
	assert.Equal(t, modeSafe, gauge.Mode)
	assert.Equal(t, []mode{modeSafe, modeFast}, gauge.Modes)

	opt, _ := meta.LookupLong("count")
	assert.Equal(t, 3, opt.Get(cmd))
}

func TestOptionMetadata_SetRejectsWrongType(t *testing.T) {
	meta := NewRegistry().MustRegister(gaugeSpec())
	opt, _ := meta.LookupLong("count")

	err := opt.Set(meta.NewInstance(), "three")
	require.Error(t, err)

	err = opt.Set(&otherCommand{}, 3)
	require.Error(t, err)
}

func TestCommandMetadata_NewInstanceIsFresh(t *testing.T) {
	meta := NewRegistry().MustRegister(gaugeSpec())
	first := meta.NewInstance()
	second := meta.NewInstance()
	assert.NotSame(t, first, second)
}

func TestEnumTable(t *testing.T) {
	table := modeEnum.Table()
	assert.Equal(t, "Mode", table.TypeName())
	assert.Equal(t, []string{"fast", "safe"}, table.Names())

	v, ok := table.Parse("SAFE")
	require.True(t, ok)
	assert.Equal(t, int(modeSafe), v)

	_, ok = table.Parse("slow")
	assert.False(t, ok)

	assert.Equal(t, "safe", modeEnum.Name(modeSafe))
	assert.Equal(t, "Mode(7)", table.Name(7))

	assert.Panics(t, func() { NewEnum[mode]("Dup", "a", "A") })
}

func TestRegistry_Suggest(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(gaugeSpec())

	name, ok := registry.Suggest("gaug")
	require.True(t, ok)
	assert.Equal(t, "gauge", name)

	_, ok = registry.Suggest("completely-different")
	assert.False(t, ok)
}

func TestCompletion(t *testing.T) {
	registry := NewRegistry()
	meta := registry.MustRegister(gaugeSpec())

	assert.Equal(t, []string{"gauge"}, registry.CompleteCommand("ga"))
	assert.Empty(t, registry.CompleteCommand("x"))

	assert.Equal(t, []string{"--scales", "--sizes"}, meta.CompleteOption("--s"))
	assert.Equal(t, []string{"-v"}, meta.CompleteOption("-v"))
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(gaugeSpec())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				meta, ok := registry.TryGet("gauge")
				assert.True(t, ok)
				assert.Equal(t, "gauge", meta.Name())
				assert.NotEmpty(t, registry.GenerateGlobalHelp())
			}
		}()
	}
	wg.Wait()
}
