package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"pipeshell/internal/commands"
	"pipeshell/internal/logger"
	"pipeshell/pkg/shelltypes"
)

// HelpServiceName is the registry name of the help service.
const HelpServiceName = "help"

// Color modes accepted by NewHelpService.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// HelpService renders command help from registry metadata, either as the plain text the
// interpreter prints or as styled markdown for terminals, and exports the metadata as YAML.
type HelpService struct {
	initialized bool
	registry    *commands.Registry
	colorMode   string
	renderer    *glamour.TermRenderer
}

// NewHelpService creates a help service over registry; nil means the global registry.
func NewHelpService(registry *commands.Registry, colorMode string) *HelpService {
	if registry == nil {
		registry = commands.GlobalRegistry
	}
	return &HelpService{registry: registry, colorMode: colorMode}
}

// Covers reports whether catalog is the registry this service renders.
func (h *HelpService) Covers(catalog shelltypes.Catalog) bool {
	registry, ok := catalog.(*commands.Registry)
	return ok && registry == h.registry
}

// Name returns the service name "help" for registration
func (h *HelpService) Name() string {
	return HelpServiceName
}

// Initialize creates the markdown renderer when styled output is enabled.
func (h *HelpService) Initialize() error {
	if h.initialized {
		return nil
	}
	if h.Styled() {
		style := "light"
		if termenv.HasDarkBackground() {
			style = "dark"
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		h.renderer = renderer
	}
	h.initialized = true
	logger.Debug("HelpService initialized", "styled", h.renderer != nil)
	return nil
}

// Styled reports whether help is rendered as styled markdown.
func (h *HelpService) Styled() bool {
	switch h.colorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return lipgloss.ColorProfile() != termenv.Ascii
	}
}

// RenderCommand returns the help of one command, styled when enabled.
func (h *HelpService) RenderCommand(name string) (string, error) {
	if !h.initialized {
		return "", fmt.Errorf("help service not initialized")
	}
	meta, ok := h.registry.TryGet(name)
	if !ok {
		return "", fmt.Errorf("unknown command: %s", name)
	}
	if h.renderer == nil {
		return meta.GenerateHelp(), nil
	}
	return h.render(CommandMarkdown(meta))
}

// RenderGlobal returns the command list, styled when enabled.
func (h *HelpService) RenderGlobal() (string, error) {
	if !h.initialized {
		return "", fmt.Errorf("help service not initialized")
	}
	if h.renderer == nil {
		return h.registry.GenerateGlobalHelp(), nil
	}
	return h.render(GlobalMarkdown(h.registry))
}

func (h *HelpService) render(markdown string) (string, error) {
	rendered, err := h.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}

// CommandMarkdown describes one command as markdown.
func CommandMarkdown(meta *commands.CommandMetadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", meta.Name())
	if meta.Description() != "" {
		fmt.Fprintf(&b, "%s\n\n", meta.Description())
	}
	fmt.Fprintf(&b, "## Usage\n\n```\n%s\n```\n", meta.Usage())

	options := meta.Options()
	if len(options) == 0 {
		return b.String()
	}
	b.WriteString("\n## Options\n\n| Option | Value | Description |\n|---|---|---|\n")
	for _, opt := range options {
		description := opt.Description
		if opt.Required {
			description = strings.TrimSpace(description + " (required)")
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n",
			strings.TrimSpace(opt.Flags()),
			markdownCell(commands.ValuePlaceholder(opt)),
			markdownCell(description))
	}
	return b.String()
}

// GlobalMarkdown lists every registered command as markdown.
func GlobalMarkdown(registry *commands.Registry) string {
	var b strings.Builder
	b.WriteString("# Commands\n\n| Command | Description |\n|---|---|\n")
	for _, meta := range registry.All() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", meta.Name(), markdownCell(meta.Description()))
	}
	b.WriteString("\nUse `help <command>` for details.\n")
	return b.String()
}

func markdownCell(text string) string {
	return strings.NewReplacer("|", `\|`, "<", `\<`, ">", `\>`).Replace(text)
}

// CommandDoc is the exported form of a command's metadata.
type CommandDoc struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Usage       string      `yaml:"usage"`
	Options     []OptionDoc `yaml:"options,omitempty"`
}

// OptionDoc is the exported form of an option's metadata.
type OptionDoc struct {
	Long        string   `yaml:"long"`
	Short       string   `yaml:"short,omitempty"`
	Type        string   `yaml:"type"`
	Required    bool     `yaml:"required,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Values      []string `yaml:"values,omitempty"`
}

// Documents returns the metadata of every registered command, sorted by name.
func (h *HelpService) Documents() []CommandDoc {
	all := h.registry.All()
	docs := make([]CommandDoc, 0, len(all))
	for _, meta := range all {
		doc := CommandDoc{
			Name:        meta.Name(),
			Description: meta.Description(),
			Usage:       meta.Usage(),
		}
		for _, opt := range meta.Options() {
			option := OptionDoc{
				Long:        opt.LongName,
				Short:       opt.ShortName,
				Type:        opt.Type.String(),
				Required:    opt.Required,
				Description: opt.Description,
			}
			if opt.Enum != nil {
				option.Values = opt.Enum.Names()
			}
			doc.Options = append(doc.Options, option)
		}
		docs = append(docs, doc)
	}
	return docs
}

// ExportYAML serializes Documents as YAML.
func (h *HelpService) ExportYAML() ([]byte, error) {
	data, err := yaml.Marshal(h.Documents())
	if err != nil {
		return nil, fmt.Errorf("failed to export command metadata: %w", err)
	}
	return data, nil
}
