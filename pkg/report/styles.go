package report

import (
	_ "embed"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/crimsonvanitas/brew/pkg/errors"
)

//go:embed styles.yaml
var embeddedStyles []byte

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Width        int    `yaml:"width,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
	PaddingRight int    `yaml:"paddingRight,omitempty"`
}

// StylesConfig represents the complete styles configuration
type StylesConfig struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Styles maps semantic names to lipgloss styles bound to one renderer.
type Styles struct {
	registry map[string]lipgloss.Style
	renderer *lipgloss.Renderer
}

// LoadStyles builds Styles from YAML data.
func LoadStyles(data []byte, r *lipgloss.Renderer) (*Styles, error) {
	var config StylesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to parse styles data")
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(config.Colors))
	for name, def := range config.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	s := &Styles{registry: make(map[string]lipgloss.Style, len(config.Styles)), renderer: r}
	for name, def := range config.Styles {
		s.registry[name] = buildStyle(r, def, colors)
	}
	return s, nil
}

// DefaultStyles returns the embedded styles, or unstyled output if they
// cannot be loaded.
func DefaultStyles(r *lipgloss.Renderer) *Styles {
	s, err := LoadStyles(embeddedStyles, r)
	if err != nil {
		return &Styles{registry: map[string]lipgloss.Style{}, renderer: r}
	}
	return s
}

// buildStyle constructs a lipgloss style from a style definition
func buildStyle(r *lipgloss.Renderer, def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := r.NewStyle()

	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Foreground != "" {
		if color, ok := colors[def.Foreground]; ok {
			style = style.Foreground(color)
		}
	}
	if def.Width > 0 {
		style = style.Width(def.Width)
	}
	if def.PaddingLeft > 0 || def.PaddingRight > 0 {
		style = style.Padding(0, def.PaddingRight, 0, def.PaddingLeft)
	}
	return style
}

// Get safely retrieves a style from the registry
func (s *Styles) Get(name string) lipgloss.Style {
	if style, ok := s.registry[name]; ok {
		return style
	}
	return s.renderer.NewStyle()
}

// Render renders text with the named style
func (s *Styles) Render(name string, text ...string) string {
	return s.Get(name).Render(text...)
}
