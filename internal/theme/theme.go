package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultName is the built-in theme used when no override is provided.
const DefaultName = "azure"

// Token represents a semantic color slot within the CLI.
type Token string

const (
	ColorTextPrimary Token = "text.primary"
	ColorTextMuted   Token = "text.muted"
	ColorAccent      Token = "accent"
	ColorSuccess     Token = "success"
	ColorWarning     Token = "warning"
	ColorDanger      Token = "danger"
)

// Color stores light and dark variants for adaptive rendering.
type Color struct {
	Light string
	Dark  string
}

// Adaptive converts the color into a lipgloss adaptive color.
func (c Color) Adaptive() lipgloss.AdaptiveColor {
	light, dark := strings.TrimSpace(c.Light), strings.TrimSpace(c.Dark)
	switch {
	case light == "" && dark == "":
		return lipgloss.AdaptiveColor{}
	case light == "":
		light = dark
	case dark == "":
		dark = light
	}
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Palette represents a concrete theme.
type Palette struct {
	Name   string
	Colors map[Token]Color
}

// Color returns a color for the provided token, falling back to the default palette.
func (p Palette) Color(token Token) Color {
	if c, ok := p.Colors[token]; ok {
		return c
	}
	return palettes[DefaultName].Colors[token]
}

// Style returns a foreground style for token bound to renderer r. A nil
// renderer uses the lipgloss default renderer.
func (p Palette) Style(r *lipgloss.Renderer, token Token) lipgloss.Style {
	var s lipgloss.Style
	if r != nil {
		s = r.NewStyle()
	} else {
		s = lipgloss.NewStyle()
	}
	return s.Foreground(p.Color(token).Adaptive())
}

var palettes = map[string]Palette{
	"azure": {
		Name: "azure",
		Colors: map[Token]Color{
			ColorTextPrimary: {Light: "#1B1B1B", Dark: "#F3F2F1"},
			ColorTextMuted:   {Light: "#605E5C", Dark: "#A19F9D"},
			ColorAccent:      {Light: "#0063B1", Dark: "#50E6FF"},
			ColorSuccess:     {Light: "#107C10", Dark: "#6CCB5F"},
			ColorWarning:     {Light: "#8A6A00", Dark: "#FCE100"},
			ColorDanger:      {Light: "#A4262C", Dark: "#F1707B"},
		},
	},
	"mono": {
		Name: "mono",
		Colors: map[Token]Color{
			ColorTextPrimary: {Light: "0", Dark: "15"},
			ColorTextMuted:   {Light: "8", Dark: "7"},
			ColorAccent:      {Light: "0", Dark: "15"},
			ColorSuccess:     {Light: "0", Dark: "15"},
			ColorWarning:     {Light: "0", Dark: "15"},
			ColorDanger:      {Light: "0", Dark: "15"},
		},
	},
}

// Available returns the list of registered theme IDs (sorted).
func Available() []string {
	keys := make([]string, 0, len(palettes))
	for k := range palettes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the palette with the provided name.
func Get(name string) (Palette, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultName
	}
	p, ok := palettes[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown color theme %q, must be one of %v", name, Available())
	}
	return p, nil
}

// Flag is a pflag.Value implementation for theme IDs.
type Flag struct {
	value string
}

// NewFlag returns a Flag with the provided default value.
func NewFlag(defaultValue string) *Flag {
	if _, err := Get(defaultValue); err != nil {
		defaultValue = DefaultName
	}
	return &Flag{value: defaultValue}
}

func (f *Flag) String() string {
	if f == nil {
		return DefaultName
	}
	return f.value
}

func (f *Flag) Set(v string) error {
	p, err := Get(v)
	if err != nil {
		return err
	}
	f.value = p.Name
	return nil
}

func (f *Flag) Type() string {
	return "string"
}
