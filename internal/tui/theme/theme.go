// Package theme provides color themes for the week browser.
package theme

import (
	"embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Default is loaded when no theme or an unknown one is asked for.
const Default = "mocha"

// Theme holds all colors of the browser.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`
	BgHighlight string `toml:"bg_highlight"` // header band
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"` // borders, gaps, period numbers
	Accent      string `toml:"accent"`   // title
	Lesson      string `toml:"lesson"`
	Gap         string `toml:"gap"`
	Warning     string `toml:"warning"` // errors, prompt
}

// Color returns a lipgloss.Color for the given hex or ANSI string.
func Color(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// Load loads a theme by name from embedded files.
// Falls back to the default theme if the name is unknown.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = Default
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != Default {
			return Load(Default)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

func (t *Theme) applyDefaults() {
	t.BgHighlight = coalesce(t.BgHighlight, t.Bg)
	t.Lesson = coalesce(t.Lesson, t.Fg)
	t.Gap = coalesce(t.Gap, t.FgMuted)
	t.Accent = coalesce(t.Accent, t.Fg)
	t.Warning = coalesce(t.Warning, t.Accent)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns the names of the embedded themes.
func Available() []string {
	return []string{"mocha", "latte", "mono"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, themeName := range Available() {
		if themeName == name {
			return true
		}
	}
	return false
}
