package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Skin overrides palette entries. Example skins/solarized.yml:
//
//	colors:
//	  bar: "#268BD2"
//	  navy: "#002B36"
type Skin struct {
	Name   string            `yaml:"name"`
	Colors map[string]string `yaml:"colors"`
}

var skinColors = map[string]*lipgloss.Color{
	"navy":     &ColorNavy,
	"white":    &ColorWhite,
	"gray":     &ColorGray,
	"dim-gray": &ColorDimGray,
	"blue":     &ColorBlue,
	"green":    &ColorGreen,
	"yellow":   &ColorYellow,
	"orange":   &ColorOrange,
	"red":      &ColorRed,
	"magenta":  &ColorMagenta,
	"bar":      &ColorBar,
	"focus":    &ColorFocus,
	"row-even": &ColorRowEven,
	"row-odd":  &ColorRowOdd,
}

// InitializeSkin loads configDir/skins/<name>.yml and applies it. The
// default skin needs no file.
func InitializeSkin(name, configDir string) error {
	if name == "" || name == "default" {
		return nil
	}
	skin, err := LoadSkin(filepath.Join(configDir, "skins", name+".yml"))
	if err != nil {
		return err
	}
	return ApplySkin(skin)
}

// LoadSkin parses a skin file.
func LoadSkin(path string) (Skin, error) {
	var skin Skin
	data, err := os.ReadFile(path)
	if err != nil {
		return skin, fmt.Errorf("reading skin: %w", err)
	}
	if err := yaml.Unmarshal(data, &skin); err != nil {
		return skin, fmt.Errorf("parsing skin %s: %w", path, err)
	}
	return skin, nil
}

// ApplySkin overrides palette entries and rebuilds styles. Unknown color
// names are rejected before anything changes.
func ApplySkin(skin Skin) error {
	for name := range skin.Colors {
		if _, ok := skinColors[strings.ToLower(name)]; !ok {
			return fmt.Errorf("unknown skin color %q", name)
		}
	}
	for name, value := range skin.Colors {
		*skinColors[strings.ToLower(name)] = lipgloss.Color(value)
	}
	rebuildStyles()
	return nil
}
