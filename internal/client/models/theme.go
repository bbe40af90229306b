package models

import (
	"fmt"
	"strings"
)

// Theme is the persisted colour preference.
type Theme string

const (
	ThemeLight  Theme = "LIGHT"
	ThemeDark   Theme = "DARK"
	ThemeSystem Theme = "SYSTEM"
)

// DefaultTheme applies when nothing was saved.
const DefaultTheme = ThemeSystem

// Themes lists the accepted values in display order.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeSystem}

// ParseTheme accepts any casing of a theme name.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Themes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q", s)
}
