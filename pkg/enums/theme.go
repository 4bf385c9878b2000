package enums

import (
	"fmt"
	"strings"
)

// Theme is the persisted UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var validThemes = []Theme{
	ThemeLight,
	ThemeDark,
}

// String implements fmt.Stringer.
func (t Theme) String() string {
	return string(t)
}

// IsValid reports whether the value is a known Theme.
func (t Theme) IsValid() bool {
	for _, candidate := range validThemes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// ParseTheme converts raw input into a Theme.
func ParseTheme(value string) (Theme, error) {
	normalized := Theme(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid theme %q", value)
}
