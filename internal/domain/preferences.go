package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidThemeMode is returned for a display mode other than light or dark.
	ErrInvalidThemeMode = errors.New("invalid theme mode")
	// ErrInvalidThemeColor is returned for an unknown accent color.
	ErrInvalidThemeColor = errors.New("invalid theme color")
)

// ThemeMode is the display mode of the dashboard.
type ThemeMode string

const (
	ThemeModeLight ThemeMode = "light"
	ThemeModeDark  ThemeMode = "dark"
)

// ThemeColor is the accent color of the dashboard.
type ThemeColor string

const (
	ThemeColorBlue   ThemeColor = "blue"
	ThemeColorGreen  ThemeColor = "green"
	ThemeColorPurple ThemeColor = "purple"
	ThemeColorOrange ThemeColor = "orange"
	ThemeColorRed    ThemeColor = "red"
)

// ThemeColors lists the accent colors in display order.
//
//nolint:gochecknoglobals
var ThemeColors = []ThemeColor{
	ThemeColorBlue,
	ThemeColorGreen,
	ThemeColorPurple,
	ThemeColorOrange,
	ThemeColorRed,
}

// Preferences is the locally stored user preference record.
type Preferences struct {
	Mode  ThemeMode  `json:"mode"`
	Color ThemeColor `json:"color"`
}

// DefaultPreferences returns the preferences used when nothing valid is stored.
func DefaultPreferences() Preferences {
	return Preferences{Mode: ThemeModeLight, Color: ThemeColorBlue}
}

// Validate checks mode and color against the known values.
func (p Preferences) Validate() error {
	if p.Mode != ThemeModeLight && p.Mode != ThemeModeDark {
		return fmt.Errorf("%w: %q", ErrInvalidThemeMode, p.Mode)
	}

	for _, color := range ThemeColors {
		if p.Color == color {
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrInvalidThemeColor, p.Color)
}

// Toggled returns a copy with the display mode flipped.
func (p Preferences) Toggled() Preferences {
	if p.Mode == ThemeModeDark {
		p.Mode = ThemeModeLight
	} else {
		p.Mode = ThemeModeDark
	}

	return p
}
