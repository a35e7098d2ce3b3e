package storage

import "time"

// Setting is one row of the key-value preference table.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Theme is the dashboard colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
