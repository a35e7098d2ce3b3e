package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ThemeKey is the settings key holding the theme flag.
const ThemeKey = "theme"

// ErrInvalidTheme is returned for theme values other than dark and light.
var ErrInvalidTheme = errors.New("invalid theme")

// ParseTheme validates a theme name, ignoring case and surrounding space.
func ParseTheme(v string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(v))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	}
	return "", fmt.Errorf("%w: %q (want dark or light)", ErrInvalidTheme, v)
}

// GetTheme returns the stored theme, defaulting to light when unset or
// when the stored value is unreadable.
func (d *DB) GetTheme(ctx context.Context) (Theme, error) {
	s, err := d.GetSetting(ctx, ThemeKey)
	if errors.Is(err, ErrNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		return ThemeLight, err
	}
	t, err := ParseTheme(s.Value)
	if err != nil {
		return ThemeLight, nil
	}
	return t, nil
}

// SetTheme stores the theme flag.
func (d *DB) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return d.SetSetting(ctx, ThemeKey, string(t))
}

// ToggleTheme flips the stored theme and returns the new value.
func (d *DB) ToggleTheme(ctx context.Context) (Theme, error) {
	cur, err := d.GetTheme(ctx)
	if err != nil {
		return cur, err
	}
	next := cur.Toggle()
	if err := d.SetTheme(ctx, next); err != nil {
		return cur, err
	}
	return next, nil
}
