package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "viralscope.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestThemeDefaultsToLight(t *testing.T) {
	db := openTestDB(t)
	theme, err := db.GetTheme(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if theme != ThemeLight {
		t.Fatalf("expected light, got %q", theme)
	}
}

func TestThemeRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SetTheme(ctx, ThemeDark); err != nil {
		t.Fatal(err)
	}
	theme, err := db.GetTheme(ctx)
	if err != nil || theme != ThemeDark {
		t.Fatalf("expected dark, got %q (%v)", theme, err)
	}

	next, err := db.ToggleTheme(ctx)
	if err != nil || next != ThemeLight {
		t.Fatalf("expected toggle to light, got %q (%v)", next, err)
	}

	s, err := db.GetSetting(ctx, ThemeKey)
	if err != nil {
		t.Fatal(err)
	}
	if s.Value != "light" || s.UpdatedAt.IsZero() {
		t.Fatalf("unexpected setting row %+v", s)
	}
}

func TestSetThemeRejectsInvalid(t *testing.T) {
	db := openTestDB(t)
	if err := db.SetTheme(context.Background(), Theme("blue")); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
}

func TestCorruptThemeFallsBackToLight(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := db.SetSetting(ctx, ThemeKey, "sepia"); err != nil {
		t.Fatal(err)
	}
	theme, err := db.GetTheme(ctx)
	if err != nil || theme != ThemeLight {
		t.Fatalf("expected light fallback, got %q (%v)", theme, err)
	}
}

func TestParseTheme(t *testing.T) {
	tests := map[string]Theme{" Dark ": ThemeDark, "LIGHT": ThemeLight}
	for in, want := range tests {
		got, err := ParseTheme(in)
		if err != nil || got != want {
			t.Fatalf("ParseTheme(%q) = %q, %v", in, got, err)
		}
	}
}

func TestGetSettingNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetSetting(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	list, err := db.ListSettings(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v (%v)", list, err)
	}
}
