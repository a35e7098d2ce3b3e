package utils

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"INFO":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	}
	for in, want := range tests {
		if err := SetLogLevel(in); err != nil {
			t.Fatalf("SetLogLevel(%q): %v", in, err)
		}
		if Log.GetLevel() != want {
			t.Fatalf("SetLogLevel(%q): got %s", in, Log.GetLevel())
		}
	}
	if err := SetLogLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	SetLogLevel("info")
}

func TestWithDBLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "test.sqlite")
	ran := false
	if err := WithDBLock(dbPath, func() error { ran = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("callback not run")
	}

	sentinel := errors.New("boom")
	if err := WithDBLock(dbPath, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}

	// The lock must have been released for a second acquisition to succeed.
	l, err := NewDBLock(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Lock(); err != nil {
		t.Fatal(err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatal(err)
	}
}

func TestGetAbsDBPathDefault(t *testing.T) {
	p, err := GetAbsDBPath("")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(p, filepath.Join(".config", "viralscope", "viralscope.sqlite")) {
		t.Fatalf("unexpected default path %s", p)
	}
}
