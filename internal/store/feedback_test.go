package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenEmptyURLIsNotConfigured(t *testing.T) {
	s, err := Open(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil store, got %T", s)
	}
}

func TestOpenSQLiteForms(t *testing.T) {
	dir := t.TempDir()
	for _, url := range []string{
		"sqlite:" + filepath.Join(dir, "a.sqlite3"),
		filepath.Join(dir, "b.db"),
	} {
		s, err := Open(context.Background(), url)
		if err != nil {
			t.Fatalf("Open(%q): %v", url, err)
		}
		if _, ok := s.(*SQLiteStore); !ok {
			t.Errorf("Open(%q) returned %T", url, s)
		}
		s.Close()
	}
}

func TestOpenUnsupportedScheme(t *testing.T) {
	if _, err := Open(context.Background(), "mysql://localhost/feedback"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
