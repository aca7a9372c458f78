package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "box.json")
	dst := filepath.Join(dir, "data", "box.json")

	content := []byte(`[{"box_id":"pi3"}]`)
	if err := os.WriteFile(src, content, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := CopyVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the destination file, got %d entries", len(entries))
	}
}

func TestCopyVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyVerified(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(filepath.Join(dir, "dst")); !os.IsNotExist(err) {
		t.Fatalf("destination should not exist, stat err = %v", err)
	}
}

func TestFreeName(t *testing.T) {
	dir := t.TempDir()
	if got, err := FreeName(dir, "box.json"); err != nil || got != "box.json" {
		t.Fatalf("FreeName on empty dir = %q, %v", got, err)
	}
	for _, name := range []string{"box.json", "box_2.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got, err := FreeName(dir, "box.json"); err != nil || got != "box_3.json" {
		t.Fatalf("FreeName = %q, %v, want box_3.json", got, err)
	}
}

func TestFreeNameStopsOnStatError(t *testing.T) {
	notDir := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(notDir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := FreeName(notDir, "box.json"); err == nil {
		t.Fatalf("expected an error when dir is a file, got %q", got)
	}
}

func TestWithin(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "a.json"), true},
		{filepath.Join(dir, "sub", "a.json"), true},
		{filepath.Join(dir, "..", "a.json"), false},
		{filepath.Join(dir, "..x", "a.json"), true},
	}
	for _, tt := range tests {
		if got := Within(dir, tt.path); got != tt.want {
			t.Fatalf("Within(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
