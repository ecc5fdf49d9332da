package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("files: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFolders(t *testing.T) {
	t.Chdir(t.TempDir())

	mustMkdir(t, "uploads")
	mustMkdir(t, filepath.Join("samples", "batch-a"))
	mustMkdir(t, filepath.Join("samples", ".cache"))
	mustMkdir(t, "random") // Should not be discovered

	folders := DiscoverInputFolders()

	want := []string{"uploads", "samples", filepath.Join("samples", "batch-a")}
	if len(folders) != len(want) {
		t.Fatalf("expected %v, got %v", want, folders)
	}
	for i := range want {
		if folders[i] != want[i] {
			t.Errorf("folders[%d] = %q, want %q", i, folders[i], want[i])
		}
	}
}

func TestDiscoverManifests(t *testing.T) {
	t.Chdir(t.TempDir())

	mustMkdir(t, "uploads")
	mustWrite(t, "manifest.yaml")
	mustWrite(t, filepath.Join("uploads", "files.json"))
	mustWrite(t, "notes.yaml") // not a manifest name

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes("manifest.yaml", old, old); err != nil {
		t.Fatal(err)
	}

	got := DiscoverManifests()
	if len(got) != 2 {
		t.Fatalf("DiscoverManifests() = %v", got)
	}
	if got[0] != filepath.Join("uploads", "files.json") || got[1] != "manifest.yaml" {
		t.Errorf("expected most recent first, got %v", got)
	}
}

func TestDiscoverManifestsEmpty(t *testing.T) {
	t.Chdir(t.TempDir())
	if got := DiscoverManifests(); len(got) != 0 {
		t.Errorf("DiscoverManifests() = %v, want none", got)
	}
}

func TestIsManifest(t *testing.T) {
	tests := map[string]bool{
		"files.yaml":   true,
		"files.YML":    true,
		"files.json":   true,
		"files.txt":    false,
		"no-extension": false,
	}
	for path, want := range tests {
		if got := IsManifest(path); got != want {
			t.Errorf("IsManifest(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	mustWrite(t, file)

	if !FileExists(file) || FileExists(dir) || FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists() wrong")
	}
	if !DirExists(dir) || DirExists(file) {
		t.Error("DirExists() wrong")
	}
}
