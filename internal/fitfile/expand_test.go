package fitfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.fit"))
	touch(t, filepath.Join(dir, "a.FIT"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "2024", "c.fit"))
	single := filepath.Join(t.TempDir(), "export.bin")
	touch(t, single)

	got, err := Expand([]string{dir, single, filepath.Join(dir, "b.fit")})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{
		filepath.Join(dir, "2024", "c.fit"),
		filepath.Join(dir, "a.FIT"),
		filepath.Join(dir, "b.fit"),
		single,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand = %v, want %v", got, want)
	}
}

func TestExpand_Missing(t *testing.T) {
	if _, err := Expand([]string{filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for a missing path")
	}
}
