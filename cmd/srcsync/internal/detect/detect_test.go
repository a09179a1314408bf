package detect_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/detect"
)

func createFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRoots(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name: "empty",
			want: []string{},
		},
		{
			name:  "engine and qt",
			files: []string{"engine/sc_io.cpp", "engine/class/sc_class.hpp", "qt/sc_window.cpp"},
			want:  []string{"engine", "qt"},
		},
		{
			name:  "nested only",
			files: []string{"lib/deep/inside/x.hh"},
			want:  []string{"lib"},
		},
		{
			name:  "resources count",
			files: []string{"assets/icons.qrc"},
			want:  []string{"assets"},
		},
		{
			name:  "unknown extensions ignored",
			files: []string{"docs/readme.md", "scripts/build.py", "c/legacy.c"},
			want:  []string{},
		},
		{
			name:  "top-level files ignored",
			files: []string{"main.cpp", "engine/sc_io.cpp"},
			want:  []string{"engine"},
		},
		{
			name:  "hidden and state dirs ignored",
			files: []string{".git/x.cpp", ".srcsync/y.cpp", ".cache/z.cpp"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tt.files {
				createFile(t, root, f)
			}

			got, err := detect.Roots(root)
			if err != nil {
				t.Fatalf("Roots() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Roots() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoots_Deterministic(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"z/a.cpp", "a/b.cpp", "m/c.hpp"} {
		createFile(t, root, f)
	}

	first, err := detect.Roots(root)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := detect.Roots(root)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(first, again) {
			t.Fatalf("run %d: %v != %v", i, again, first)
		}
	}
	if !slices.Equal(first, []string{"a", "m", "z"}) {
		t.Errorf("Roots() = %v, want sorted", first)
	}
}

func TestHasSources(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "engine/sc_io.cpp")

	tests := []struct {
		dir  string
		want bool
	}{
		{"engine", true},
		{"engine/", true},
		{"qt", false},
	}
	for _, tt := range tests {
		got, err := detect.HasSources(root, tt.dir)
		if err != nil {
			t.Fatalf("HasSources(%q) error = %v", tt.dir, err)
		}
		if got != tt.want {
			t.Errorf("HasSources(%q) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestRoots_MissingDir(t *testing.T) {
	if _, err := detect.Roots(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Roots() on a missing directory should fail")
	}
}
