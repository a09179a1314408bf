package scope

import (
	"slices"
	"testing"

	"github.com/albertocavalcante/srcsync/pkg/syncer"
)

var testGroups = []syncer.Group{
	{Name: "engine", Root: "engine", Exclude: ".*sc_main.cpp", Discover: true},
	{Name: "engine_main", Root: "engine"},
	{Name: "gui", Root: "qt", Discover: true},
	{Name: "gui_extra", Root: "./qt/extra", Discover: true},
}

func TestExtensionSet(t *testing.T) {
	exts := ExtensionSet()
	for _, ext := range []string{".cpp", ".hpp", ".hh", ".qrc"} {
		if !exts[ext] {
			t.Errorf("ExtensionSet() missing %s", ext)
		}
	}
	if exts[".go"] || exts[".pri"] {
		t.Error("ExtensionSet() should only hold discoverable extensions")
	}
}

func TestIgnoreDirSet(t *testing.T) {
	dirs := IgnoreDirSet([]string{"build"})
	for _, d := range []string{".git", ".srcsync", "build"} {
		if !dirs[d] {
			t.Errorf("IgnoreDirSet() missing %s", d)
		}
	}
}

func TestRoots(t *testing.T) {
	got := Roots(testGroups)
	want := []string{"engine", "qt", "qt/extra"}
	if !slices.Equal(got, want) {
		t.Errorf("Roots() = %v, want %v", got, want)
	}
}

func TestOwners(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"engine/sc_io.cpp", []string{"engine"}},
		{"engine/sc_main.cpp", nil},
		{"engine2/x.cpp", nil},
		{"qt/window.hpp", []string{"gui"}},
		{"qt/extra/panel.cpp", []string{"gui", "gui_extra"}},
		{"README.md", nil},
	}
	for _, tt := range tests {
		if got := Owners(testGroups, tt.path); !slices.Equal(got, tt.want) {
			t.Errorf("Owners(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOwners_BaseRoot(t *testing.T) {
	groups := []syncer.Group{{Name: "all", Root: ".", Discover: true}}
	if got := Owners(groups, "deep/file.cpp"); !slices.Equal(got, []string{"all"}) {
		t.Errorf("a \".\" root should own everything, got %v", got)
	}
}

func TestStaleGroups(t *testing.T) {
	got := StaleGroups(testGroups, []string{"qt/a.cpp", "engine/b.cpp", "qt/c.hpp", "engine/sc_main.cpp"})
	want := []string{"engine", "gui"}
	if !slices.Equal(got, want) {
		t.Errorf("StaleGroups() = %v, want %v", got, want)
	}
}
