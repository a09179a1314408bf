// Package detect finds the directories of a checkout that hold sources srcsync
// can discover.
//
// Detection is deterministic: it depends only on which file names exist, and
// returns sorted results.
package detect

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/scope"
	"github.com/albertocavalcante/srcsync/pkg/util"
)

// Roots returns the top-level directories of root that contain at least one
// discoverable file at any depth. Files directly in root are not counted.
func Roots(root string) ([]string, error) {
	exts := scope.ExtensionSet()
	ignore := scope.IgnoreDirSet(nil)
	found := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (ignore[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			// Once a top-level directory qualifies there is nothing left to learn.
			if top, _, _ := strings.Cut(rel, "/"); found[top] {
				return filepath.SkipDir
			}
			return nil
		}

		top, rest, nested := strings.Cut(rel, "/")
		if nested && rest != "" && exts[filepath.Ext(path)] {
			found[top] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return util.SortedKeys(found), nil
}

// HasSources reports whether dir, relative to root, contains a discoverable
// file.
func HasSources(root, dir string) (bool, error) {
	roots, err := Roots(root)
	if err != nil {
		return false, err
	}
	top, _, _ := strings.Cut(filepath.ToSlash(filepath.Clean(dir)), "/")
	return slices.Contains(roots, top), nil
}
