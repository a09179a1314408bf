// Package scope decides which files srcsync tracks and which groups own them.
//
// The state tracker and the watcher both use it, so a file that changes the
// outcome of a sync is seen by both, and nothing else is.
package scope

import (
	"path"
	"slices"
	"strings"

	"github.com/albertocavalcante/srcsync/pkg/entry"
	"github.com/albertocavalcante/srcsync/pkg/matcher"
	"github.com/albertocavalcante/srcsync/pkg/syncer"
	"github.com/albertocavalcante/srcsync/pkg/util"
)

// IgnoredDirs are directory names never scanned or watched.
var IgnoredDirs = []string{
	".git",
	".hg",
	".svn",
	".srcsync", // state directory
}

// ExtensionSet returns the set of extensions discovery can pick up.
func ExtensionSet() map[string]bool {
	exts := make(map[string]bool)
	for _, ext := range entry.Extensions() {
		exts[ext] = true
	}
	return exts
}

// IgnoreDirSet returns IgnoredDirs plus additional names as a set.
func IgnoreDirSet(additional []string) map[string]bool {
	dirs := make(map[string]bool)
	for _, dir := range IgnoredDirs {
		dirs[dir] = true
	}
	for _, dir := range additional {
		dirs[dir] = true
	}
	return dirs
}

// Roots returns the distinct roots of the discovering groups, in group order.
func Roots(groups []syncer.Group) []string {
	var roots []string
	for _, g := range groups {
		if !g.Discover {
			continue
		}
		r := path.Clean(g.Root)
		if !slices.Contains(roots, r) {
			roots = append(roots, r)
		}
	}
	return roots
}

// Owners returns the discovering groups whose root contains rel (a slash path
// relative to the project base) and whose exclusion does not drop it.
func Owners(groups []syncer.Group, rel string) []string {
	var owners []string
	for _, g := range groups {
		if !g.Discover || !within(path.Clean(g.Root), rel) {
			continue
		}
		if g.Exclude != "" {
			re, err := matcher.CompileExclude(g.Exclude)
			if err == nil && re.MatchString(rel) {
				continue
			}
		}
		owners = append(owners, g.Name)
	}
	return owners
}

// StaleGroups maps changed files to the sorted, distinct owning groups.
func StaleGroups(groups []syncer.Group, changed []string) []string {
	var out []string
	for _, f := range changed {
		out = append(out, Owners(groups, f)...)
	}
	if len(out) == 0 {
		return nil
	}
	return util.Distinct(out)
}

func within(root, rel string) bool {
	if root == "." {
		return true
	}
	return rel == root || strings.HasPrefix(rel, root+"/")
}
