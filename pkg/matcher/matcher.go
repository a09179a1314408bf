// Package matcher discovers files below a group root with filename globs and
// an optional exclusion expression.
//
// Paths are reported relative to the project base (the parent of every group
// root) using forward slashes, and sorted case-insensitively so that two runs
// over an unchanged tree produce byte-identical ordering.
package matcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrRootNotFound is returned when the group root does not exist or is not a
// directory.
var ErrRootNotFound = errors.New("root directory not found")

// Config configures a Matcher.
type Config struct {
	// FS is the filesystem rooted at the project base. Defaults to
	// os.DirFS(Base).
	FS fs.FS

	// Base is the project base directory on disk. Ignored when FS is set.
	Base string

	// Dir is the group root relative to Base ("." for Base itself).
	Dir string

	// Patterns are filename globs such as "*.cpp", matched at any depth.
	Patterns []string

	// Exclude is a regular expression matched from the start of the
	// base-relative path. Empty means no exclusion.
	Exclude string
}

// Matcher finds files matching a set of globs below one root.
type Matcher struct {
	fsys     fs.FS
	dir      string
	patterns []string
	exclude  *regexp.Regexp
}

// New validates cfg and returns a Matcher.
func New(cfg Config) (*Matcher, error) {
	fsys := cfg.FS
	if fsys == nil {
		base := cfg.Base
		if base == "" {
			base = "."
		}
		fsys = os.DirFS(base)
	}

	dir := cleanDir(cfg.Dir)
	if !fs.ValidPath(dir) {
		return nil, fmt.Errorf("invalid root %q: must be relative to the project base", cfg.Dir)
	}

	patterns := make([]string, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		full := path.Join(dir, "**", p)
		if !doublestar.ValidatePattern(full) {
			return nil, fmt.Errorf("invalid glob %q", p)
		}
		patterns = append(patterns, full)
	}

	m := &Matcher{
		fsys:     fsys,
		dir:      dir,
		patterns: patterns,
	}

	if cfg.Exclude != "" {
		re, err := CompileExclude(cfg.Exclude)
		if err != nil {
			return nil, err
		}
		m.exclude = re
	}

	return m, nil
}

// CompileExclude compiles an exclusion expression with match-from-start
// semantics: ".*sc_main.cpp" excludes "engine/sc_main.cpp".
func CompileExclude(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern %q: %w", expr, err)
	}
	return re, nil
}

// Dir returns the cleaned group root relative to the project base.
func (m *Matcher) Dir() string {
	return m.dir
}

// Match returns every file below the root matching any glob and not excluded.
// Results from different globs are concatenated, not deduplicated.
func (m *Matcher) Match() ([]string, error) {
	info, err := fs.Stat(m.fsys, m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, m.dir)
		}
		return nil, fmt.Errorf("failed to stat root %s: %w", m.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, m.dir)
	}

	var out []string
	for _, pattern := range m.patterns {
		matches, err := doublestar.Glob(m.fsys, pattern,
			doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
		}
		for _, p := range matches {
			if m.Excluded(p) {
				continue
			}
			out = append(out, p)
		}
	}

	Sort(out)
	return out, nil
}

// Excluded reports whether a base-relative path matches the exclusion.
func (m *Matcher) Excluded(p string) bool {
	return m.exclude != nil && m.exclude.MatchString(p)
}

// Compare orders paths case-insensitively, falling back to byte order so the
// result is total.
func Compare(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Sort sorts paths in place using Compare.
func Sort(paths []string) {
	slices.SortStableFunc(paths, Compare)
}

func cleanDir(dir string) string {
	if dir == "" {
		return "."
	}
	return path.Clean(strings.ReplaceAll(dir, "\\", "/"))
}
