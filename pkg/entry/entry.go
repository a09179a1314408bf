// Package entry defines the canonical intermediate form of a group's source
// list: an ordered collection of categorised, base-relative file paths.
//
// A Store is built either by discovering files on disk (Discover) or by
// parsing a portable descriptor (Parse). Stores are never mutated; every
// transformation returns a new Store.
package entry

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

// Category classifies an Entry by the descriptor section it belongs to.
type Category int

const (
	Source Category = iota
	Header
	PrecompiledHeader
	Resource
)

// categoryInfo holds the per-category descriptor keyword, discovery globs and
// accepted extensions.
type categoryInfo struct {
	name       string
	keyword    string
	globs      []string
	extensions []string
}

var categories = map[Category]categoryInfo{
	Source: {
		name:       "source",
		keyword:    "SOURCES",
		globs:      []string{"*.cpp"},
		extensions: []string{".cpp"},
	},
	Header: {
		name:       "header",
		keyword:    "HEADERS",
		globs:      []string{"*.hpp", "*.hh"},
		extensions: []string{".hpp", ".hh"},
	},
	PrecompiledHeader: {
		// Hand-declared only; never discovered.
		name:       "precompiled_header",
		keyword:    "PRECOMPILED_HEADER",
		extensions: []string{".hpp", ".hh"},
	},
	Resource: {
		name:       "resource",
		keyword:    "RESOURCES",
		globs:      []string{"*.qrc"},
		extensions: []string{".qrc"},
	},
}

// DescriptorOrder is the order categories appear in a portable descriptor.
var DescriptorOrder = []Category{Header, PrecompiledHeader, Source, Resource}

// DiscoverOrder is the order categories are scanned in.
var DiscoverOrder = []Category{Header, Source, Resource}

// All returns every category.
func All() []Category {
	return []Category{Source, Header, PrecompiledHeader, Resource}
}

// String returns the lowercase category name.
func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Keyword returns the descriptor directive for the category, e.g. "SOURCES".
func (c Category) Keyword() string {
	return categories[c].keyword
}

// Globs returns the filename globs used to discover the category.
func (c Category) Globs() []string {
	return slices.Clone(categories[c].globs)
}

// Extensions returns the file extensions valid for the category.
func (c Category) Extensions() []string {
	return slices.Clone(categories[c].extensions)
}

// CategoryForKeyword maps a descriptor directive back to its category.
func CategoryForKeyword(keyword string) (Category, bool) {
	for c, info := range categories {
		if info.keyword == keyword {
			return c, true
		}
	}
	return 0, false
}

// Extensions returns the union of all category extensions, sorted.
func Extensions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, info := range categories {
		for _, ext := range info.extensions {
			if !seen[ext] {
				seen[ext] = true
				out = append(out, ext)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Entry is one discovered or declared file.
type Entry struct {
	Category Category
	// Path is slash-separated and relative to the project base.
	Path string
	// Stem is Path without its final extension (directory included).
	Stem string
	// Ext is the final ".xxx" segment of Path, or "" if there is none.
	Ext string
}

// New returns an Entry for path, normalising separators and splitting the
// extension.
func New(c Category, p string) Entry {
	p = strings.ReplaceAll(p, "\\", "/")
	e := Entry{Category: c, Path: p}
	e.Stem, e.Ext = splitExt(p)
	return e
}

// WithPath returns a copy of e with a different path (re-split). Unlike New
// it keeps backslashes, since rewritten paths may be target-rendered.
func (e Entry) WithPath(p string) Entry {
	e.Path = p
	e.Stem, e.Ext = splitExt(p)
	return e
}

// Base returns the final path element, accepting either separator.
func (e Entry) Base() string {
	p := e.Path
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Validate checks the Entry invariants: relative slash path, non-empty stem
// and an extension from the category's set.
func (e Entry) Validate() error {
	if e.Path == "" {
		return fmt.Errorf("%s entry has an empty path", e.Category)
	}
	if path.IsAbs(e.Path) || strings.Contains(e.Path, "\\") {
		return fmt.Errorf("%s entry %q must be a relative slash-separated path", e.Category, e.Path)
	}
	name := path.Base(e.Stem)
	if e.Stem == "" || name == "" || name == "." || strings.HasSuffix(e.Stem, "/") {
		return fmt.Errorf("%s entry %q has an empty stem", e.Category, e.Path)
	}
	if !slices.Contains(categories[e.Category].extensions, e.Ext) {
		return fmt.Errorf("%s entry %q has extension %q, want one of %v",
			e.Category, e.Path, e.Ext, categories[e.Category].extensions)
	}
	return nil
}

// String renders the entry as a descriptor directive.
func (e Entry) String() string {
	return e.Category.Keyword() + " += " + quotePath(e.Path)
}

func splitExt(p string) (stem, ext string) {
	i := strings.LastIndexByte(p, '.')
	if i < 0 || strings.ContainsAny(p[i:], `/\`) {
		return p, ""
	}
	return p[:i], p[i:]
}
