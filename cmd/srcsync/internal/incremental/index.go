package incremental

import (
	"maps"
	"slices"
	"time"
)

// IndexVersion is the current version of the index format.
const IndexVersion = 1

// Index is a snapshot of the tracked files, keyed by base-relative path.
type Index struct {
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Entries   map[string]*Entry `json:"entries"`
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		Version:   IndexVersion,
		UpdatedAt: time.Now(),
		Entries:   make(map[string]*Entry),
	}
}

// Add adds or updates an entry.
func (idx *Index) Add(e *Entry) {
	if idx == nil || e == nil {
		return
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]*Entry)
	}
	idx.Entries[e.Path] = e
}

// Get retrieves an entry by path.
func (idx *Index) Get(path string) (*Entry, bool) {
	if idx == nil || idx.Entries == nil {
		return nil, false
	}
	e, ok := idx.Entries[path]
	return e, ok
}

// Len returns the number of tracked files.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Entries)
}

// Paths returns the tracked paths, sorted.
func (idx *Index) Paths() []string {
	if idx == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(idx.Entries))
}

// Diff compares idx (old) against other (new). Entries with equal mtime and
// size are assumed unchanged; otherwise the hashes decide.
func (idx *Index) Diff(other *Index) *ChangeSet {
	var oldEntries, newEntries map[string]*Entry
	if idx != nil {
		oldEntries = idx.Entries
	}
	if other != nil {
		newEntries = other.Entries
	}
	return diff(oldEntries, newEntries, func(_ string, o, n *Entry) bool {
		return o.Hash != n.Hash
	})
}

// diff classifies paths; changed is consulted only for paths present in
// both maps whose mtime or size differ.
func diff(oldEntries, newEntries map[string]*Entry, changed func(path string, o, n *Entry) bool) *ChangeSet {
	cs := NewChangeSet()

	for path, n := range newEntries {
		o, exists := oldEntries[path]
		if !exists {
			cs.Added = append(cs.Added, path)
			continue
		}
		if o.ModTime == n.ModTime && o.Size == n.Size {
			continue
		}
		if changed(path, o, n) {
			cs.Modified = append(cs.Modified, path)
		}
	}

	for path := range oldEntries {
		if _, exists := newEntries[path]; !exists {
			cs.Deleted = append(cs.Deleted, path)
		}
	}

	cs.sort()
	return cs
}
