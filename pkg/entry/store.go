package entry

import (
	"slices"
	"strings"
)

// Store is an immutable, ordered collection of entries for one group.
type Store struct {
	group   string
	entries []Entry
}

// NewStore returns a Store holding a copy of entries.
func NewStore(group string, entries []Entry) *Store {
	return &Store{
		group:   group,
		entries: slices.Clone(entries),
	}
}

// Group returns the name of the group the store belongs to.
func (s *Store) Group() string {
	if s == nil {
		return ""
	}
	return s.group
}

// Len returns the number of entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in store order.
func (s *Store) Entries() []Entry {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}

// ByCategory returns the entries of one category in store order.
func (s *Store) ByCategory(c Category) []Entry {
	if s == nil {
		return nil
	}
	var out []Entry
	for _, e := range s.entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the number of entries per category.
func (s *Store) Counts() map[Category]int {
	counts := make(map[Category]int)
	if s == nil {
		return counts
	}
	for _, e := range s.entries {
		counts[e.Category]++
	}
	return counts
}

// Filter returns a new store with only the given categories, order kept.
func (s *Store) Filter(cats ...Category) *Store {
	var out []Entry
	for _, e := range s.Entries() {
		if slices.Contains(cats, e.Category) {
			out = append(out, e)
		}
	}
	return &Store{group: s.Group(), entries: out}
}

// Map returns a new store with fn applied to every entry.
func (s *Store) Map(fn func(Entry) Entry) *Store {
	entries := s.Entries()
	for i, e := range entries {
		entries[i] = fn(e)
	}
	return &Store{group: s.Group(), entries: entries}
}

// Equal reports whether both stores hold the same entries per category,
// ignoring order. Duplicates count.
func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, c := range All() {
		a := paths(s.ByCategory(c))
		b := paths(other.ByCategory(c))
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}

// Validate returns the first invariant violation per entry.
func (s *Store) Validate() []error {
	var errs []error
	for _, e := range s.Entries() {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// String renders the store as descriptor directives, one per line.
func (s *Store) String() string {
	var sb strings.Builder
	for _, e := range s.Entries() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}
