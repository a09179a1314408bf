package emit

import (
	"slices"
	"strings"

	"github.com/albertocavalcante/srcsync/pkg/entry"
	"github.com/albertocavalcante/srcsync/pkg/matcher"
)

// Descriptor renders the portable qmake descriptor:
//
//	HEADERS += engine/sc_io.hpp
//	SOURCES += engine/sc_io.cpp
//
// Categories appear in entry.DescriptorOrder, one blank line between them,
// and entries within a category are sorted case-insensitively. Empty
// categories are omitted.
func Descriptor(h Header, s *entry.Store) string {
	var sections []string
	for _, c := range entry.DescriptorOrder {
		entries := s.ByCategory(c)
		if len(entries) == 0 {
			continue
		}
		slices.SortStableFunc(entries, func(a, b entry.Entry) int {
			return matcher.Compare(a.Path, b.Path)
		})

		lines := make([]string, len(entries))
		for i, e := range entries {
			lines[i] = e.String()
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	out := h.Comment()
	if len(sections) > 0 {
		out += strings.Join(sections, "\n\n") + "\n"
	}
	return out
}
