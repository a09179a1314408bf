package entry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrNoEntries is returned by Parse when a non-blank descriptor yields no
// directives.
var ErrNoEntries = errors.New("descriptor has no entries")

// directive matches one descriptor line:
//
//	HEADERS += engine/sc_io.hpp
//	SOURCES += "engine/my file.cpp"
//
// Group 1 is the keyword. A quoted path fills groups 2 (up to the final
// extension) and 3 (the extension); a bare path fills groups 4 and 5. Bare
// paths take letters and digits of any script plus "._/+-".
var directive = regexp.MustCompile(
	`^\s*(SOURCES|HEADERS|PRECOMPILED_HEADER|RESOURCES)\s*\+?=\s*` +
		`(?:"([^"\r\n]*)(\.[\pL\pN\pM_]*)"|([.\pL\pN\pM_/+-]*)(\.[\pL\pN\pM_]*))`)

// barePath matches paths that need no quoting in a descriptor.
var barePath = regexp.MustCompile(`^[.\pL\pN\pM_/+-]*$`)

// ParseLine scans a single descriptor line. It returns false for lines that
// are not directives (comments, blank lines, other qmake statements).
func ParseLine(line string) (Entry, bool) {
	m := directive.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	c, ok := CategoryForKeyword(m[1])
	if !ok {
		return Entry{}, false
	}
	stem, ext := m[4], m[5]
	if m[3] != "" {
		stem, ext = m[2], m[3]
	}
	return Entry{
		Category: c,
		Path:     stem + ext,
		Stem:     stem,
		Ext:      ext,
	}, true
}

// quotePath renders p for a descriptor line, quoting it when a bare path
// would not parse back.
func quotePath(p string) string {
	if barePath.MatchString(p) {
		return p
	}
	return `"` + p + `"`
}

// Representable reports whether e survives being written to a descriptor
// and parsed back.
func (e Entry) Representable() bool {
	got, ok := ParseLine(e.String())
	return ok && got.Category == e.Category && got.Path == e.Path
}

// Parse reads a portable descriptor and returns its entries in file order.
// Blank input yields an empty store; non-blank input without any directive
// is an error.
func Parse(group string, r io.Reader) (*Store, error) {
	var (
		entries []Entry
		blank   = true
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			blank = false
		}
		if e, ok := ParseLine(line); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	if len(entries) == 0 && !blank {
		return nil, ErrNoEntries
	}
	return NewStore(group, entries), nil
}

// ParseString is Parse over an in-memory descriptor.
func ParseString(group, text string) (*Store, error) {
	return Parse(group, strings.NewReader(text))
}
