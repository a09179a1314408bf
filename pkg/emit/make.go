package emit

import (
	"strings"

	"github.com/albertocavalcante/srcsync/pkg/entry"
)

// DefaultMakeVariable is the variable the Makefile fragment accumulates into.
const DefaultMakeVariable = "SRC"

// Make renders a Makefile fragment listing only Source entries:
//
//	SRC += \
//	    sc_io.cpp \
//
// Every line, the last included, ends in a continuation backslash.
func Make(h Header, variable string, s *entry.Store) string {
	if variable == "" {
		variable = DefaultMakeVariable
	}

	var sb strings.Builder
	sb.WriteString(h.Comment())
	sb.WriteString(variable)
	sb.WriteString(" += \\")
	for _, e := range s.ByCategory(entry.Source) {
		sb.WriteString("\n    ")
		sb.WriteString(makeEscaper.Replace(e.Path))
		sb.WriteString(" \\")
	}
	sb.WriteByte('\n')
	return sb.String()
}

// makeEscaper escapes the characters that split or comment out a word in a
// Makefile list. "$" is left alone so $(PATHSEP) and friends still expand.
var makeEscaper = strings.NewReplacer(" ", `\ `, "#", `\#`)
