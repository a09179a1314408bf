package emit

import (
	"strings"

	"github.com/albertocavalcante/srcsync/pkg/entry"
)

// DefaultCMakeVariable is the list variable set by the CMake fragment.
const DefaultCMakeVariable = "source_files"

// CMake renders a set() block with every Source, Header and Resource path in
// store order. Precompiled headers are left out.
func CMake(h Header, s *entry.Store) string {
	var paths []string
	for _, e := range s.Entries() {
		switch e.Category {
		case entry.Source, entry.Header, entry.Resource:
			paths = append(paths, cmakeArg(e.Path))
		}
	}

	var sb strings.Builder
	sb.WriteString(h.Comment())
	sb.WriteString("set(" + DefaultCMakeVariable + "\n")
	sb.WriteString(strings.Join(paths, "\n"))
	sb.WriteString("\n)\n")
	return sb.String()
}

// cmakeArg quotes p when an unquoted CMake argument would split or end at
// one of its characters.
func cmakeArg(p string) string {
	if !strings.ContainsAny(p, " \t()#;\"\\") {
		return p
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(p) + `"`
}
