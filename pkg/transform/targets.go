package transform

import "regexp"

// Default tokens used by the built-in tables.
const (
	// DefaultMakePrefix is stripped from Makefile paths, which live inside the
	// engine directory.
	DefaultMakePrefix = "engine/"

	// DefaultPathSeparator is the make variable substituted for "/".
	DefaultPathSeparator = "$(PATHSEP)"

	// DefaultEscapePrefix climbs from the project file directory back to the
	// source root.
	DefaultEscapePrefix = `..\`

	// MocPrefix names files generated by the Qt meta-object compiler.
	MocPrefix = "moc_"
)

// Make strips prefix from the start of each path, then replaces every "/"
// with the separator token.
func Make(prefix, separator string) Rules {
	var rs Rules
	if prefix != "" {
		rs = append(rs, LiteralRule(`^`+regexp.QuoteMeta(prefix), ""))
	}
	return append(rs, LiteralRule(`/`, separator))
}

// MSBuild prefixes each path with the escape token and converts "/" to "\".
func MSBuild(escape string) Rules {
	return Rules{
		LiteralRule(`^`, escape),
		LiteralRule(`/`, `\`),
	}
}

// CMake drops the group's leading path segment so paths are relative to the
// build root.
func CMake() Rules {
	return Rules{
		LiteralRule(`^[^/]+/`, ""),
	}
}

// Descriptor leaves paths unchanged; descriptors are base-relative.
func Descriptor() Rules {
	return nil
}

// mocName reduces a backslash path of a .hpp header to "<basename>.cpp".
// Other headers (.hh) pass through unchanged; moc output naming depends on it.
var mocName = MustRule(`.*\\(.*?).hpp`, "${1}.cpp")

// MocSource returns the moc-generated source file name for an MSBuild-rendered
// header path, e.g. `..\qt\sc_window.hpp` -> `moc_sc_window.cpp`.
func MocSource(header string) string {
	return MocPrefix + mocName.Apply(header)
}
