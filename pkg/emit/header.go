// Package emit renders entry stores as build-system source lists.
//
// Emitters are pure: they take a store whose paths were already rewritten for
// the target (see package transform) and return the complete file text. The
// same store always renders to the same bytes.
package emit

import "strings"

// Header carries the two facts every generated file starts with: that it is
// generated, and how to regenerate it.
type Header struct {
	// Generator names the tool that wrote the file.
	Generator string
	// Command is what a user runs to regenerate the file.
	Command string
}

// DefaultHeader is the header used when none is configured.
var DefaultHeader = Header{Generator: "srcsync", Command: "srcsync sync"}

func (h Header) lines() []string {
	gen := h.Generator
	if gen == "" {
		gen = DefaultHeader.Generator
	}
	cmd := h.Command
	if cmd == "" {
		cmd = DefaultHeader.Command
	}
	return []string{
		"This file is automatically generated by " + gen,
		"To change the list of source files run " + cmd,
	}
}

// Comment renders the header as "#" comments followed by a blank line, for
// qmake, make and CMake files.
func (h Header) Comment() string {
	var sb strings.Builder
	for _, l := range h.lines() {
		sb.WriteString("# ")
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}

// XML renders the header as a markup comment followed by a blank line.
func (h Header) XML() string {
	return "<!--\n" + strings.Join(h.lines(), "\n") + "\n-->\n\n"
}
