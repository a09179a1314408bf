package syncer

import (
	"errors"
	"fmt"
)

// Kind classifies a group failure by pipeline stage.
type Kind int

const (
	// DiscoveryError means the group root could not be scanned.
	DiscoveryError Kind = iota + 1
	// ParseError means the descriptor could not be read or yielded nothing.
	ParseError
	// WriteError means an output file could not be written.
	WriteError
)

// Sentinels for errors.Is. Every *Error matches the one for its Kind.
var (
	ErrDiscovery = errors.New("discovery error")
	ErrParse     = errors.New("parse error")
	ErrWrite     = errors.New("write error")
)

func (k Kind) String() string {
	switch k {
	case DiscoveryError:
		return "discovery"
	case ParseError:
		return "parse"
	case WriteError:
		return "write"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case DiscoveryError:
		return ErrDiscovery
	case ParseError:
		return ErrParse
	case WriteError:
		return ErrWrite
	default:
		return nil
	}
}

// Error is a failure of one group at one stage.
type Error struct {
	Kind  Kind
	Group string
	// Path is the file or directory involved, if any.
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("group %s: %s error", e.Group, e.Kind)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
