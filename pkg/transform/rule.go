// Package transform rewrites entry paths for a target build system.
//
// A target's rewrite is an ordered table of Rules. Rules are data, not code,
// so a new target is usually a new table composed from existing rules. Order
// is significant: each rule sees the output of the previous one.
package transform

import (
	"fmt"
	"regexp"

	"github.com/albertocavalcante/srcsync/pkg/entry"
)

// Rule is one regular-expression substitution applied to a path.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
	// Literal disables $1-style expansion in Replacement, so tokens such as
	// "$(PATHSEP)" are inserted verbatim.
	Literal bool
}

// NewRule compiles a template rule; Replacement may reference groups as ${1}.
func NewRule(pattern, replacement string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid rule pattern %q: %w", pattern, err)
	}
	return Rule{Pattern: re, Replacement: replacement}, nil
}

// MustRule is NewRule that panics on a bad pattern. For rule tables.
func MustRule(pattern, replacement string) Rule {
	r, err := NewRule(pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

// LiteralRule is MustRule with Literal set.
func LiteralRule(pattern, replacement string) Rule {
	r := MustRule(pattern, replacement)
	r.Literal = true
	return r
}

// Apply rewrites every match of the rule in s.
func (r Rule) Apply(s string) string {
	if r.Pattern == nil {
		return s
	}
	if r.Literal {
		return r.Pattern.ReplaceAllLiteralString(s, r.Replacement)
	}
	return r.Pattern.ReplaceAllString(s, r.Replacement)
}

// String describes the rule for logs.
func (r Rule) String() string {
	if r.Pattern == nil {
		return "identity"
	}
	return fmt.Sprintf("s/%s/%s/", r.Pattern, r.Replacement)
}

// Rules is an ordered rewrite table.
type Rules []Rule

// Rewrite applies every rule to s in order.
func (rs Rules) Rewrite(s string) string {
	for _, r := range rs {
		s = r.Apply(s)
	}
	return s
}

// Apply returns a new store with every path rewritten. Categories and count
// are preserved.
func (rs Rules) Apply(s *entry.Store) *entry.Store {
	if len(rs) == 0 {
		return s.Map(func(e entry.Entry) entry.Entry { return e })
	}
	return s.Map(func(e entry.Entry) entry.Entry {
		return e.WithPath(rs.Rewrite(e.Path))
	})
}

// Then returns a new table running rs followed by next.
func (rs Rules) Then(next ...Rule) Rules {
	out := make(Rules, 0, len(rs)+len(next))
	out = append(out, rs...)
	return append(out, next...)
}
