// Package util holds small generic helpers shared by the srcsync packages.
package util

import (
	"cmp"
	"maps"
	"slices"
)

// SortedKeys returns the keys of m in ascending order. Callers that turn a
// set into output use it so results do not depend on map iteration order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// Distinct returns the distinct values of items in ascending order.
func Distinct[K cmp.Ordered](items []K) []K {
	out := slices.Clone(items)
	slices.Sort(out)
	return slices.Compact(out)
}
