package write

import "sort"

// SetDiff returns the elements to add (in desired but not current) and
// remove (in current but not desired). Both results come back sorted by
// their string form for stable output.
func SetDiff[T comparable](desired, current map[T]bool, key func(T) string) (add, remove []T) {
	for v := range desired {
		if !current[v] {
			add = append(add, v)
		}
	}
	for v := range current {
		if !desired[v] {
			remove = append(remove, v)
		}
	}
	sort.Slice(add, func(i, j int) bool { return key(add[i]) < key(add[j]) })
	sort.Slice(remove, func(i, j int) bool { return key(remove[i]) < key(remove[j]) })
	return add, remove
}
