package normalize

import "sort"

// Unique returns the sorted distinct values of s.
func Unique(s []int) []int {
	seen := make(map[int]struct{}, len(s))
	out := make([]int, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Overlaps reports whether a and b share at least one value.
func Overlaps(a, b []int) bool {
	set := toSet(b)
	for _, v := range a {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// Intersect returns the sorted distinct values present in every set. It
// returns an empty slice for no input.
func Intersect(sets ...[]int) []int {
	if len(sets) == 0 {
		return []int{}
	}
	common := Unique(sets[0])
	for _, s := range sets[1:] {
		set := toSet(s)
		kept := common[:0:0]
		for _, v := range common {
			if _, ok := set[v]; ok {
				kept = append(kept, v)
			}
		}
		common = kept
	}
	return common
}

// Union returns the sorted distinct values present in any set.
func Union(sets ...[]int) []int {
	var all []int
	for _, s := range sets {
		all = append(all, s...)
	}
	return Unique(all)
}

func toSet(s []int) map[int]struct{} {
	set := make(map[int]struct{}, len(s))
	for _, v := range s {
		set[v] = struct{}{}
	}
	return set
}
