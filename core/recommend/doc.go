// Package recommend proposes scheduling rules from patterns found in a
// dataset snapshot. Recommendations are advisory; Accept turns one into a
// rule ready to be added to a rules.Set.
package recommend
