package rules

import (
	"errors"
	"fmt"
)

// ErrUnknownRule is returned when an operation names a rule id that is not
// in the set.
var ErrUnknownRule = errors.New("unknown rule")

// Set is an ordered collection of rules keyed by id. It has value
// semantics: every mutation returns a new Set and leaves the receiver
// untouched.
type Set struct {
	rules []Rule
}

// NewSet builds a set from rules, keeping their order.
func NewSet(rs ...Rule) Set {
	out := make([]Rule, 0, len(rs))
	for _, r := range rs {
		out = append(out, Canonical(r))
	}
	return Set{rules: out}
}

// Rules returns a copy of the rules in order.
func (s Set) Rules() []Rule {
	return append([]Rule{}, s.rules...)
}

// Len returns the number of rules.
func (s Set) Len() int { return len(s.rules) }

// Get looks a rule up by id.
func (s Set) Get(id string) (Rule, bool) {
	if i := s.index(id); i >= 0 {
		return s.rules[i], true
	}
	return nil, false
}

// Add appends r. A rule without id is assigned a fresh one.
func (s Set) Add(r Rule) (Set, error) {
	r = Canonical(r)
	if r == nil {
		return s, errors.New("nil rule")
	}
	if r.RuleID() == "" {
		r = r.WithID(NewID())
	}
	if s.index(r.RuleID()) >= 0 {
		return s, fmt.Errorf("rule %s already exists", r.RuleID())
	}
	return Set{rules: append(s.Rules(), r)}, nil
}

// Replace swaps the rule having the same id as r.
func (s Set) Replace(r Rule) (Set, error) {
	r = Canonical(r)
	if r == nil {
		return s, errors.New("nil rule")
	}
	i := s.index(r.RuleID())
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrUnknownRule, r.RuleID())
	}
	out := s.Rules()
	out[i] = r
	return Set{rules: out}, nil
}

// Delete removes the rule with the given id.
func (s Set) Delete(id string) (Set, error) {
	i := s.index(id)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrUnknownRule, id)
	}
	out := make([]Rule, 0, len(s.rules)-1)
	out = append(out, s.rules[:i]...)
	out = append(out, s.rules[i+1:]...)
	return Set{rules: out}, nil
}

func (s Set) index(id string) int {
	for i, r := range s.rules {
		if r != nil && r.RuleID() == id {
			return i
		}
	}
	return -1
}
