package report

import (
	"time"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/validation"
)

// Summary holds the counters of a report.
type Summary struct {
	GeneratedAt     time.Time               `json:"generatedAt"`
	Counts          map[model.Entity]int    `json:"counts"`
	ErrorsByEntity  map[model.Entity]int    `json:"errorsByEntity"`
	ErrorsByKind    map[validation.Kind]int `json:"errorsByKind"`
	Rules           int                     `json:"rules"`
	Violations      int                     `json:"violations"`
	Passed          int                     `json:"passed"`
	Failed          int                     `json:"failed"`
	Recommendations int                     `json:"recommendations"`
	RuleOutcomes    []RuleOutcome           `json:"ruleOutcomes"`
}

// RuleOutcome is the dry-run result of one rule without its payload.
type RuleOutcome struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Passed bool   `json:"passed"`
}

// Summary computes the counters of r.
func (r Report) Summary() Summary {
	s := Summary{
		GeneratedAt:     r.GeneratedAt,
		Counts:          make(map[model.Entity]int, len(r.Counts)),
		ErrorsByEntity:  make(map[model.Entity]int, len(model.Entities)),
		ErrorsByKind:    map[validation.Kind]int{},
		Rules:           r.Rules,
		Violations:      len(r.Violations),
		Recommendations: len(r.Recommendations),
		RuleOutcomes:    make([]RuleOutcome, 0, len(r.Results)),
	}
	for e, n := range r.Counts {
		s.Counts[e] = n
	}
	for _, e := range model.Entities {
		s.ErrorsByEntity[e] = 0
	}
	for _, err := range r.Errors {
		s.ErrorsByEntity[err.Entity]++
		s.ErrorsByKind[err.Kind]++
	}
	for _, v := range r.Violations {
		s.ErrorsByKind[v.Kind]++
	}
	for _, res := range r.Results {
		if res.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		o := RuleOutcome{Passed: res.Passed}
		if res.Rule != nil {
			o.ID = res.Rule.RuleID()
			o.Type = string(res.Rule.RuleType())
		}
		s.RuleOutcomes = append(s.RuleOutcomes, o)
	}
	return s
}

// Errors returns the number of data errors.
func (s Summary) Errors() int {
	n := 0
	for _, c := range s.ErrorsByEntity {
		n += c
	}
	return n
}
