// Package report runs one validation pass over a dataset snapshot and its
// rules, and condenses the outcome into counters for metrics sinks.
package report

import (
	"time"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/recommend"
	"github.com/kilianp07/rulecheck/core/rules"
	"github.com/kilianp07/rulecheck/core/validation"
)

// Report is the full outcome of a validation pass.
type Report struct {
	GeneratedAt     time.Time                    `json:"generatedAt"`
	Counts          map[model.Entity]int         `json:"counts"`
	Rules           int                          `json:"rules"`
	Errors          []validation.ValidationError `json:"errors"`
	Violations      []rules.Violation            `json:"violations"`
	Results         []rules.Result               `json:"results"`
	Recommendations []recommend.Recommendation   `json:"recommendations"`
}

// Build validates ds, checks and dry-runs rs against it and generates
// recommendations. Cross-entity lookups are computed once from ds.
func Build(ds model.Dataset, rs []rules.Rule) Report {
	counts := make(map[model.Entity]int, len(model.Entities))
	for _, e := range model.Entities {
		counts[e] = ds.Len(e)
	}
	return Report{
		GeneratedAt:     time.Now().UTC(),
		Counts:          counts,
		Rules:           len(rs),
		Errors:          validation.Dataset(ds),
		Violations:      rules.Validate(rs, ds),
		Results:         rules.Apply(ds, rs),
		Recommendations: recommend.Generate(ds),
	}
}

// OK reports whether the pass found no data error, no violation and no
// failing rule.
func (r Report) OK() bool {
	if len(r.Errors) > 0 || len(r.Violations) > 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// ErrorsFor returns the data errors of one entity collection.
func (r Report) ErrorsFor(e model.Entity) []validation.ValidationError {
	var out []validation.ValidationError
	for _, err := range r.Errors {
		if err.Entity == e {
			out = append(out, err)
		}
	}
	return out
}
