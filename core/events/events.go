package events

import (
	"time"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/report"
)

// DatasetChanged is published after a collection of the workspace changed.
// Source is "load", "edit" or "filter".
type DatasetChanged struct {
	Entity model.Entity
	Source string
	Rows   int
}

// RulesChanged is published after the rule set changed. Action is "add",
// "replace", "delete" or "set".
type RulesChanged struct {
	Action string
	RuleID string
	Count  int
}

// ReportReady carries the outcome of a validation pass.
type ReportReady struct {
	Report report.Report
}

// FilterApplied is published when a filter result is offered for one
// collection. Err is set when the result was rejected and the collection
// left untouched.
type FilterApplied struct {
	Entity   model.Entity
	Mode     string
	Question string
	Before   int
	After    int
	Duration time.Duration
	Err      error
}
