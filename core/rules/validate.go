package rules

import (
	"fmt"
	"strings"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/normalize"
	"github.com/kilianp07/rulecheck/core/validation"
)

// maxNamedOffenders bounds the worker ids listed in a load limit violation.
const maxNamedOffenders = 3

// Violation reports a rule that is malformed or cannot hold on the data.
type Violation struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Message string          `json:"message"`
	Kind    validation.Kind `json:"kind"`
}

// Validate checks every rule against ds and returns the violations found.
// A panic while checking one rule is recovered and reported as a violation
// of that rule; the remaining rules are still checked.
func Validate(rs []Rule, ds model.Dataset) []Violation {
	out := []Violation{}
	for _, r := range rs {
		out = append(out, validateOne(r, ds)...)
	}
	return out
}

func validateOne(r Rule, ds model.Dataset) (out []Violation) {
	r = Canonical(r)
	if r == nil {
		return []Violation{{Message: "Rule is empty", Kind: validation.KindRuleConfig}}
	}
	defer func() {
		if p := recover(); p != nil {
			out = []Violation{{ID: safeID(r), Type: safeType(r), Message: fmt.Sprintf("Rule check failed: %v", p), Kind: validation.KindRuleConfig}}
		}
	}()
	switch v := r.(type) {
	case CoRun:
		return validateCoRun(v, ds.Tasks)
	case SlotRestriction:
		return validateSlotRestriction(v, ds.Clients)
	case LoadLimit:
		return validateLoadLimit(v, ds.Workers)
	case Unknown:
		if v.Reason != "" {
			return []Violation{violation(r, validation.KindRuleConfig, "Malformed rule: %s", v.Reason)}
		}
		return []Violation{violation(r, validation.KindRuleConfig, "Unknown rule type: %s", v.Kind)}
	}
	return []Violation{violation(r, validation.KindRuleConfig, "Unknown rule type: %s", r.RuleType())}
}

func validateCoRun(r CoRun, tasks []model.Task) []Violation {
	ids := uniqueIDs(r.Tasks)
	if len(ids) < 2 {
		return []Violation{violation(r, validation.KindRuleConfig, "Co-run rule must include at least 2 tasks")}
	}
	byID := indexTasks(tasks)
	var (
		out     []Violation
		missing []string
		found   []string
	)
	for _, id := range ids {
		if _, ok := byID[id]; ok {
			found = append(found, id)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		out = append(out, violation(r, validation.KindReferential, "Tasks not found: %s", strings.Join(missing, ", ")))
	}
	if len(found) < 2 {
		return out
	}
	first := normalize.Unique(normalize.Phases(byID[found[0]].PreferredPhases))
	var disjoint []string
	for _, id := range found[1:] {
		phases := normalize.Unique(normalize.Phases(byID[id].PreferredPhases))
		if !normalize.Overlaps(first, phases) {
			disjoint = append(disjoint, id)
		}
	}
	if len(disjoint) > 0 {
		out = append(out, violation(r, validation.KindRuleUnsatisfiable,
			"Co-run tasks %s share no preferred phase with %s", strings.Join(disjoint, ", "), found[0]))
	}
	return out
}

func validateSlotRestriction(r SlotRestriction, clients []model.Client) []Violation {
	if r.GroupTag == "" || r.MinCommonSlots < 1 {
		return []Violation{violation(r, validation.KindRuleConfig, "Slot restriction needs a group tag and minCommonSlots ≥ 1")}
	}
	group := clientsInGroup(clients, r.GroupTag)
	switch len(group) {
	case 0:
		return []Violation{violation(r, validation.KindRuleUnsatisfiable, "No clients found with GroupTag '%s'", r.GroupTag)}
	case 1:
		return []Violation{violation(r, validation.KindRuleUnsatisfiable, "Group '%s' has a single client; a slot restriction needs at least 2", r.GroupTag)}
	}
	sets := make([][]int, 0, len(group))
	var invalid []string
	for _, c := range group {
		slots := normalize.Phases(c.AvailableSlots)
		if len(slots) == 0 {
			invalid = append(invalid, c.ClientID)
			continue
		}
		sets = append(sets, slots)
	}
	if len(invalid) == len(group) {
		return []Violation{violation(r, validation.KindFormat, "All clients in group '%s' have invalid AvailableSlots", r.GroupTag)}
	}
	if len(invalid) > 0 {
		return []Violation{violation(r, validation.KindFormat, "Clients with invalid AvailableSlots in group '%s': %s", r.GroupTag, strings.Join(invalid, ", "))}
	}
	common := normalize.Intersect(sets...)
	if len(common) < r.MinCommonSlots {
		return []Violation{violation(r, validation.KindRuleUnsatisfiable,
			"Group '%s' has %d common slots (required %d)", r.GroupTag, len(common), r.MinCommonSlots)}
	}
	return nil
}

func validateLoadLimit(r LoadLimit, workers []model.Worker) []Violation {
	if r.WorkerGroup == "" || r.MaxSlotsPerPhase < 1 {
		return []Violation{violation(r, validation.KindRuleConfig, "Load limit needs a worker group and maxSlotsPerPhase ≥ 1")}
	}
	group := workersInGroup(workers, r.WorkerGroup)
	if len(group) == 0 {
		return []Violation{violation(r, validation.KindRuleUnsatisfiable, "No workers found in group '%s'", r.WorkerGroup)}
	}
	var overloaded []string
	for _, w := range group {
		if len(normalize.Phases(w.AvailableSlots)) > r.MaxSlotsPerPhase {
			overloaded = append(overloaded, w.WorkerID)
		}
	}
	if len(overloaded) == 0 {
		return nil
	}
	named := overloaded
	if len(named) > maxNamedOffenders {
		named = named[:maxNamedOffenders]
	}
	msg := fmt.Sprintf("Workers in group '%s' exceed max slots per phase (%d): %s",
		r.WorkerGroup, r.MaxSlotsPerPhase, strings.Join(named, ", "))
	if rest := len(overloaded) - len(named); rest > 0 {
		msg += fmt.Sprintf(" and %d more", rest)
	}
	return []Violation{{ID: r.ID, Type: TypeLoadLimit, Message: msg, Kind: validation.KindRuleUnsatisfiable}}
}

func violation(r Rule, kind validation.Kind, format string, args ...any) Violation {
	return Violation{ID: r.RuleID(), Type: r.RuleType(), Message: fmt.Sprintf(format, args...), Kind: kind}
}

func safeID(r Rule) (id string) {
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	return r.RuleID()
}

func safeType(r Rule) (t Type) {
	defer func() {
		if recover() != nil {
			t = ""
		}
	}()
	return r.RuleType()
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// indexTasks keys tasks by id; the first row wins for duplicate ids.
func indexTasks(tasks []model.Task) map[string]model.Task {
	out := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		id := strings.TrimSpace(t.TaskID)
		if _, ok := out[id]; !ok && id != "" {
			out[id] = t
		}
	}
	return out
}

func clientsInGroup(clients []model.Client, tag string) []model.Client {
	var out []model.Client
	for _, c := range clients {
		if strings.TrimSpace(c.GroupTag) == tag {
			out = append(out, c)
		}
	}
	return out
}

func workersInGroup(workers []model.Worker, group string) []model.Worker {
	var out []model.Worker
	for _, w := range workers {
		if strings.TrimSpace(w.WorkerGroup) == group {
			out = append(out, w)
		}
	}
	return out
}
