package rules

import (
	"fmt"
	"strings"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/normalize"
)

// Result is the dry-run outcome of one rule.
type Result struct {
	Rule   Rule   `json:"rule"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// Apply evaluates every rule against ds and returns one Result per rule in
// input order.
func Apply(ds model.Dataset, rs []Rule) []Result {
	out := make([]Result, 0, len(rs))
	for _, r := range rs {
		out = append(out, applyOne(ds, r))
	}
	return out
}

func applyOne(ds model.Dataset, r Rule) (res Result) {
	r = Canonical(r)
	defer func() {
		if p := recover(); p != nil {
			res = fail(r, "Rule check failed: %v", p)
		}
	}()
	switch v := r.(type) {
	case CoRun:
		return applyCoRun(v, ds.Tasks)
	case SlotRestriction:
		return applySlotRestriction(v, ds.Clients)
	case LoadLimit:
		return applyLoadLimit(v, ds.Workers)
	}
	return fail(r, "Unknown rule type")
}

func applyCoRun(r CoRun, tasks []model.Task) Result {
	byID := indexTasks(tasks)
	var missing []string
	for _, id := range r.Tasks {
		if _, ok := byID[strings.TrimSpace(id)]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fail(r, "Missing task IDs: %s", strings.Join(missing, ", "))
	}
	if len(r.Tasks) == 0 {
		return fail(r, "No phase data available for tasks")
	}
	sets := make([][]int, 0, len(r.Tasks))
	for _, id := range r.Tasks {
		sets = append(sets, normalize.Phases(byID[strings.TrimSpace(id)].PreferredPhases))
	}
	if len(normalize.Intersect(sets...)) == 0 {
		return fail(r, "No common preferred phases found across tasks")
	}
	return Result{Rule: r, Passed: true}
}

func applySlotRestriction(r SlotRestriction, clients []model.Client) Result {
	group := clientsInGroup(clients, r.GroupTag)
	if len(group) == 0 {
		return fail(r, "No clients found with GroupTag '%s'", r.GroupTag)
	}
	sets := make([][]int, 0, len(group))
	for _, c := range group {
		sets = append(sets, normalize.Phases(c.AvailableSlots))
	}
	common := normalize.Intersect(sets...)
	if len(common) < r.MinCommonSlots {
		return fail(r, "Only %d common slots found (required %d)", len(common), r.MinCommonSlots)
	}
	return Result{Rule: r, Passed: true}
}

func applyLoadLimit(r LoadLimit, workers []model.Worker) Result {
	for _, w := range workersInGroup(workers, r.WorkerGroup) {
		if n := len(normalize.Phases(w.AvailableSlots)); n > r.MaxSlotsPerPhase {
			return fail(r, "Worker %s exceeds max slots (%d > %d)", w.WorkerID, n, r.MaxSlotsPerPhase)
		}
	}
	return Result{Rule: r, Passed: true}
}

func fail(r Rule, format string, args ...any) Result {
	return Result{Rule: r, Passed: false, Reason: fmt.Sprintf(format, args...)}
}
