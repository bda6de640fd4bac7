package validation

import (
	"strings"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/normalize"
)

// TaskIDs returns the set of non-blank task identifiers of a snapshot.
func TaskIDs(tasks []model.Task) map[string]struct{} {
	ids := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if id := strings.TrimSpace(t.TaskID); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// WorkerSkills returns the lower-cased union of all worker skill tokens.
func WorkerSkills(workers []model.Worker) map[string]struct{} {
	skills := make(map[string]struct{})
	for _, w := range workers {
		for _, s := range normalize.Skills(w.Skills) {
			skills[s] = struct{}{}
		}
	}
	return skills
}

// Dataset runs the three entity validators against one snapshot, computing
// the cross-entity lookup sets once. Results are ordered clients, workers,
// tasks.
func Dataset(ds model.Dataset) []ValidationError {
	out := ValidateClients(ds.Clients, TaskIDs(ds.Tasks))
	out = append(out, ValidateWorkers(ds.Workers)...)
	out = append(out, ValidateTasks(ds.Tasks, WorkerSkills(ds.Workers))...)
	return out
}
