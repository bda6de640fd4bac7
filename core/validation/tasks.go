package validation

import (
	"math"
	"regexp"
	"strings"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/normalize"
)

var (
	phaseRangeText = regexp.MustCompile(`^\d+-\d+$`)
	phaseArrayText = regexp.MustCompile(`^\[.*\]$`)
)

// ValidateTasks checks TaskID presence, a Duration of at least one, that
// every required skill is offered by some worker and the textual form of
// PreferredPhases.
//
// Only the range ("1-3") and JSON array ("[1,2]") forms pass the
// PreferredPhases check. Plain comma lists are flagged even though the
// normalizer accepts them.
func ValidateTasks(tasks []model.Task, workerSkills map[string]struct{}) []ValidationError {
	c := collector{entity: model.EntityTasks}
	for i, t := range tasks {
		if strings.TrimSpace(t.TaskID) == "" {
			c.add(i, "TaskID", KindStructural, "Missing TaskID")
		}
		if d, ok := normalize.Number(t.Duration); !ok || math.IsInf(d, 0) || d < 1 {
			c.add(i, "Duration", KindFormat, "Duration must be ≥ 1")
		}
		for _, s := range normalize.Skills(t.RequiredSkills) {
			if _, ok := workerSkills[s]; !ok {
				c.add(i, "RequiredSkills", KindReferential, "Unknown Skill: %s", s)
			}
		}
		if text, ok := t.PreferredPhases.(string); ok {
			text = strings.TrimSpace(text)
			if text != "" && !phaseRangeText.MatchString(text) && !phaseArrayText.MatchString(text) {
				c.add(i, "PreferredPhases", KindFormat, "Invalid PreferredPhases format")
			}
		}
	}
	return c.result()
}
