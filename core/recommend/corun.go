package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/normalize"
	"github.com/kilianp07/rulecheck/core/rules"
)

func coRunOpportunities(tasks []model.Task) []Recommendation {
	var out []Recommendation

	byPhases := map[string][]string{}
	phasesOf := map[string][]int{}
	for _, t := range tasks {
		phases := normalize.Unique(normalize.Phases(t.PreferredPhases))
		if len(phases) == 0 {
			continue
		}
		key := joinInts(phases)
		byPhases[key] = append(byPhases[key], strings.TrimSpace(t.TaskID))
		phasesOf[key] = phases
	}
	for _, key := range sortedKeys(byPhases) {
		ids := byPhases[key]
		if len(ids) < 2 {
			continue
		}
		out = append(out, Recommendation{
			ID:            newID("corun-phases", key),
			Type:          rules.TypeCoRun,
			Title:         "Co-Run Opportunity: " + headList(ids, 3),
			Description:   fmt.Sprintf("Tasks %s all prefer phases %s. Consider adding a co-run rule.", strings.Join(ids, ", "), key),
			Confidence:    min(95, 60+10*len(ids)),
			SuggestedRule: rules.CoRun{Tasks: ids},
			Reasoning: fmt.Sprintf("Found %d tasks with identical preferred phases (%s). Co-running them could improve scheduling efficiency.",
				len(ids), joinInts(phasesOf[key])),
		})
	}

	bySkills := map[string][]string{}
	for _, t := range tasks {
		skills := uniqueStrings(normalize.Skills(t.RequiredSkills))
		if len(skills) == 0 {
			continue
		}
		key := strings.Join(skills, ", ")
		bySkills[key] = append(bySkills[key], strings.TrimSpace(t.TaskID))
	}
	for _, key := range sortedKeys(bySkills) {
		ids := bySkills[key]
		if len(ids) < 2 {
			continue
		}
		out = append(out, Recommendation{
			ID:            newID("corun-skills", key),
			Type:          rules.TypeCoRun,
			Title:         "Skill-Based Co-Run: " + headList(ids, 2),
			Description:   fmt.Sprintf("Tasks %s require identical skills (%s). Co-run them for resource efficiency.", strings.Join(ids, ", "), key),
			Confidence:    min(85, 50+8*len(ids)),
			SuggestedRule: rules.CoRun{Tasks: ids},
			Reasoning:     fmt.Sprintf("Tasks share identical skill requirements: %s. Co-running could optimize worker allocation.", key),
		})
	}
	return out
}

func headList(ids []string, n int) string {
	if len(ids) <= n {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:n], ", ") + "..."
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
