package recommend

import (
	"fmt"
	"math"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/normalize"
	"github.com/kilianp07/rulecheck/core/rules"
)

const (
	minOverlapPct      = 30.0
	fragmentedFactor   = 0.7
	fragmentConfidence = 65
)

func slotRestrictionOpportunities(clients []model.Client) []Recommendation {
	groups := map[string][]model.Client{}
	for _, c := range clients {
		k := groupKey(c.GroupTag)
		groups[k] = append(groups[k], c)
	}

	var out []Recommendation
	for _, name := range sortedKeys(groups) {
		members := groups[name]
		if len(members) < 2 {
			continue
		}
		sets := make([][]int, 0, len(members))
		for _, c := range members {
			s := normalize.Unique(normalize.Phases(c.AvailableSlots))
			if len(s) == 0 {
				sets = nil
				break
			}
			sets = append(sets, s)
		}
		if sets == nil {
			continue
		}
		common := normalize.Intersect(sets...)
		union := normalize.Union(sets...)
		pct := float64(len(common)) / float64(len(union)) * 100

		if len(common) >= 2 && pct > minOverlapPct {
			minCommon := min(len(common), max(2, int(math.Floor(0.8*float64(len(common))))))
			out = append(out, Recommendation{
				ID:    newID("slotrestriction", name),
				Type:  rules.TypeSlotRestriction,
				Title: fmt.Sprintf("Slot Coordination for %s", name),
				Description: fmt.Sprintf("%q clients share %d common slots (%s). Enforce a minimum of %d common slots?",
					name, len(common), joinInts(common), minCommon),
				Confidence:    min(85, 50+int(math.Floor(pct/2))),
				SuggestedRule: rules.SlotRestriction{GroupTag: name, MinCommonSlots: minCommon},
				Reasoning: fmt.Sprintf("Group has %.1f%% slot overlap with %d common slots. Enforcing coordination could improve scheduling.",
					pct, len(common)),
			})
		}

		total := 0
		for _, s := range sets {
			total += len(s)
		}
		avg := float64(total) / float64(len(sets))
		fragmented := 0
		for _, s := range sets {
			if float64(len(s)) < avg*fragmentedFactor {
				fragmented++
			}
		}
		if fragmented > 0 && len(common) >= 1 {
			out = append(out, Recommendation{
				ID:    newID("slotrestriction-fragmented", name),
				Type:  rules.TypeSlotRestriction,
				Title: fmt.Sprintf("Address Fragmentation in %s", name),
				Description: fmt.Sprintf("%d clients in %q have limited availability. Require at least %d common slots for coordination?",
					fragmented, name, len(common)),
				Confidence:    fragmentConfidence,
				SuggestedRule: rules.SlotRestriction{GroupTag: name, MinCommonSlots: max(1, len(common))},
				Reasoning:     fmt.Sprintf("%d clients have below-average availability. A common slot requirement keeps the group coordinated.", fragmented),
			})
		}
	}
	return out
}
