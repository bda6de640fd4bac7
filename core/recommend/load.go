package recommend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/normalize"
	"github.com/kilianp07/rulecheck/core/rules"
)

const (
	overloadFactor   = 1.5
	capFactor        = 1.2
	underusedMaxLoad = 3
)

func loadLimitOpportunities(workers []model.Worker) []Recommendation {
	groups := map[string][]model.Worker{}
	for _, w := range workers {
		k := groupKey(w.WorkerGroup)
		groups[k] = append(groups[k], w)
	}

	var out []Recommendation
	for _, name := range sortedKeys(groups) {
		members := groups[name]
		if len(members) < 2 {
			continue
		}
		loads := make([]float64, len(members))
		for i, w := range members {
			loads[i] = float64(len(normalize.Phases(w.AvailableSlots)))
		}
		avg := stat.Mean(loads, nil)
		maxLoad := int(floats.Max(loads))

		overloaded := 0
		for _, l := range loads {
			if l > avg*overloadFactor {
				overloaded++
			}
		}
		if overloaded > 0 {
			limit := int(math.Ceil(avg * capFactor))
			out = append(out, Recommendation{
				ID:    newID("loadlimit", name),
				Type:  rules.TypeLoadLimit,
				Title: fmt.Sprintf("Load Imbalance in %s Group", name),
				Description: fmt.Sprintf("%d workers in %q are overloaded (avg: %.1f, max: %d). Set load limit to %d?",
					overloaded, name, avg, maxLoad, limit),
				Confidence:    min(90, 70+5*overloaded),
				SuggestedRule: rules.LoadLimit{WorkerGroup: name, MaxSlotsPerPhase: limit},
				Reasoning: fmt.Sprintf("Detected load imbalance: %d workers exceed %.1f slots while the average is %.1f. A limit of %d would balance workload.",
					overloaded, avg*overloadFactor, avg, limit),
			})
		}

		if maxLoad < underusedMaxLoad && len(members) > 2 {
			out = append(out, Recommendation{
				ID:            newID("loadlimit-underused", name),
				Type:          rules.TypeLoadLimit,
				Title:         fmt.Sprintf("Underutilized %s Group", name),
				Description:   fmt.Sprintf("%q workers have low utilization (max: %d slots). Consider increasing capacity or redistributing work.", name, maxLoad),
				Confidence:    60,
				SuggestedRule: rules.LoadLimit{WorkerGroup: name, MaxSlotsPerPhase: max(maxLoad+2, 4)},
				Reasoning:     fmt.Sprintf("Group shows low utilization with at most %d slots per worker.", maxLoad),
			})
		}
	}
	return out
}
