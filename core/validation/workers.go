package validation

import (
	"math"
	"strings"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/normalize"
)

// ValidateWorkers checks WorkerID presence, the array shape of
// AvailableSlots, a numeric MaxLoadPerPhase of at least one and a non-empty
// skill list.
func ValidateWorkers(workers []model.Worker) []ValidationError {
	c := collector{entity: model.EntityWorkers}
	for i, w := range workers {
		if strings.TrimSpace(w.WorkerID) == "" {
			c.add(i, "WorkerID", KindStructural, "Missing WorkerID")
		}
		if !normalize.IsArray(w.AvailableSlots) {
			c.add(i, "AvailableSlots", KindFormat, "Must be a valid array")
		}
		if load, ok := normalize.Number(w.MaxLoadPerPhase); !ok || math.IsInf(load, 0) || load < 1 {
			c.add(i, "MaxLoadPerPhase", KindFormat, "Invalid MaxLoadPerPhase")
		}
		if len(normalize.Skills(w.Skills)) == 0 {
			c.add(i, "Skills", KindStructural, "Skills must not be empty")
		}
	}
	return c.result()
}
