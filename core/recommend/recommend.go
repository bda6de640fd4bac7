package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/rules"
)

// defaultGroup keys records whose group field is blank.
const defaultGroup = "default"

// namespace seeds deterministic recommendation ids.
var namespace = uuid.MustParse("6f1c3c1e-8a53-4c1b-9d0e-2b7a4b3f5e10")

// Recommendation is a proposed rule with its rationale.
type Recommendation struct {
	ID            string     `json:"id"`
	Type          rules.Type `json:"type"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Confidence    int        `json:"confidence"`
	SuggestedRule rules.Rule `json:"suggestedRule"`
	Reasoning     string     `json:"reasoning"`
}

// Generate scans ds and returns recommendations sorted by descending
// confidence. The result depends only on ds: ids are derived from the
// pattern that produced each recommendation.
func Generate(ds model.Dataset) []Recommendation {
	out := []Recommendation{}
	out = append(out, coRunOpportunities(ds.Tasks)...)
	out = append(out, loadLimitOpportunities(ds.Workers)...)
	out = append(out, slotRestrictionOpportunities(ds.Clients)...)
	for i := range out {
		out[i].Confidence = clamp(out[i].Confidence)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// Accept converts rec into a rule carrying a fresh id.
func Accept(rec Recommendation) (rules.Rule, error) {
	if rec.SuggestedRule == nil {
		return nil, fmt.Errorf("recommendation %s has no suggested rule", rec.ID)
	}
	return rec.SuggestedRule.WithID(rules.NewID()), nil
}

// Filter keeps recommendations at or above minConfidence, at most limit of
// them when limit is positive.
func Filter(recs []Recommendation, minConfidence, limit int) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.Confidence < minConfidence {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func newID(kind string, key string) string {
	return uuid.NewSHA1(namespace, []byte(kind+"/"+key)).String()
}

func clamp(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return c
}

func groupKey(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return defaultGroup
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
