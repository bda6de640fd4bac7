package ingest

import "strings"

// canonicalFields lists every known column name.
var canonicalFields = []string{
	"ClientID", "ClientName", "PriorityLevel", "GroupTag", "AttributesJSON", "RequestedTaskIDs",
	"WorkerID", "WorkerName", "WorkerGroup", "Skills", "AvailableSlots", "MaxLoadPerPhase", "QualificationLevel",
	"TaskID", "TaskName", "Duration", "RequiredSkills", "PreferredPhases", "MaxConcurrent",
}

// headerSynonyms maps a folded header to its canonical field name.
var headerSynonyms = func() map[string]string {
	m := make(map[string]string, len(canonicalFields)+8)
	for _, f := range canonicalFields {
		m[fold(f)] = f
	}
	m["clienttag"] = "GroupTag"
	m["group"] = "GroupTag"
	m["priority"] = "PriorityLevel"
	m["attributes"] = "AttributesJSON"
	m["requestedtasks"] = "RequestedTaskIDs"
	m["slots"] = "AvailableSlots"
	m["phases"] = "PreferredPhases"
	m["maxload"] = "MaxLoadPerPhase"
	return m
}()

// fold lower-cases h and drops spaces, underscores and dashes so that
// "Client ID", "client_id" and "clientId" compare equal.
func fold(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// NormalizeHeader returns the canonical field name for h, or h trimmed
// when it is not a known column.
func NormalizeHeader(h string) string {
	if c, ok := headerSynonyms[fold(h)]; ok {
		return c
	}
	return strings.TrimSpace(h)
}

// NormalizeRecord rewrites the keys of rec to canonical field names. When
// two headers map to the same field the later one wins.
func NormalizeRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[NormalizeHeader(k)] = v
	}
	return out
}
