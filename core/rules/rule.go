package rules

import "github.com/google/uuid"

// Type discriminates rule kinds in serialized form.
type Type string

const (
	TypeCoRun           Type = "coRun"
	TypeSlotRestriction Type = "slotRestriction"
	TypeLoadLimit       Type = "loadLimit"
)

// Rule is the sealed set of rule kinds.
type Rule interface {
	RuleID() string
	RuleType() Type
	// WithID returns a copy of the rule carrying id.
	WithID(id string) Rule
	isRule()
}

// CoRun requires a set of tasks to be schedulable in a shared phase.
type CoRun struct {
	ID    string   `json:"id" mapstructure:"id"`
	Tasks []string `json:"tasks" mapstructure:"tasks"`
}

// SlotRestriction requires clients sharing GroupTag to have at least
// MinCommonSlots available slots in common.
type SlotRestriction struct {
	ID             string `json:"id" mapstructure:"id"`
	GroupTag       string `json:"groupTag" mapstructure:"groupTag"`
	MinCommonSlots int    `json:"minCommonSlots" mapstructure:"minCommonSlots"`
}

// LoadLimit caps the number of available slots of every worker in
// WorkerGroup.
type LoadLimit struct {
	ID               string `json:"id" mapstructure:"id"`
	WorkerGroup      string `json:"workerGroup" mapstructure:"workerGroup"`
	MaxSlotsPerPhase int    `json:"maxSlotsPerPhase" mapstructure:"maxSlotsPerPhase"`
}

// Unknown is a rule record that could not be mapped onto a known kind.
type Unknown struct {
	ID     string
	Kind   string
	Reason string
	Fields map[string]any
}

func (r CoRun) RuleID() string           { return r.ID }
func (r SlotRestriction) RuleID() string { return r.ID }
func (r LoadLimit) RuleID() string       { return r.ID }
func (r Unknown) RuleID() string         { return r.ID }

func (CoRun) RuleType() Type           { return TypeCoRun }
func (SlotRestriction) RuleType() Type { return TypeSlotRestriction }
func (LoadLimit) RuleType() Type       { return TypeLoadLimit }
func (r Unknown) RuleType() Type       { return Type(r.Kind) }

func (r CoRun) WithID(id string) Rule {
	r.ID = id
	r.Tasks = append([]string(nil), r.Tasks...)
	return r
}

func (r SlotRestriction) WithID(id string) Rule { r.ID = id; return r }
func (r LoadLimit) WithID(id string) Rule       { r.ID = id; return r }
func (r Unknown) WithID(id string) Rule         { r.ID = id; return r }

func (CoRun) isRule()           {}
func (SlotRestriction) isRule() {}
func (LoadLimit) isRule()       {}
func (Unknown) isRule()         {}

// Canonical returns r with pointer variants replaced by their values.
// A nil pointer yields a nil Rule.
func Canonical(r Rule) Rule {
	switch v := r.(type) {
	case *CoRun:
		if v == nil {
			return nil
		}
		return *v
	case *SlotRestriction:
		if v == nil {
			return nil
		}
		return *v
	case *LoadLimit:
		if v == nil {
			return nil
		}
		return *v
	case *Unknown:
		if v == nil {
			return nil
		}
		return *v
	}
	return r
}

// NewID returns a fresh opaque rule identifier.
func NewID() string { return uuid.NewString() }
