package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/validation"
)

func TestValidateCoRunDisjointPhases(t *testing.T) {
	ds := model.Dataset{Tasks: []model.Task{
		{TaskID: "T1", PreferredPhases: "1-2"},
		{TaskID: "T2", PreferredPhases: "3-4"},
	}}
	v := Validate([]Rule{CoRun{ID: "r1", Tasks: []string{"T1", "T2"}}}, ds)
	require.Len(t, v, 1)
	assert.Equal(t, "r1", v[0].ID)
	assert.Equal(t, TypeCoRun, v[0].Type)
	assert.Equal(t, validation.KindRuleUnsatisfiable, v[0].Kind)
}

func TestValidateCoRunFirstAgainstRest(t *testing.T) {
	// T2 and T3 share nothing with each other but both overlap T1.
	ds := model.Dataset{Tasks: []model.Task{
		{TaskID: "T1", PreferredPhases: "1-4"},
		{TaskID: "T2", PreferredPhases: "[1]"},
		{TaskID: "T3", PreferredPhases: "4"},
	}}
	assert.Empty(t, Validate([]Rule{CoRun{ID: "r", Tasks: []string{"T1", "T2", "T3"}}}, ds))
}

func TestValidateCoRunConfigAndMissing(t *testing.T) {
	ds := model.Dataset{Tasks: []model.Task{{TaskID: "T1", PreferredPhases: "1-2"}, {TaskID: "T2", PreferredPhases: "2"}}}

	v := Validate([]Rule{CoRun{ID: "few", Tasks: []string{"T1", "T1"}}}, ds)
	require.Len(t, v, 1)
	assert.Equal(t, validation.KindRuleConfig, v[0].Kind)

	v = Validate([]Rule{CoRun{ID: "miss", Tasks: []string{"T1", "T2", "T9"}}}, ds)
	require.Len(t, v, 1)
	assert.Equal(t, "Tasks not found: T9", v[0].Message)
	assert.Equal(t, validation.KindReferential, v[0].Kind)
}

func TestValidateSlotRestriction(t *testing.T) {
	clients := []model.Client{
		{ClientID: "C1", GroupTag: "A", AvailableSlots: "[1,2,3]"},
		{ClientID: "C2", GroupTag: "A", AvailableSlots: []any{2, 3, 4}},
		{ClientID: "C3", GroupTag: "B", AvailableSlots: "[1]"},
		{ClientID: "C4", GroupTag: "D", AvailableSlots: "oops"},
		{ClientID: "C5", GroupTag: "D", AvailableSlots: "[1]"},
		{ClientID: "C6", GroupTag: "E"},
		{ClientID: "C7", GroupTag: "E", AvailableSlots: "[x"},
	}
	ds := model.Dataset{Clients: clients}

	assert.Empty(t, Validate([]Rule{SlotRestriction{ID: "ok", GroupTag: "A", MinCommonSlots: 2}}, ds))

	cases := []struct {
		rule SlotRestriction
		msg  string
	}{
		{SlotRestriction{ID: "x", GroupTag: "A", MinCommonSlots: 3}, "Group 'A' has 2 common slots (required 3)"},
		{SlotRestriction{ID: "x", GroupTag: "", MinCommonSlots: 1}, "Slot restriction needs a group tag and minCommonSlots ≥ 1"},
		{SlotRestriction{ID: "x", GroupTag: "A", MinCommonSlots: 0}, "Slot restriction needs a group tag and minCommonSlots ≥ 1"},
		{SlotRestriction{ID: "x", GroupTag: "Z", MinCommonSlots: 1}, "No clients found with GroupTag 'Z'"},
		{SlotRestriction{ID: "x", GroupTag: "B", MinCommonSlots: 1}, "Group 'B' has a single client; a slot restriction needs at least 2"},
		{SlotRestriction{ID: "x", GroupTag: "D", MinCommonSlots: 1}, "Clients with invalid AvailableSlots in group 'D': C4"},
		{SlotRestriction{ID: "x", GroupTag: "E", MinCommonSlots: 1}, "All clients in group 'E' have invalid AvailableSlots"},
	}
	for _, c := range cases {
		v := Validate([]Rule{c.rule}, ds)
		require.Len(t, v, 1, c.msg)
		assert.Equal(t, c.msg, v[0].Message)
	}
}

func TestValidateLoadLimit(t *testing.T) {
	ds := model.Dataset{Workers: []model.Worker{{WorkerID: "W1", WorkerGroup: "G", AvailableSlots: []any{1, 2, 3}}}}
	v := Validate([]Rule{LoadLimit{ID: "l", WorkerGroup: "G", MaxSlotsPerPhase: 2}}, ds)
	require.Len(t, v, 1)
	assert.Contains(t, v[0].Message, "W1")

	ds.Workers[0].AvailableSlots = []any{1, 2}
	assert.Empty(t, Validate([]Rule{LoadLimit{ID: "l", WorkerGroup: "G", MaxSlotsPerPhase: 2}}, ds))
}

func TestValidateLoadLimitNamesAtMostThree(t *testing.T) {
	var workers []model.Worker
	for _, id := range []string{"W1", "W2", "W3", "W4", "W5"} {
		workers = append(workers, model.Worker{WorkerID: id, WorkerGroup: "G", AvailableSlots: "[1,2]"})
	}
	v := Validate([]Rule{LoadLimit{ID: "l", WorkerGroup: "G", MaxSlotsPerPhase: 1}}, model.Dataset{Workers: workers})
	require.Len(t, v, 1)
	assert.Equal(t, "Workers in group 'G' exceed max slots per phase (1): W1, W2, W3 and 2 more", v[0].Message)

	v = Validate([]Rule{LoadLimit{ID: "l", WorkerGroup: "H", MaxSlotsPerPhase: 1}}, model.Dataset{Workers: workers})
	require.Len(t, v, 1)
	assert.Equal(t, "No workers found in group 'H'", v[0].Message)

	v = Validate([]Rule{LoadLimit{ID: "l", WorkerGroup: "G"}}, model.Dataset{Workers: workers})
	require.Len(t, v, 1)
	assert.Equal(t, validation.KindRuleConfig, v[0].Kind)
}

type panicky struct{ Unknown }

func (panicky) RuleType() Type { panic("boom") }

func TestValidateRecoversPerRule(t *testing.T) {
	rs := []Rule{
		panicky{Unknown{ID: "p"}},
		LoadLimit{ID: "l", WorkerGroup: "G", MaxSlotsPerPhase: 1},
	}
	ds := model.Dataset{Workers: []model.Worker{{WorkerID: "W1", WorkerGroup: "G", AvailableSlots: "[1]"}}}
	assert.NotPanics(t, func() {
		v := Validate(rs, ds)
		require.Len(t, v, 1)
		assert.Equal(t, "p", v[0].ID)
		assert.Equal(t, "Rule check failed: boom", v[0].Message)
	})
}

func TestValidateUnknownAndNil(t *testing.T) {
	v := Validate([]Rule{Unknown{ID: "u", Kind: "precedence"}, nil, Unknown{ID: "m", Kind: "coRun", Reason: "bad"}}, model.Dataset{})
	require.Len(t, v, 3)
	assert.Equal(t, "Unknown rule type: precedence", v[0].Message)
	assert.Equal(t, "Rule is empty", v[1].Message)
	assert.Equal(t, "Malformed rule: bad", v[2].Message)
}

func TestValidateIdempotent(t *testing.T) {
	ds := model.Dataset{Tasks: []model.Task{{TaskID: "T1", PreferredPhases: "1-2"}, {TaskID: "T2", PreferredPhases: "3"}}}
	rs := []Rule{CoRun{ID: "a", Tasks: []string{"T1", "T2"}}, SlotRestriction{ID: "b", GroupTag: "A", MinCommonSlots: 1}}
	assert.Equal(t, Validate(rs, ds), Validate(rs, ds))
}

func TestValidatePointerVariants(t *testing.T) {
	ds := model.Dataset{Tasks: []model.Task{
		{TaskID: "T1", PreferredPhases: "1-2"},
		{TaskID: "T2", PreferredPhases: "3-4"},
	}}
	rs := []Rule{
		(*CoRun)(nil),
		&CoRun{ID: "p", Tasks: []string{"T1", "T2"}},
		(*LoadLimit)(nil),
		CoRun{ID: "v", Tasks: []string{"T1", "T2"}},
	}
	var v []Violation
	require.NotPanics(t, func() { v = Validate(rs, ds) })
	require.Len(t, v, 4)
	assert.Equal(t, "Rule is empty", v[0].Message)
	assert.Equal(t, "p", v[1].ID)
	assert.Equal(t, validation.KindRuleUnsatisfiable, v[1].Kind)
	assert.Equal(t, "Rule is empty", v[2].Message)
	assert.Equal(t, "v", v[3].ID)
}

type panickyID struct{ Unknown }

func (panickyID) RuleID() string { panic("no id") }

func TestValidateRecoverWithoutID(t *testing.T) {
	var v []Violation
	require.NotPanics(t, func() { v = Validate([]Rule{panickyID{}}, model.Dataset{}) })
	require.Len(t, v, 1)
	assert.Empty(t, v[0].ID)
	assert.Equal(t, validation.KindRuleConfig, v[0].Kind)
}
