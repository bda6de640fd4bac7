package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/rulecheck/connectors"
	"github.com/kilianp07/rulecheck/core/events"
	"github.com/kilianp07/rulecheck/core/logger"
	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/recommend"
	"github.com/kilianp07/rulecheck/core/report"
	"github.com/kilianp07/rulecheck/core/rules"
	"github.com/kilianp07/rulecheck/infra/ingest"
	"github.com/kilianp07/rulecheck/internal/eventbus"
)

var (
	// ErrUnknownEntity is returned for a collection name that is not
	// clients, workers or tasks.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnknownRecommendation is returned when accepting an id absent from
	// the last report.
	ErrUnknownRecommendation = errors.New("unknown recommendation")
	// ErrStaleSnapshot is returned when a collection changed while a filter
	// call was in flight.
	ErrStaleSnapshot = errors.New("collection changed during filter")
)

// Workspace holds the dataset and the rule set being edited. Every
// mutation re-runs the validation pass and publishes the outcome.
type Workspace struct {
	mu      sync.RWMutex
	data    model.Dataset
	rules   rules.Set
	last    report.Report
	version map[model.Entity]uint64

	bus eventbus.EventBus
	log logger.Logger
}

// NewWorkspace returns an empty workspace. bus may be nil.
func NewWorkspace(bus eventbus.EventBus, log logger.Logger) *Workspace {
	w := &Workspace{
		bus:     bus,
		log:     log,
		version: make(map[model.Entity]uint64, len(model.Entities)),
	}
	w.last = report.Build(w.data, nil)
	return w
}

// Dataset returns a copy of the current dataset.
func (w *Workspace) Dataset() model.Dataset {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.data.Clone()
}

// Rules returns the current rules in order.
func (w *Workspace) Rules() []rules.Rule {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rules.Rules()
}

// Report returns the outcome of the last validation pass.
func (w *Workspace) Report() report.Report {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// Replace swaps the dataset and the rule set at once.
func (w *Workspace) Replace(ds model.Dataset, rs []rules.Rule) report.Report {
	w.mu.Lock()
	w.data = ds.Clone()
	w.rules = rules.NewSet(rs...)
	for _, e := range model.Entities {
		w.version[e]++
	}
	rep := w.revalidateLocked()
	w.mu.Unlock()

	for _, e := range model.Entities {
		w.publish(events.DatasetChanged{Entity: e, Source: "load", Rows: ds.Len(e)})
	}
	w.publish(events.RulesChanged{Action: "set", Count: len(rs)})
	w.publish(events.ReportReady{Report: rep})
	return rep
}

// SetCollection replaces one collection with recs. The records are
// decoded first; on error the workspace is left untouched.
func (w *Workspace) SetCollection(e model.Entity, recs []model.Record, source string) (report.Report, error) {
	w.mu.Lock()
	rep, err := w.setCollectionLocked(e, recs)
	w.mu.Unlock()
	if err != nil {
		return report.Report{}, err
	}
	w.publish(events.DatasetChanged{Entity: e, Source: source, Rows: len(recs)})
	w.publish(events.ReportReady{Report: rep})
	return rep, nil
}

func (w *Workspace) setCollectionLocked(e model.Entity, recs []model.Record) (report.Report, error) {
	ds := w.data.Clone()
	var err error
	switch e {
	case model.EntityClients:
		ds.Clients, err = model.DecodeClients(recs)
	case model.EntityWorkers:
		ds.Workers, err = model.DecodeWorkers(recs)
	case model.EntityTasks:
		ds.Tasks, err = model.DecodeTasks(recs)
	default:
		return report.Report{}, fmt.Errorf("%w %q", ErrUnknownEntity, e)
	}
	if err != nil {
		return report.Report{}, fmt.Errorf("%s: %w", e, err)
	}
	w.data = ds
	w.version[e]++
	return w.revalidateLocked(), nil
}

// UpdateField sets one field of one row. A nil or empty value removes the
// field. Header synonyms are accepted for field.
func (w *Workspace) UpdateField(e model.Entity, row int, field string, value any) (report.Report, error) {
	w.mu.Lock()
	recs, err := w.data.Records(e)
	if err != nil {
		w.mu.Unlock()
		return report.Report{}, fmt.Errorf("%w %q", ErrUnknownEntity, e)
	}
	if row < 0 || row >= len(recs) {
		w.mu.Unlock()
		return report.Report{}, fmt.Errorf("%s: row %d out of range", e, row)
	}
	field = ingest.NormalizeHeader(field)
	if s, ok := value.(string); value == nil || (ok && s == "") {
		delete(recs[row], field)
	} else {
		recs[row][field] = value
	}
	rep, err := w.setCollectionLocked(e, recs)
	w.mu.Unlock()
	if err != nil {
		return report.Report{}, err
	}
	w.publish(events.DatasetChanged{Entity: e, Source: "edit", Rows: len(recs)})
	w.publish(events.ReportReady{Report: rep})
	return rep, nil
}

// AddRule appends r. A rule without id gets a fresh one.
func (w *Workspace) AddRule(r rules.Rule) (rules.Rule, report.Report, error) {
	if r != nil && r.RuleID() == "" {
		r = r.WithID(rules.NewID())
	}
	rep, err := w.mutateRules("add", ruleID(r), func(s rules.Set) (rules.Set, error) { return s.Add(r) })
	return r, rep, err
}

// ReplaceRule replaces the rule sharing r's id.
func (w *Workspace) ReplaceRule(r rules.Rule) (report.Report, error) {
	return w.mutateRules("replace", ruleID(r), func(s rules.Set) (rules.Set, error) { return s.Replace(r) })
}

// DeleteRule removes the rule with id.
func (w *Workspace) DeleteRule(id string) (report.Report, error) {
	return w.mutateRules("delete", id, func(s rules.Set) (rules.Set, error) { return s.Delete(id) })
}

// SetRules replaces the whole rule set.
func (w *Workspace) SetRules(rs []rules.Rule) (report.Report, error) {
	return w.mutateRules("set", "", func(rules.Set) (rules.Set, error) { return rules.NewSet(rs...), nil })
}

// AcceptRecommendation adds the rule suggested by the recommendation with
// id in the last report.
func (w *Workspace) AcceptRecommendation(id string) (rules.Rule, report.Report, error) {
	w.mu.RLock()
	var (
		rec   recommend.Recommendation
		found bool
	)
	for _, r := range w.last.Recommendations {
		if r.ID == id {
			rec, found = r, true
			break
		}
	}
	w.mu.RUnlock()
	if !found {
		return nil, report.Report{}, fmt.Errorf("%w %q", ErrUnknownRecommendation, id)
	}
	r, err := recommend.Accept(rec)
	if err != nil {
		return nil, report.Report{}, err
	}
	return w.AddRule(r)
}

func (w *Workspace) mutateRules(action, id string, fn func(rules.Set) (rules.Set, error)) (report.Report, error) {
	w.mu.Lock()
	next, err := fn(w.rules)
	if err != nil {
		w.mu.Unlock()
		return report.Report{}, err
	}
	w.rules = next
	rep := w.revalidateLocked()
	count := next.Len()
	w.mu.Unlock()

	w.publish(events.RulesChanged{Action: action, RuleID: id, Count: count})
	w.publish(events.ReportReady{Report: rep})
	return rep, nil
}

// Revalidate re-runs the validation pass on the unchanged state.
func (w *Workspace) Revalidate() report.Report {
	w.mu.Lock()
	rep := w.revalidateLocked()
	w.mu.Unlock()
	w.publish(events.ReportReady{Report: rep})
	return rep
}

// ApplyFilter asks f for the rows of collection e matching question and
// replaces the collection with the answer. The collection is replaced
// entirely or not at all: a failed call, an undecodable answer or an edit
// made while the call was in flight leaves it untouched.
func (w *Workspace) ApplyFilter(ctx context.Context, f connectors.Filter, e model.Entity, question string) (report.Report, error) {
	if _, err := model.ParseEntity(string(e)); err != nil {
		return report.Report{}, fmt.Errorf("%w %q", ErrUnknownEntity, e)
	}
	w.mu.RLock()
	recs, err := w.data.Records(e)
	version := w.version[e]
	w.mu.RUnlock()
	if err != nil {
		return report.Report{}, err
	}

	ev := events.FilterApplied{Entity: e, Mode: filterMode(f), Question: question, Before: len(recs)}
	start := time.Now()
	out, err := f.Filter(ctx, question, recs)
	ev.Duration = time.Since(start)
	if err != nil {
		ev.Err = err
		w.publish(ev)
		return report.Report{}, fmt.Errorf("filter %s: %w", e, err)
	}
	ev.After = len(out)

	w.mu.Lock()
	if w.version[e] != version {
		w.mu.Unlock()
		ev.Err = ErrStaleSnapshot
		w.publish(ev)
		return report.Report{}, ErrStaleSnapshot
	}
	rep, err := w.setCollectionLocked(e, out)
	w.mu.Unlock()
	if err != nil {
		ev.Err = err
		w.publish(ev)
		return report.Report{}, err
	}
	w.log.Infow("filter applied", map[string]any{"entity": e.String(), "before": ev.Before, "after": ev.After})
	w.publish(ev)
	w.publish(events.DatasetChanged{Entity: e, Source: "filter", Rows: len(out)})
	w.publish(events.ReportReady{Report: rep})
	return rep, nil
}

func (w *Workspace) revalidateLocked() report.Report {
	w.last = report.Build(w.data, w.rules.Rules())
	return w.last
}

func (w *Workspace) publish(ev eventbus.Event) {
	if w.bus != nil {
		w.bus.Publish(ev)
	}
}

func filterMode(f connectors.Filter) string {
	if m, ok := f.(interface{ Mode() string }); ok {
		return m.Mode()
	}
	return "custom"
}

func ruleID(r rules.Rule) string {
	if r == nil {
		return ""
	}
	return r.RuleID()
}
