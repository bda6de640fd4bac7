package mqtt

import (
	"encoding/json"

	coremetrics "github.com/kilianp07/rulecheck/core/metrics"
	"github.com/kilianp07/rulecheck/core/report"
)

type filterMessage struct {
	Entity     string `json:"entity"`
	Mode       string `json:"mode"`
	Before     int    `json:"before"`
	After      int    `json:"after"`
	Accepted   bool   `json:"accepted"`
	DurationMS int64  `json:"duration_ms"`
	Timestamp  int64  `json:"timestamp"`
}

// RecordReport publishes the summary as JSON on <topic>/summary.
func (p *Publisher) RecordReport(s report.Summary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.publish(p.topic+"/summary", payload)
}

// PublishReport publishes a full report on <topic>/report.
func (p *Publisher) PublishReport(r report.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.publish(p.topic+"/report", payload)
}

// RecordFilter publishes a filter call on <topic>/filter.
func (p *Publisher) RecordFilter(ev coremetrics.FilterEvent) error {
	payload, err := json.Marshal(filterMessage{
		Entity:     ev.Entity.String(),
		Mode:       ev.Mode,
		Before:     ev.Before,
		After:      ev.After,
		Accepted:   ev.Accepted,
		DurationMS: ev.Duration.Milliseconds(),
		Timestamp:  ev.Time.UnixMilli(),
	})
	if err != nil {
		return err
	}
	return p.publish(p.topic+"/filter", payload)
}
