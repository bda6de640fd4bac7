package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/rulecheck/core/events"
	coremetrics "github.com/kilianp07/rulecheck/core/metrics"
	"github.com/kilianp07/rulecheck/infra/logger"
	"github.com/kilianp07/rulecheck/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events. It stops when the context is canceled or the bus is closed; the
// returned channel is closed at that point.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.ReportSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.ReportReady:
					if err := sink.RecordReport(e.Report.Summary()); err != nil {
						log.Warnf("record report: %v", err)
					}
				case events.FilterApplied:
					if r, ok := sink.(coremetrics.FilterRecorder); ok {
						if err := r.RecordFilter(coremetrics.FilterEvent{
							Entity:   e.Entity,
							Mode:     e.Mode,
							Before:   e.Before,
							After:    e.After,
							Accepted: e.Err == nil,
							Duration: e.Duration,
							Time:     time.Now(),
						}); err != nil {
							log.Warnf("record filter: %v", err)
						}
					}
				}
			}
		}
	}()
	return done
}
