package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/rulecheck/core/metrics"
	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/report"
	"github.com/kilianp07/rulecheck/infra/logger"
)

// InfluxSink writes validation pass outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.ReportSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordReport writes one validation_pass point followed by one
// rule_result point per rule.
func (s *InfluxSink) RecordReport(sum report.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ts := sum.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	p := write.NewPointWithMeasurement("validation_pass").
		AddTag("component", "workspace")
	for _, e := range model.Entities {
		p = p.AddField(e.String(), sum.Counts[e]).
			AddField(e.String()+"_errors", sum.ErrorsByEntity[e])
	}
	p = p.AddField("violations", sum.Violations).
		AddField("passed", sum.Passed).
		AddField("failed", sum.Failed).
		AddField("recommendations", sum.Recommendations).
		SetTime(ts)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for _, o := range sum.RuleOutcomes {
		rp := write.NewPointWithMeasurement("rule_result").
			AddTag("rule_id", o.ID).
			AddTag("rule_type", o.Type).
			AddField("passed", o.Passed).
			SetTime(ts)
		if err := s.writeAPI.WritePoint(ctx, rp); err != nil {
			return err
		}
	}
	return nil
}

// RecordFilter writes a natural language filter call.
func (s *InfluxSink) RecordFilter(ev coremetrics.FilterEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("filter_call").
		AddTag("entity", ev.Entity.String()).
		AddTag("mode", ev.Mode).
		AddTag("accepted", strconv.FormatBool(ev.Accepted)).
		AddField("before", ev.Before).
		AddField("after", ev.After).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
