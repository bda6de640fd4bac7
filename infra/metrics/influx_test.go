package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/rulecheck/core/metrics"
	"github.com/kilianp07/rulecheck/core/model"
)

type lineRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (l *lineRecorder) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		l.mu.Lock()
		l.bodies = append(l.bodies, strings.TrimSpace(string(data)))
		l.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordReport(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	sum := sampleSummary()
	sum.GeneratedAt = now
	if err := sink.RecordReport(sum); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("validation_pass").
		AddTag("component", "workspace").
		AddField("clients", 3).
		AddField("clients_errors", 1).
		AddField("workers", 2).
		AddField("workers_errors", 0).
		AddField("tasks", 4).
		AddField("tasks_errors", 2).
		AddField("violations", 1).
		AddField("passed", 1).
		AddField("failed", 1).
		AddField("recommendations", 5).
		SetTime(now)
	r1 := write.NewPointWithMeasurement("rule_result").
		AddTag("rule_id", "r1").
		AddTag("rule_type", "coRun").
		AddField("passed", false).
		SetTime(now)
	r2 := write.NewPointWithMeasurement("rule_result").
		AddTag("rule_id", "r2").
		AddTag("rule_type", "loadLimit").
		AddField("passed", true).
		SetTime(now)
	want := []string{
		strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)),
		strings.TrimSpace(write.PointToLineProtocol(r1, time.Nanosecond)),
		strings.TrimSpace(write.PointToLineProtocol(r2, time.Nanosecond)),
	}
	if len(rec.bodies) != len(want) {
		t.Fatalf("unexpected bodies: %#v", rec.bodies)
	}
	for i := range want {
		if rec.bodies[i] != want[i] {
			t.Errorf("body %d: got %s want %s", i, rec.bodies[i], want[i])
		}
	}
}

func TestInfluxSink_RecordFilter(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.FilterEvent{Entity: model.EntityClients, Mode: "completion", Before: 10, After: 4, Accepted: true, Duration: 2 * time.Second, Time: now}
	if err := sink.RecordFilter(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("filter_call").
		AddTag("entity", "clients").
		AddTag("mode", "completion").
		AddTag("accepted", "true").
		AddField("before", 10).
		AddField("after", 4).
		AddField("duration_ms", int64(2000)).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != exp {
		t.Errorf("bodies: %#v", rec.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
