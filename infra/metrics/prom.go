package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/rulecheck/core/metrics"
	"github.com/kilianp07/rulecheck/core/report"
)

// PromSink exposes validation pass outcomes as Prometheus metrics.
type PromSink struct {
	passes          prometheus.Counter
	records         *prometheus.GaugeVec
	dataErrors      *prometheus.GaugeVec
	findings        *prometheus.GaugeVec
	violations      prometheus.Gauge
	ruleResults     *prometheus.GaugeVec
	rulePassed      *prometheus.GaugeVec
	recommendations prometheus.Gauge
	filterCalls     *prometheus.CounterVec
	filterLatency   *prometheus.HistogramVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.passes, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rulecheck_validation_passes_total",
		Help: "Number of validation passes run",
	})); err != nil {
		return nil, err
	}
	if s.records, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rulecheck_records",
		Help: "Number of records per entity collection",
	}, []string{"entity"})); err != nil {
		return nil, err
	}
	if s.dataErrors, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rulecheck_validation_errors",
		Help: "Data validation errors per entity collection in the last pass",
	}, []string{"entity"})); err != nil {
		return nil, err
	}
	if s.findings, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rulecheck_findings",
		Help: "Data errors and rule violations per kind in the last pass",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.violations, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rulecheck_rule_violations",
		Help: "Rule violations in the last pass",
	})); err != nil {
		return nil, err
	}
	if s.ruleResults, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rulecheck_rule_results",
		Help: "Dry-run rule results of the last pass",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.rulePassed, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rulecheck_rule_passed",
		Help: "1 when the rule passed the last dry run, 0 otherwise",
	}, []string{"rule_id", "rule_type"})); err != nil {
		return nil, err
	}
	if s.recommendations, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rulecheck_recommendations",
		Help: "Rule recommendations produced by the last pass",
	})); err != nil {
		return nil, err
	}
	if s.filterCalls, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rulecheck_filter_calls_total",
		Help: "Natural language filter calls",
	}, []string{"entity", "mode", "accepted"})); err != nil {
		return nil, err
	}
	if s.filterLatency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rulecheck_filter_duration_seconds",
		Help:    "Natural language filter call duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "mode"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordReport sets the gauges to the values of the last pass.
func (s *PromSink) RecordReport(sum report.Summary) error {
	s.passes.Inc()
	for e, n := range sum.Counts {
		s.records.WithLabelValues(e.String()).Set(float64(n))
	}
	for e, n := range sum.ErrorsByEntity {
		s.dataErrors.WithLabelValues(e.String()).Set(float64(n))
	}
	s.findings.Reset()
	for k, n := range sum.ErrorsByKind {
		s.findings.WithLabelValues(string(k)).Set(float64(n))
	}
	s.violations.Set(float64(sum.Violations))
	s.ruleResults.WithLabelValues("passed").Set(float64(sum.Passed))
	s.ruleResults.WithLabelValues("failed").Set(float64(sum.Failed))
	s.rulePassed.Reset()
	for _, o := range sum.RuleOutcomes {
		v := 0.0
		if o.Passed {
			v = 1
		}
		s.rulePassed.WithLabelValues(o.ID, o.Type).Set(v)
	}
	s.recommendations.Set(float64(sum.Recommendations))
	return nil
}

// RecordFilter counts the call and observes its duration.
func (s *PromSink) RecordFilter(ev coremetrics.FilterEvent) error {
	s.filterCalls.WithLabelValues(ev.Entity.String(), ev.Mode, strconv.FormatBool(ev.Accepted)).Inc()
	s.filterLatency.WithLabelValues(ev.Entity.String(), ev.Mode).Observe(ev.Duration.Seconds())
	return nil
}
