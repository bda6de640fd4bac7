package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kilianp07/rulecheck/config"
	"github.com/kilianp07/rulecheck/core/events"
	coremetrics "github.com/kilianp07/rulecheck/core/metrics"
	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/report"
	"github.com/kilianp07/rulecheck/core/rules"
	"github.com/kilianp07/rulecheck/infra/ingest"
	"github.com/kilianp07/rulecheck/infra/logger"
	"github.com/kilianp07/rulecheck/infra/metrics"
	"github.com/kilianp07/rulecheck/infra/mqtt"
	"github.com/kilianp07/rulecheck/internal/eventbus"
)

// Control commands accepted on the MQTT control topic.
const (
	CommandRevalidate = "revalidate"
	CommandReload     = "reload"
)

// ErrNoData is returned when the configuration locates no dataset.
var ErrNoData = errors.New("no dataset configured")

// Service keeps a workspace in sync with the dataset and rules files and
// exports every validation pass to the configured sinks.
type Service struct {
	cfg  *config.Config
	ws   *Workspace
	bus  *eventbus.Bus
	sink coremetrics.ReportSink
	pub  *mqtt.Publisher
	log  logger.Logger

	control chan string
}

// New creates a Service from the configuration. It connects the MQTT
// publisher when one is configured.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewReportSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New()
	svc := &Service{
		cfg:     cfg,
		ws:      NewWorkspace(bus, logger.New("workspace")),
		bus:     bus,
		sink:    sink,
		log:     logg,
		control: make(chan string, 4),
	}
	if cfg.MQTT != nil {
		pub, err := mqtt.NewPublisher(*cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub.OnControl(svc.enqueue)
		svc.pub = pub
	}
	return svc, nil
}

// Workspace returns the workspace driven by the service.
func (s *Service) Workspace() *Workspace { return s.ws }

// Load reads the dataset and rules files into the workspace.
func (s *Service) Load() (report.Report, error) {
	ds, rs, err := LoadFiles(s.cfg)
	if err != nil {
		return report.Report{}, err
	}
	return s.ws.Replace(ds, rs), nil
}

// LoadFiles reads the dataset and the optional rules file located by cfg.
func LoadFiles(cfg *config.Config) (model.Dataset, []rules.Rule, error) {
	var (
		ds  model.Dataset
		err error
	)
	switch {
	case cfg.Data.Path != "":
		ds, err = ingest.LoadDataset(cfg.Data.Path)
	case cfg.Data.Configured():
		ds, err = ingest.LoadCSVFiles(cfg.Data.Files())
	default:
		return model.Dataset{}, nil, ErrNoData
	}
	if err != nil {
		return model.Dataset{}, nil, err
	}
	var rs []rules.Rule
	if cfg.Rules.Path != "" {
		if rs, err = ingest.LoadRules(cfg.Rules.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return model.Dataset{}, nil, err
		}
	}
	return ds, rs, nil
}

// Run loads the files, then revalidates after every change of a watched
// file or control command until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	collected := metrics.StartEventCollector(ctx, s.bus, s.sinks())
	var published <-chan struct{}
	if s.pub != nil {
		published = s.bus.SubscribeFunc(ctx, func(ev eventbus.Event) {
			if rr, ok := ev.(events.ReportReady); ok {
				if err := s.pub.PublishReport(rr.Report); err != nil {
					s.log.Warnf("publish report: %v", err)
				}
			}
		})
	}
	if port := s.cfg.Metrics.PrometheusPort; port > 0 {
		go func() {
			if err := metrics.StartPromServer(ctx, fmt.Sprintf(":%d", port)); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	defer func() {
		s.bus.Close()
		<-collected
		if published != nil {
			<-published
		}
	}()

	rep, err := s.Load()
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	s.logReport(rep)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()
	tracked, err := s.watch(w)
	if err != nil {
		return err
	}

	debounce := time.Duration(s.cfg.Watch.DebounceMS) * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !tracked(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.log.Debugf("change detected: %s", ev)
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warnf("watcher: %v", err)
		case <-timer.C:
			s.reload()
		case cmd := <-s.control:
			switch strings.ToLower(strings.TrimSpace(cmd)) {
			case CommandRevalidate:
				s.logReport(s.ws.Revalidate())
			case CommandReload:
				s.reload()
			default:
				s.log.Warnf("unknown control command %q", cmd)
			}
		}
	}
}

// reload keeps the previous state when a file cannot be parsed.
func (s *Service) reload() {
	rep, err := s.Load()
	if err != nil {
		s.log.Errorf("reload rejected: %v", err)
		return
	}
	s.logReport(rep)
}

// watch registers the parent directory of every input file, so that
// editors replacing files by rename are seen, and returns a matcher for the
// files themselves. Any file of a CSV dataset directory matches.
func (s *Service) watch(w *fsnotify.Watcher) (func(name string) bool, error) {
	files := map[string]struct{}{}
	whole := map[string]struct{}{}
	dirs := map[string]struct{}{}
	for _, p := range []string{s.cfg.Data.Path, s.cfg.Data.Clients, s.cfg.Data.Workers, s.cfg.Data.Tasks, s.cfg.Rules.Path} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			whole[abs] = struct{}{}
			dirs[abs] = struct{}{}
			continue
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}
	return func(name string) bool {
		name = filepath.Clean(name)
		if _, ok := files[name]; ok {
			return true
		}
		_, ok := whole[filepath.Dir(name)]
		return ok && strings.EqualFold(filepath.Ext(name), ".csv")
	}, nil
}

func (s *Service) sinks() coremetrics.ReportSink {
	if s.pub == nil {
		return s.sink
	}
	return coremetrics.NewMultiSink(s.sink, s.pub)
}

func (s *Service) enqueue(cmd string) {
	select {
	case s.control <- cmd:
	default:
		s.log.Warnf("control queue full, dropping %q", cmd)
	}
}

func (s *Service) logReport(rep report.Report) {
	sum := rep.Summary()
	s.log.Infow("validation pass", map[string]any{
		"errors":          sum.Errors(),
		"violations":      sum.Violations,
		"passed":          sum.Passed,
		"failed":          sum.Failed,
		"recommendations": sum.Recommendations,
	})
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.pub != nil {
		s.pub.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
