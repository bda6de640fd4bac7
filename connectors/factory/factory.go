package factory

import (
	"github.com/kilianp07/rulecheck/connectors"
	"github.com/kilianp07/rulecheck/connectors/nlfilter"
	corefactory "github.com/kilianp07/rulecheck/core/factory"
	"github.com/kilianp07/rulecheck/infra/logger"
)

const (
	IDProxy      = nlfilter.ModeProxy
	IDCompletion = nlfilter.ModeCompletion
)

var filters = corefactory.NewRegistry[connectors.Filter]()

func init() {
	for _, id := range []string{IDProxy, IDCompletion} {
		_ = filters.Register(id, nlfilterFactory(id))
	}
}

func nlfilterFactory(mode string) corefactory.Factory[connectors.Filter] {
	return func(conf map[string]any) (connectors.Filter, error) {
		var cfg nlfilter.Config
		if err := corefactory.Decode(conf, &cfg); err != nil {
			return nil, err
		}
		return nlfilter.New(mode, cfg, logger.New("nlfilter"))
	}
}

// RegisterFilter adds a filter implementation under id.
func RegisterFilter(id string, f corefactory.Factory[connectors.Filter]) error {
	return filters.Register(id, f)
}

// NewFilter builds the filter described by cfg.
func NewFilter(cfg corefactory.ModuleConfig) (connectors.Filter, error) {
	return filters.Create(cfg)
}

// Types lists the registered filter ids.
func Types() []string { return filters.Types() }
