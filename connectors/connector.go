package connectors

import (
	"context"

	"github.com/kilianp07/rulecheck/core/model"
)

// Filter selects the records of one collection that match a question
// written in natural language. Implementations must return a subset of the
// input with the same record shape and leave data untouched.
type Filter interface {
	Filter(ctx context.Context, question string, data []model.Record) ([]model.Record, error)
}
