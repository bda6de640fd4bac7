package validation

import (
	"fmt"

	"github.com/kilianp07/rulecheck/core/model"
)

// Kind classifies a data-quality or rule finding.
type Kind string

const (
	// KindStructural is a missing or duplicate required field.
	KindStructural Kind = "structural"
	// KindFormat is unparseable JSON, number or range text.
	KindFormat Kind = "format"
	// KindReferential is a dangling ID or skill reference across entities.
	KindReferential Kind = "referential"
	// KindRuleConfig is a malformed rule.
	KindRuleConfig Kind = "rule_config"
	// KindRuleUnsatisfiable is a rule whose constraint fails on the data.
	KindRuleUnsatisfiable Kind = "rule_unsatisfiable"
)

// ValidationError is one finding against one row.
type ValidationError struct {
	Entity   model.Entity `json:"entity"`
	RowIndex int          `json:"rowIndex"`
	Field    string       `json:"field"`
	Message  string       `json:"message"`
	Kind     Kind         `json:"kind"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s[%d].%s: %s", e.Entity, e.RowIndex, e.Field, e.Message)
}

type collector struct {
	entity model.Entity
	errs   []ValidationError
}

func (c *collector) add(row int, field string, kind Kind, format string, args ...any) {
	c.errs = append(c.errs, ValidationError{
		Entity:   c.entity,
		RowIndex: row,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
	})
}

func (c *collector) result() []ValidationError {
	if c.errs == nil {
		return []ValidationError{}
	}
	return c.errs
}
