package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/rulecheck/core/recommend"
	"github.com/kilianp07/rulecheck/core/rules"
	"github.com/kilianp07/rulecheck/core/validation"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteRules writes rs to w as a JSON array of rule records.
func WriteRules(w io.Writer, rs []rules.Rule) error {
	ms := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			ms = append(ms, rules.ToMap(r))
		}
	}
	return WriteJSON(w, ms)
}

// WriteResultsCSV writes the dry-run outcome of each rule.
func WriteResultsCSV(w io.Writer, results []rules.Result) error {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		id, typ := "", ""
		if res.Rule != nil {
			id, typ = res.Rule.RuleID(), string(res.Rule.RuleType())
		}
		passed, reason := "No", res.Reason
		if res.Passed {
			passed = "Yes"
		}
		if reason == "" {
			reason = "-"
		}
		rows = append(rows, []string{id, typ, passed, reason})
	}
	return writeCSV(w, []string{"RuleID", "RuleType", "Passed", "Reason"}, rows)
}

// WriteErrorsCSV writes validation errors, one per line.
func WriteErrorsCSV(w io.Writer, errs []validation.ValidationError) error {
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, []string{string(e.Entity), strconv.Itoa(e.RowIndex), e.Field, string(e.Kind), e.Message})
	}
	return writeCSV(w, []string{"Entity", "Row", "Field", "Kind", "Message"}, rows)
}

// WriteViolationsCSV writes rule violations, one per line.
func WriteViolationsCSV(w io.Writer, vs []rules.Violation) error {
	rows := make([][]string, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, []string{v.ID, string(v.Type), string(v.Kind), v.Message})
	}
	return writeCSV(w, []string{"RuleID", "RuleType", "Kind", "Message"}, rows)
}

// WriteRecommendationsCSV writes recommendations with their suggested rule
// encoded as JSON.
func WriteRecommendationsCSV(w io.Writer, recs []recommend.Recommendation) error {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		suggested := ""
		if r.SuggestedRule != nil {
			b, err := json.Marshal(rules.ToMap(r.SuggestedRule))
			if err != nil {
				return err
			}
			suggested = string(b)
		}
		rows = append(rows, []string{r.ID, string(r.Type), r.Title, strconv.Itoa(r.Confidence), r.Description, r.Reasoning, suggested})
	}
	return writeCSV(w, []string{"ID", "Type", "Title", "Confidence", "Description", "Reasoning", "SuggestedRule"}, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range rows {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
