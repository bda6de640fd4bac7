package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/recommend"
	"github.com/kilianp07/rulecheck/core/report"
	"github.com/kilianp07/rulecheck/core/rules"
	"github.com/kilianp07/rulecheck/pkg/export"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

const (
	formatText = "text"
	formatJSON = "json"
	formatCSV  = "csv"
)

func checkFormat(f string, allowed ...string) error {
	for _, a := range allowed {
		if f == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (want %s)", f, strings.Join(allowed, ", "))
}

func printError(err error) {
	red.Fprintf(os.Stderr, "✗ %v\n", err)
}

func printErrors(w io.Writer, rep report.Report) {
	if len(rep.Errors) == 0 {
		green.Fprintf(w, "✓ No data errors\n")
		return
	}
	red.Fprintf(w, "%d data errors\n", len(rep.Errors))
	for _, e := range model.Entities {
		errs := rep.ErrorsFor(e)
		if len(errs) == 0 {
			continue
		}
		cyan.Fprintf(w, "  %s (%d)\n", e, len(errs))
		for _, ve := range errs {
			fmt.Fprintf(w, "    row %d  %-16s %s\n", ve.RowIndex, ve.Field, ve.Message)
		}
	}
}

func printViolations(w io.Writer, vs []rules.Violation) {
	if len(vs) == 0 {
		green.Fprintf(w, "✓ No rule violations\n")
		return
	}
	red.Fprintf(w, "%d rule violations\n", len(vs))
	for _, v := range vs {
		fmt.Fprintf(w, "  %s [%s] %s\n", v.ID, v.Type, v.Message)
	}
}

func printResults(w io.Writer, results []rules.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No rules")
		return
	}
	for _, res := range results {
		id, typ := "", ""
		if res.Rule != nil {
			id, typ = res.Rule.RuleID(), string(res.Rule.RuleType())
		}
		if res.Passed {
			green.Fprintf(w, "  PASS ")
		} else {
			red.Fprintf(w, "  FAIL ")
		}
		fmt.Fprintf(w, "%s [%s]", id, typ)
		if res.Reason != "" {
			fmt.Fprintf(w, "  %s", res.Reason)
		}
		fmt.Fprintln(w)
	}
}

func printRecommendations(w io.Writer, recs []recommend.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations")
		return
	}
	for _, r := range recs {
		c := yellow
		if r.Confidence >= 80 {
			c = green
		}
		c.Fprintf(w, "%3d%% ", r.Confidence)
		cyan.Fprintf(w, "%s", r.Title)
		fmt.Fprintf(w, "  (%s)\n", r.ID)
		fmt.Fprintf(w, "      %s\n      %s\n", r.Description, r.Reasoning)
	}
}

func printSummary(w io.Writer, rep report.Report) {
	sum := rep.Summary()
	fmt.Fprintf(w, "clients=%d workers=%d tasks=%d rules=%d\n",
		sum.Counts[model.EntityClients], sum.Counts[model.EntityWorkers], sum.Counts[model.EntityTasks], sum.Rules)
	if rep.OK() {
		green.Fprintf(w, "✓ errors=%d violations=%d passed=%d failed=%d\n", sum.Errors(), sum.Violations, sum.Passed, sum.Failed)
		return
	}
	yellow.Fprintf(w, "⚠ errors=%d violations=%d passed=%d failed=%d\n", sum.Errors(), sum.Violations, sum.Passed, sum.Failed)
}

func printRules(w io.Writer, rs []rules.Rule, format string) error {
	if format == formatJSON {
		return export.WriteRules(w, rs)
	}
	if len(rs) == 0 {
		fmt.Fprintln(w, "No rules")
		return nil
	}
	for _, r := range rs {
		fmt.Fprintf(w, "%s [%s] %s\n", r.RuleID(), r.RuleType(), describeRule(r))
	}
	return nil
}

func describeRule(r rules.Rule) string {
	switch v := r.(type) {
	case rules.CoRun:
		return "tasks=" + strings.Join(v.Tasks, ",")
	case rules.SlotRestriction:
		return fmt.Sprintf("groupTag=%s minCommonSlots=%d", v.GroupTag, v.MinCommonSlots)
	case rules.LoadLimit:
		return fmt.Sprintf("workerGroup=%s maxSlotsPerPhase=%d", v.WorkerGroup, v.MaxSlotsPerPhase)
	case rules.Unknown:
		if v.Reason != "" {
			return "unrecognised: " + v.Reason
		}
		return "unrecognised rule type"
	}
	return ""
}
