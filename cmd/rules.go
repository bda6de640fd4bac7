package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rulecheck/app"
	"github.com/kilianp07/rulecheck/core/rules"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the rules file",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := checkFormat(rulesFormat, formatText, formatJSON); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace(cfg)
		if err != nil {
			return err
		}
		return printRules(cmd.OutOrStdout(), ws.Rules(), rulesFormat)
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <rule-json>",
	Short: `Add a rule given as JSON, e.g. '{"type":"coRun","tasks":["T1","T2"]}'`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var m map[string]any
		if err := json.Unmarshal([]byte(args[0]), &m); err != nil {
			return fmt.Errorf("parse rule: %w", err)
		}
		r, err := rules.FromMap(m)
		if err != nil {
			return err
		}
		if _, ok := r.(rules.Unknown); ok {
			return fmt.Errorf("unknown rule type %q", m["type"])
		}
		return editRules(cmd, func(ws *app.Workspace) (string, error) {
			added, _, err := ws.AddRule(r)
			if err != nil {
				return "", err
			}
			return "added " + added.RuleID(), nil
		})
	},
}

var rulesAcceptCmd = &cobra.Command{
	Use:   "accept <recommendation-id>",
	Short: "Add the rule suggested by a recommendation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRules(cmd, func(ws *app.Workspace) (string, error) {
			r, _, err := ws.AcceptRecommendation(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("accepted as %s [%s]", r.RuleID(), r.RuleType()), nil
		})
	},
}

var rulesRmCmd = &cobra.Command{
	Use:     "rm <rule-id>",
	Aliases: []string{"delete"},
	Short:   "Remove a rule",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRules(cmd, func(ws *app.Workspace) (string, error) {
			if _, err := ws.DeleteRule(args[0]); err != nil {
				return "", err
			}
			return "removed " + args[0], nil
		})
	},
}

func init() {
	rulesListCmd.Flags().StringVarP(&rulesFormat, "format", "f", formatText, "output format: text or json")
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesAcceptCmd, rulesRmCmd)
	rootCmd.AddCommand(rulesCmd)
}

// editRules applies fn to the loaded workspace and writes the resulting
// rules back to the rules file.
func editRules(cmd *cobra.Command, fn func(ws *app.Workspace) (string, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireRulesPath(cfg); err != nil {
		return err
	}
	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	msg, err := fn(ws)
	if err != nil {
		return err
	}
	if err := saveRules(cfg, ws.Rules()); err != nil {
		return err
	}
	green.Fprintf(cmd.OutOrStdout(), "✓ %s\n", msg)
	printSummary(cmd.OutOrStdout(), ws.Report())
	return nil
}
