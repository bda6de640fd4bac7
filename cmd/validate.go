package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rulecheck/pkg/export"
)

// errFindings makes the process exit non-zero without printing twice.
var errFindings = errors.New("validation found problems")

var validateFormat string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the dataset and check the rules against it",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", formatText, "output format: text, json or csv (data errors only)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(validateFormat, formatText, formatJSON, formatCSV); err != nil {
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
	rep := ws.Report()
	out := cmd.OutOrStdout()
	switch validateFormat {
	case formatJSON:
		err = export.WriteJSON(out, rep)
	case formatCSV:
		err = export.WriteErrorsCSV(out, rep.Errors)
	default:
		printSummary(out, rep)
		printErrors(out, rep)
		printViolations(out, rep.Violations)
	}
	if err != nil {
		return err
	}
	if !rep.OK() {
		return errFindings
	}
	return nil
}
