package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/rulecheck/pkg/export"
)

var applyFormat string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Dry-run every rule against the dataset",
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyFormat, "format", "f", formatText, "output format: text, json or csv")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(applyFormat, formatText, formatJSON, formatCSV); err != nil {
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
	results := ws.Report().Results
	out := cmd.OutOrStdout()
	switch applyFormat {
	case formatJSON:
		return export.WriteJSON(out, results)
	case formatCSV:
		return export.WriteResultsCSV(out, results)
	}
	printResults(out, results)
	return nil
}
