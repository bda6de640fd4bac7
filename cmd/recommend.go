package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/rulecheck/core/recommend"
	"github.com/kilianp07/rulecheck/pkg/export"
)

var (
	recommendFormat        string
	recommendMinConfidence int
	recommendLimit         int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Propose rules from patterns found in the dataset",
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVarP(&recommendFormat, "format", "f", formatText, "output format: text, json or csv")
	recommendCmd.Flags().IntVar(&recommendMinConfidence, "min-confidence", -1, "drop recommendations below this confidence (default recommend.min_confidence)")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", -1, "maximum number of recommendations (default recommend.limit)")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(recommendFormat, formatText, formatJSON, formatCSV); err != nil {
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
	minConf, limit := cfg.Recommend.MinConfidence, cfg.Recommend.Limit
	if recommendMinConfidence >= 0 {
		minConf = recommendMinConfidence
	}
	if recommendLimit >= 0 {
		limit = recommendLimit
	}
	recs := recommend.Filter(ws.Report().Recommendations, minConf, limit)
	out := cmd.OutOrStdout()
	switch recommendFormat {
	case formatJSON:
		return export.WriteJSON(out, recs)
	case formatCSV:
		return export.WriteRecommendationsCSV(out, recs)
	}
	printRecommendations(out, recs)
	return nil
}
