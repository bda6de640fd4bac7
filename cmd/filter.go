package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	connfactory "github.com/kilianp07/rulecheck/connectors/factory"
	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/infra/ingest"
	"github.com/kilianp07/rulecheck/pkg/export"
)

var (
	filterWrite  string
	filterFormat string
)

var filterCmd = &cobra.Command{
	Use:   "filter <clients|workers|tasks> <question...>",
	Short: "Keep the rows of one collection matching a question in natural language",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().StringVarP(&filterWrite, "write", "w", "", "save the filtered dataset to this JSON or YAML file")
	filterCmd.Flags().StringVarP(&filterFormat, "format", "f", formatText, "output format: text or json (filtered rows)")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	if err := checkFormat(filterFormat, formatText, formatJSON); err != nil {
		return err
	}
	entity, err := model.ParseEntity(strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	question := strings.Join(args[1:], " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Filter == nil {
		return fmt.Errorf("no filter configured: set filter.type (%s) and filter.conf", strings.Join(connfactory.Types(), ", "))
	}
	f, err := connfactory.NewFilter(*cfg.Filter)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	before := ws.Dataset().Len(entity)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rep, err := ws.ApplyFilter(ctx, f, entity, question)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if filterFormat == formatJSON {
		recs, err := ws.Dataset().Records(entity)
		if err != nil {
			return err
		}
		if err := export.WriteJSON(out, recs); err != nil {
			return err
		}
	} else {
		cyan.Fprintf(out, "%s: %d -> %d rows\n", entity, before, rep.Counts[entity])
		printSummary(out, rep)
	}
	if filterWrite != "" {
		if err := ingest.SaveDataset(filterWrite, ws.Dataset()); err != nil {
			return err
		}
		green.Fprintf(cmd.ErrOrStderr(), "✓ dataset written to %s\n", filterWrite)
	}
	return nil
}
