package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rulecheck/app"
	"github.com/kilianp07/rulecheck/config"
	"github.com/kilianp07/rulecheck/core/rules"
	"github.com/kilianp07/rulecheck/infra/ingest"
	"github.com/kilianp07/rulecheck/infra/logger"
)

var (
	cfgPath   string
	dataPath  string
	rulesPath string
)

var rootCmd = &cobra.Command{
	Use:           "rulecheck",
	Short:         "Validate scheduling data and rules for clients, workers and tasks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (default "+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "dataset file or CSV directory, overrides data.path")
	rootCmd.PersistentFlags().StringVarP(&rulesPath, "rules", "r", "", "rules file, overrides rules.path")
}

// Execute runs the CLI.
func Execute() error {
	defer func() { _ = logger.CloseFile() }()
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dataPath != "" {
		cfg.Data = config.DataConfig{Path: dataPath}
	}
	if rulesPath != "" {
		cfg.Rules.Path = rulesPath
	}
	if err := applyLogging(cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLogging exports the configured level and format unless the
// environment already sets them, then opens the log file.
func applyLogging(c config.LoggingConfig) error {
	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", c.Level)
	}
	if os.Getenv("APP_ENV") == "" && c.Format == "console" {
		_ = os.Setenv("APP_ENV", "dev")
	}
	return logger.SetFile(logger.FileConfig{
		Path:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	})
}

// openWorkspace loads the configured files into a fresh workspace.
func openWorkspace(cfg *config.Config) (*app.Workspace, error) {
	ds, rs, err := app.LoadFiles(cfg)
	if err != nil {
		return nil, err
	}
	ws := app.NewWorkspace(nil, logger.New("cli"))
	ws.Replace(ds, rs)
	return ws, nil
}

func requireRulesPath(cfg *config.Config) error {
	if cfg.Rules.Path == "" {
		return fmt.Errorf("no rules file configured: set rules.path or pass --rules")
	}
	return nil
}

func saveRules(cfg *config.Config, rs []rules.Rule) error {
	if err := requireRulesPath(cfg); err != nil {
		return err
	}
	return ingest.SaveRules(cfg.Rules.Path, rs)
}
