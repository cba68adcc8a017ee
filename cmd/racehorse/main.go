// Package main provides the racehorse command line tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/racehorse-ledger/internal/config"
	"github.com/yourusername/racehorse-ledger/internal/logger"
	"github.com/yourusername/racehorse-ledger/internal/metrics"
	"github.com/yourusername/racehorse-ledger/internal/models"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
	logLevel   string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before the configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(racecardsCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(ledgerCmd)
}

var rootCmd = &cobra.Command{
	Use:           "racehorse",
	Short:         "Daily value bet workflow and profit ledger",
	Long:          `Prepares daily candidate files, asks a language model for one value bet, records the result and keeps a running profit and ROI ledger.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context(), cmd.Flags().Changed("config")); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = newAppLogger(cfg)
		metrics.InitRegistry()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return flushMetrics()
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the configuration. A config file named with --config must
// exist; the default location is optional.
func loadConfig(ctx context.Context, explicit bool) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	load := config.LoadWithDefaults
	if explicit {
		load = config.Load
	}

	var err error
	cfg, err = load(configFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}

	return config.Validate(cfg)
}

// newAppLogger builds the process logger. Development runs report the caller.
func newAppLogger(c *config.Config) *logrus.Logger {
	l := logger.NewLogger(c.App.LogLevel, c.App.Environment)
	l.SetReportCaller(c.IsDevelopment())
	l.WithFields(logrus.Fields{
		"version":     Version,
		"environment": c.App.Environment,
		"root":        c.Paths.Root,
	}).Debug("Configuration loaded")
	return l
}

func flushMetrics() error {
	if cfg == nil || !cfg.Metrics.Enabled {
		return nil
	}
	path := cfg.Resolve(cfg.Metrics.Textfile)
	if err := metrics.WriteTextfile(path); err != nil {
		return err
	}
	appLog.WithField("path", path).Debug("Metrics textfile written")
	return nil
}

// resolveDate returns the --date flag, asking for it on a terminal and defaulting to today otherwise
func resolveDate(cmd *cobra.Command, flagValue, question string) (string, error) {
	if cmd.Flags().Changed("date") {
		return flagValue, models.ValidateDate(flagValue)
	}
	if !isInteractive() {
		return models.Today(), nil
	}
	return newPrompter(cmd).Date(question, models.Today())
}
