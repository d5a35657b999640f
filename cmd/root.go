// Package cmd holds the cobra commands of the dashboard binary.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bikeshare-dashboard/config"
	"bikeshare-dashboard/services"
	"bikeshare-dashboard/storage"
	"bikeshare-dashboard/utils"
)

// app carries what every sub-command needs once the root has initialized.
type app struct {
	cfg    *config.Config
	logger *utils.Logger

	dataPath   string
	dataSource string
	logLevel   string
}

// RootCommand creates the root command with every sub-command attached.
func RootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "bikeshare",
		Short:        "Bike sharing rental dashboard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.dataPath, "data", "", "Path to the cleaned daily CSV (overrides DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&a.dataSource, "source", "", "Data source: csv or postgres (overrides DATA_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		reportCommand(a),
		serveCommand(a),
		exportCommand(a),
		importCommand(a),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return RootCommand().Execute()
}

func (a *app) initialize(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataPath = a.dataPath
	}
	if flags.Changed("source") {
		cfg.DataSource = a.dataSource
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = utils.NewLoggerWithLevel(cfg.LogLevel, os.Stderr)
	if !cfg.DotEnvLoaded {
		a.logger.Debug("[config] No .env file found, falling back to system env vars")
	}
	a.logger.Debug("[cmd] Config: source=%s data=%s concurrency=%d rate=%dms",
		cfg.DataSource, cfg.DataPath, cfg.MaxConcurrency, cfg.RateLimitMs)
	return nil
}

func (a *app) retry() *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: a.cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      a.logger,
	}
}

// openSource returns the configured table source and a release func.
func (a *app) openSource(ctx context.Context) (storage.TableSource, func(), error) {
	switch a.cfg.DataSource {
	case config.SourcePostgres:
		store, err := storage.NewPostgresStore(ctx, a.cfg.DSN(), a.retry(), a.logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return storage.NewCSVSource(a.cfg.DataPath, a.logger), func() {}, nil
	}
}

// loadView loads the base table once and wraps it in a DataView.
func (a *app) loadView(ctx context.Context) (*services.DataView, error) {
	src, release, err := a.openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	table, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return services.NewDataView(table, a.logger), nil
}
